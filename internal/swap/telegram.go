package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// telegramAPIBase is the Bot API host. Overridable for tests.
const telegramAPIBase = "https://api.telegram.org"

// TelegramAuthenticator completes the relay handshake by messaging the
// relay bot through the Telegram Bot API.
type TelegramAuthenticator struct {
	apiBase  string
	botToken string
	chatID   int64
	client   *http.Client
}

// TelegramOption configures TelegramAuthenticator.
type TelegramOption func(*TelegramAuthenticator)

// WithTelegramAPIBase overrides the Bot API host.
func WithTelegramAPIBase(base string) TelegramOption {
	return func(a *TelegramAuthenticator) {
		a.apiBase = base
	}
}

// WithTelegramHTTPClient sets a custom http.Client.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(a *TelegramAuthenticator) {
		a.client = client
	}
}

// NewTelegramAuthenticator creates a Telegram-based relay authenticator.
func NewTelegramAuthenticator(botToken string, chatID int64, opts ...TelegramOption) *TelegramAuthenticator {
	a := &TelegramAuthenticator{
		apiBase:  telegramAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// sendMessageResponse is the subset of the Bot API reply we check.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Authenticate sends the /start command to the relay bot chat.
func (a *TelegramAuthenticator) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id": a.chatID,
		"text":    "/start",
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", a.apiBase, a.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var smr sendMessageResponse
	if err := json.Unmarshal(body, &smr); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if !smr.OK {
		return fmt.Errorf("bot api rejected message: %s", smr.Description)
	}
	return nil
}

// StaticAuthenticator succeeds or fails unconditionally. Used by paper
// trading and tests.
type StaticAuthenticator struct {
	Err error
}

// Authenticate returns the configured error.
func (a StaticAuthenticator) Authenticate(context.Context) error {
	return a.Err
}

var (
	_ Authenticator = (*TelegramAuthenticator)(nil)
	_ Authenticator = StaticAuthenticator{}
)
