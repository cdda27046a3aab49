package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solana-multiplier-bot/internal/domain"
)

// DefaultTimeout bounds one scan request.
const DefaultTimeout = 15 * time.Second

// RugcheckClient implements Oracle against the Rugcheck scan API.
type RugcheckClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// RugcheckOption configures RugcheckClient.
type RugcheckOption func(*RugcheckClient)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) RugcheckOption {
	return func(c *RugcheckClient) {
		c.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) RugcheckOption {
	return func(c *RugcheckClient) {
		c.client.Timeout = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) RugcheckOption {
	return func(c *RugcheckClient) {
		c.logger = logger
	}
}

// NewRugcheckClient creates a Rugcheck scan client.
func NewRugcheckClient(baseURL, apiKey string, opts ...RugcheckOption) *RugcheckClient {
	c := &RugcheckClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// scanResponse is the subset of the scan payload the gate needs.
type scanResponse struct {
	RiskLevel string `json:"riskLevel"`
}

// Check queries the scan endpoint for the instrument's contract.
// Only an explicit "GOOD" risk level passes; HTTP failures, timeouts and
// malformed payloads all reject.
func (c *RugcheckClient) Check(ctx context.Context, instrument domain.Instrument) domain.ValidationResult {
	endpoint := fmt.Sprintf("%s/tokens/scan/%s/%s",
		c.baseURL,
		url.PathEscape(instrument.Chain),
		url.PathEscape(instrument.ContractAddress),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.reject(instrument, fmt.Sprintf("create request: %v", err))
	}
	q := req.URL.Query()
	q.Set("includeDexScreenerData", "true")
	q.Set("includeSignificantEvents", "false")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return c.reject(instrument, fmt.Sprintf("scan request: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.reject(instrument, fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return c.reject(instrument, fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)))
	}

	var scan scanResponse
	if err := json.Unmarshal(body, &scan); err != nil {
		return c.reject(instrument, fmt.Sprintf("unmarshal response: %v", err))
	}

	level := scan.RiskLevel
	if level == "" {
		level = domain.RiskLevelUnknown
	}

	return domain.ValidationResult{
		IsValid:   strings.EqualFold(scan.RiskLevel, domain.RiskLevelGood),
		RiskLevel: level,
		Details:   json.RawMessage(body),
	}
}

// reject builds the fail-closed verdict for a failed scan.
func (c *RugcheckClient) reject(instrument domain.Instrument, diag string) domain.ValidationResult {
	c.logger.Printf("[safety] scan failed for %s: %s", instrument.Symbol, diag)

	details, _ := json.Marshal(map[string]string{"error": diag})
	return domain.ValidationResult{
		IsValid:   false,
		RiskLevel: domain.RiskLevelError,
		Details:   details,
	}
}

var _ Oracle = (*RugcheckClient)(nil)
