// Package swap turns a trading decision into a signed, submitted on-chain
// swap via the router and relay HTTP API.
package swap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"solana-multiplier-bot/internal/domain"
	"solana-multiplier-bot/internal/wallet"
)

// DefaultTimeout bounds one router or relay request.
const DefaultTimeout = 30 * time.Second

// Executor is the orchestrator's view of the pipeline.
type Executor interface {
	// Execute runs route -> sign -> submit for one decision.
	// amount is a smallest-unit decimal string.
	Execute(ctx context.Context, tokenIn, tokenOut, amount, side string) (*domain.SwapResult, error)
}

// Pipeline executes swaps through the router/relay API. Stateless between
// calls apart from the authentication gate: each invocation is
// self-contained and performs exactly one outbound call per stage.
type Pipeline struct {
	apiHost  string
	chain    string
	slippage float64
	wallet   *wallet.Wallet
	client   *http.Client
	logger   *log.Logger

	authenticated atomic.Bool
}

// Option configures Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.client.Timeout = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSlippage sets the slippage tolerance in percent.
func WithSlippage(slippage float64) Option {
	return func(p *Pipeline) {
		p.slippage = slippage
	}
}

// NewPipeline creates a swap pipeline. Returns ErrNoWallet when the signing
// key is absent.
func NewPipeline(apiHost, chain string, w *wallet.Wallet, opts ...Option) (*Pipeline, error) {
	if w == nil {
		return nil, ErrNoWallet
	}

	p := &Pipeline{
		apiHost:  strings.TrimRight(apiHost, "/"),
		chain:    chain,
		slippage: 0.5,
		wallet:   w,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Authenticator performs the out-of-band relay handshake.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Authenticate runs the handshake and opens the gate on success.
func (p *Pipeline) Authenticate(ctx context.Context, auth Authenticator) error {
	if err := auth.Authenticate(ctx); err != nil {
		return fmt.Errorf("relay handshake: %w", err)
	}
	p.authenticated.Store(true)
	p.logger.Printf("[swap] authenticated, wallet address: %s", p.wallet.Address())
	return nil
}

// Authenticated reports whether the relay handshake has completed.
func (p *Pipeline) Authenticated() bool {
	return p.authenticated.Load()
}

// Execute runs the three pipeline stages for one decision. Any stage
// failure aborts the remaining stages; nothing is retried here.
func (p *Pipeline) Execute(ctx context.Context, tokenIn, tokenOut, amount, side string) (*domain.SwapResult, error) {
	if !p.authenticated.Load() {
		return nil, ErrNotAuthenticated
	}

	route, err := p.fetchRoute(ctx, tokenIn, tokenOut, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoute, err)
	}

	signedTx, err := p.signRoute(route)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSign, err)
	}

	result, err := p.submit(ctx, signedTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmit, err)
	}

	p.logger.Printf("[swap] executed %s order: %s", side, result.Hash)
	return result, nil
}

// routeResponse mirrors the router's get_swap_route payload.
type routeResponse struct {
	Data struct {
		RawTx struct {
			SwapTransaction string `json:"swapTransaction"`
		} `json:"raw_tx"`
		Quote struct {
			InAmount  string `json:"inAmount"`
			OutAmount string `json:"outAmount"`
		} `json:"quote"`
		Venue string `json:"venue"`
	} `json:"data"`
}

// fetchRoute requests a single-use swap route from the router.
func (p *Pipeline) fetchRoute(ctx context.Context, tokenIn, tokenOut, amount string) (*domain.SwapRoute, error) {
	endpoint := fmt.Sprintf("%s/defi/router/v1/%s/tx/get_swap_route", p.apiHost, url.PathEscape(p.chain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("token_in_address", tokenIn)
	q.Set("token_out_address", tokenOut)
	q.Set("in_amount", amount)
	q.Set("from_address", p.wallet.Address())
	q.Set("slippage", strconv.FormatFloat(p.slippage, 'f', -1, 64))
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rr.Data.RawTx.SwapTransaction == "" {
		return nil, fmt.Errorf("response missing data.raw_tx.swapTransaction")
	}

	return &domain.SwapRoute{
		RawTransaction: rr.Data.RawTx.SwapTransaction,
		InAmount:       rr.Data.Quote.InAmount,
		OutAmount:      rr.Data.Quote.OutAmount,
		Venue:          rr.Data.Venue,
	}, nil
}

// signRoute decodes the route payload and attaches the wallet signature.
func (p *Pipeline) signRoute(route *domain.SwapRoute) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(route.RawTransaction)
	if err != nil {
		return "", fmt.Errorf("decode raw transaction: %w", err)
	}

	signed, err := p.wallet.SignTransaction(raw)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}

// submitResponse mirrors the relay's send_transaction payload.
type submitResponse struct {
	Data struct {
		Hash string `json:"hash"`
	} `json:"data"`
}

// submit sends the signed transaction to the relay. Success requires a
// settlement handle in the response; the relay may accept the call yet
// fail to execute, so any other shape is a failure.
func (p *Pipeline) submit(ctx context.Context, signedTx string) (*domain.SwapResult, error) {
	payload, err := json.Marshal(map[string]string{
		"chain":    p.chain,
		"signedTx": signedTx,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.apiHost + "/txproxy/v1/send_transaction"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var sr submitResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if sr.Data.Hash == "" {
		return nil, fmt.Errorf("response missing data.hash")
	}

	return &domain.SwapResult{Hash: sr.Data.Hash}, nil
}

var _ Executor = (*Pipeline)(nil)
