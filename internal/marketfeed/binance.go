package marketfeed

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solana-multiplier-bot/internal/domain"
)

// Binance Spot REST defaults.
const (
	binanceAPIBase    = "https://api.binance.com"
	binanceRecvWindow = 5000
	binanceTimeout    = 30 * time.Second
)

func init() {
	Register("binance", func(creds Credentials) (Feed, error) {
		return NewBinanceFeed(creds), nil
	})
	Register("binance-ws", func(creds Credentials) (Feed, error) {
		return NewStreamingFeed(NewBinanceFeed(creds)), nil
	})
}

// BinanceFeed fetches candles and balances from Binance Spot.
// Klines are unsigned; the account endpoint is HMAC-SHA256 signed.
type BinanceFeed struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

// BinanceOption configures BinanceFeed.
type BinanceOption func(*BinanceFeed)

// WithBinanceBaseURL overrides the API host.
func WithBinanceBaseURL(base string) BinanceOption {
	return func(f *BinanceFeed) {
		f.baseURL = strings.TrimRight(base, "/")
	}
}

// WithBinanceHTTPClient sets a custom http.Client.
func WithBinanceHTTPClient(client *http.Client) BinanceOption {
	return func(f *BinanceFeed) {
		f.client = client
	}
}

// NewBinanceFeed creates a Binance Spot market feed.
func NewBinanceFeed(creds Credentials, opts ...BinanceOption) *BinanceFeed {
	f := &BinanceFeed{
		apiKey:    creds.APIKey,
		apiSecret: creds.APISecret,
		baseURL:   binanceAPIBase,
		client:    &http.Client{Timeout: binanceTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// binanceSymbol maps a pair like "SOL/USDT" to the exchange symbol "SOLUSDT".
func binanceSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// sign computes the HMAC-SHA256 signature over the query string.
func (f *BinanceFeed) sign(q url.Values) string {
	mac := hmac.New(sha256.New, []byte(f.apiSecret))
	mac.Write([]byte(q.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

// get performs one GET against the API, signing when required.
func (f *BinanceFeed) get(ctx context.Context, path string, q url.Values, signed bool) ([]byte, error) {
	if signed {
		q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		q.Set("recvWindow", strconv.Itoa(binanceRecvWindow))
		q.Set("signature", f.sign(q))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// FetchCandles returns recent klines for the symbol, oldest first.
func (f *BinanceFeed) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", binanceSymbol(symbol))
	q.Set("interval", timeframe)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := f.get(ctx, "/api/v3/klines", q, false)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	// Each kline is a mixed array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal klines: %w", err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row too short: %d fields", len(row))
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("parse kline open time: %w", err)
		}

		vals := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			v, err := parseQuotedFloat(row[i])
			if err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i, err)
			}
			vals[i-1] = v
		}

		candles = append(candles, domain.Candle{
			TimestampMs: openTime,
			Open:        vals[0],
			High:        vals[1],
			Low:         vals[2],
			Close:       vals[3],
			Volume:      vals[4],
		})
	}
	return candles, nil
}

// accountResponse is the subset of /api/v3/account the feed needs.
type accountResponse struct {
	Balances []struct {
		Asset string `json:"asset"`
		Free  string `json:"free"`
	} `json:"balances"`
}

// FetchBalances returns free balances from the signed account endpoint.
func (f *BinanceFeed) FetchBalances(ctx context.Context) (map[string]domain.Balance, error) {
	body, err := f.get(ctx, "/api/v3/account", url.Values{}, true)
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}

	balances := make(map[string]domain.Balance, len(account.Balances))
	for _, b := range account.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return nil, fmt.Errorf("parse balance for %s: %w", b.Asset, err)
		}
		balances[b.Asset] = domain.Balance{Currency: b.Asset, Free: free}
	}
	return balances, nil
}

// parseQuotedFloat parses a JSON value that is a number in a string.
func parseQuotedFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Some fields arrive as bare numbers.
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, err
		}
		return v, nil
	}
	return strconv.ParseFloat(s, 64)
}

var _ Feed = (*BinanceFeed)(nil)
