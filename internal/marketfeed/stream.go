package marketfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solana-multiplier-bot/internal/domain"
)

// Binance combined stream defaults.
const (
	binanceStreamURL         = "wss://stream.binance.com:9443/stream"
	defaultReconnectDelay    = 1 * time.Second
	defaultMaxReconnectDelay = 30 * time.Second
	defaultWindowSize        = 500
	defaultReadTimeout       = 90 * time.Second
)

// StreamingFeed serves candles from a live kline stream, falling back to
// the wrapped REST feed until the rolling window is warm. Balances always
// go through REST.
type StreamingFeed struct {
	rest      *BinanceFeed
	streamURL string
	logger    *log.Logger

	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration
	readTimeout       time.Duration
	windowSize        int

	mu      sync.RWMutex
	windows map[string][]domain.Candle // keyed by lowercase stream name

	started atomic.Bool
	closed  atomic.Bool
	cancel  context.CancelFunc
}

// StreamOption configures StreamingFeed.
type StreamOption func(*StreamingFeed)

// WithStreamURL overrides the combined stream endpoint.
func WithStreamURL(u string) StreamOption {
	return func(s *StreamingFeed) {
		s.streamURL = u
	}
}

// WithStreamLogger sets the diagnostic logger.
func WithStreamLogger(logger *log.Logger) StreamOption {
	return func(s *StreamingFeed) {
		s.logger = logger
	}
}

// WithWindowSize caps the per-symbol candle window.
func WithWindowSize(n int) StreamOption {
	return func(s *StreamingFeed) {
		s.windowSize = n
	}
}

// NewStreamingFeed wraps a REST feed with a live kline stream.
func NewStreamingFeed(rest *BinanceFeed, opts ...StreamOption) *StreamingFeed {
	s := &StreamingFeed{
		rest:              rest,
		streamURL:         binanceStreamURL,
		logger:            log.Default(),
		reconnectDelay:    defaultReconnectDelay,
		maxReconnectDelay: defaultMaxReconnectDelay,
		readTimeout:       defaultReadTimeout,
		windowSize:        defaultWindowSize,
		windows:           make(map[string][]domain.Candle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// streamName builds the combined-stream topic for a symbol and timeframe.
func streamName(symbol, timeframe string) string {
	return strings.ToLower(binanceSymbol(symbol)) + "@kline_" + timeframe
}

// Start subscribes to kline streams for the given symbols and keeps the
// connection alive until ctx is cancelled or Close is called.
func (s *StreamingFeed) Start(ctx context.Context, symbols []string, timeframe string) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("stream already started")
	}

	topics := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		topics = append(topics, streamName(sym, timeframe))
	}
	endpoint := s.streamURL + "?streams=" + strings.Join(topics, "/")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.readLoop(runCtx, endpoint)
	return nil
}

// Close stops the stream.
func (s *StreamingFeed) Close() {
	if s.closed.CompareAndSwap(false, true) && s.cancel != nil {
		s.cancel()
	}
}

// readLoop dials the stream and reconnects with exponential backoff.
func (s *StreamingFeed) readLoop(ctx context.Context, endpoint string) {
	delay := s.reconnectDelay

	for {
		if ctx.Err() != nil || s.closed.Load() {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			s.logger.Printf("[marketfeed] stream dial failed: %v, retrying in %s", err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, s.maxReconnectDelay)
			continue
		}
		delay = s.reconnectDelay

		s.readMessages(ctx, conn)
		conn.Close()
	}
}

// combinedMessage is one frame from the combined stream.
type combinedMessage struct {
	Stream string `json:"stream"`
	Data   struct {
		Kline struct {
			OpenTime int64  `json:"t"`
			Open     string `json:"o"`
			High     string `json:"h"`
			Low      string `json:"l"`
			Close    string `json:"c"`
			Volume   string `json:"v"`
			Final    bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

// readMessages consumes frames until the connection breaks.
func (s *StreamingFeed) readMessages(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil || s.closed.Load() {
			return
		}

		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Printf("[marketfeed] stream read failed: %v", err)
			return
		}

		var msg combinedMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Printf("[marketfeed] stream payload unparseable: %v", err)
			continue
		}
		// Only finalized klines enter the window; the open bar still moves.
		if msg.Stream == "" || !msg.Data.Kline.Final {
			continue
		}

		candle, err := klineToCandle(msg)
		if err != nil {
			s.logger.Printf("[marketfeed] stream kline unparseable: %v", err)
			continue
		}
		s.append(msg.Stream, candle)
	}
}

// klineToCandle converts one finalized kline frame.
func klineToCandle(msg combinedMessage) (domain.Candle, error) {
	k := msg.Data.Kline
	vals := make([]float64, 5)
	for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Candle{}, err
		}
		vals[i] = v
	}
	return domain.Candle{
		TimestampMs: k.OpenTime,
		Open:        vals[0],
		High:        vals[1],
		Low:         vals[2],
		Close:       vals[3],
		Volume:      vals[4],
	}, nil
}

// append adds a candle to the stream's window, replacing a bar with the
// same open time and trimming to the window size.
func (s *StreamingFeed) append(stream string, candle domain.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[stream]
	if n := len(window); n > 0 && window[n-1].TimestampMs == candle.TimestampMs {
		window[n-1] = candle
	} else {
		window = append(window, candle)
	}
	if len(window) > s.windowSize {
		window = window[len(window)-s.windowSize:]
	}
	s.windows[stream] = window
}

// FetchCandles serves from the live window when it holds enough bars,
// otherwise falls back to REST.
func (s *StreamingFeed) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]domain.Candle, error) {
	s.mu.RLock()
	window := s.windows[streamName(symbol, timeframe)]
	var cached []domain.Candle
	if limit > 0 && len(window) >= limit {
		cached = make([]domain.Candle, limit)
		copy(cached, window[len(window)-limit:])
	}
	s.mu.RUnlock()

	if cached != nil {
		return cached, nil
	}
	return s.rest.FetchCandles(ctx, symbol, timeframe, limit)
}

// FetchBalances delegates to the REST feed.
func (s *StreamingFeed) FetchBalances(ctx context.Context) (map[string]domain.Balance, error) {
	return s.rest.FetchBalances(ctx)
}

var _ Feed = (*StreamingFeed)(nil)
