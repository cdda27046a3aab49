// Package orchestrator drives the trading loop.
// It coordinates: safety gate → market data → strategy → swap pipeline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"solana-multiplier-bot/internal/domain"
	"solana-multiplier-bot/internal/idhash"
	"solana-multiplier-bot/internal/marketfeed"
	"solana-multiplier-bot/internal/observability"
	"solana-multiplier-bot/internal/safety"
	"solana-multiplier-bot/internal/storage"
	"solana-multiplier-bot/internal/strategy"
	"solana-multiplier-bot/internal/swap"
)

// Default loop settings.
const (
	DefaultCandleLimit  = 100
	DefaultPaceDelay    = 1 * time.Second
	DefaultErrorBackoff = 5 * time.Second
)

// Orchestrator sequences instruments through one decision cycle at a time.
// It owns no trading state of its own: strategy state lives in the
// strategy, balances come from the feed, and every swap invocation is
// self-contained. Instruments are processed strictly sequentially, so
// there is never more than one in-flight swap.
type Orchestrator struct {
	oracle   safety.Oracle
	feed     marketfeed.Feed
	strat    strategy.Strategy
	pipeline swap.Executor

	instruments []domain.Instrument
	timeframe   string
	candleLimit int

	paceDelay    time.Duration
	errorBackoff time.Duration

	// Optional collaborators
	executions storage.ExecutionStore
	candles    storage.CandleStore
	archived   map[string]int64 // newest archived candle per symbol
	metrics    *observability.Metrics

	logger *log.Logger
	now    func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Oracle      safety.Oracle
	Feed        marketfeed.Feed
	Strategy    strategy.Strategy
	Pipeline    swap.Executor
	Instruments []domain.Instrument
	Timeframe   string

	// Optional
	CandleLimit    int
	PaceDelay      time.Duration
	ErrorBackoff   time.Duration
	ExecutionStore storage.ExecutionStore
	CandleStore    storage.CandleStore
	Metrics        *observability.Metrics
	Logger         *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	candleLimit := opts.CandleLimit
	if candleLimit == 0 {
		candleLimit = DefaultCandleLimit
	}

	paceDelay := opts.PaceDelay
	if paceDelay == 0 {
		paceDelay = DefaultPaceDelay
	}

	errorBackoff := opts.ErrorBackoff
	if errorBackoff == 0 {
		errorBackoff = DefaultErrorBackoff
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Orchestrator{
		oracle:       opts.Oracle,
		feed:         opts.Feed,
		strat:        opts.Strategy,
		pipeline:     opts.Pipeline,
		instruments:  opts.Instruments,
		timeframe:    opts.Timeframe,
		candleLimit:  candleLimit,
		paceDelay:    paceDelay,
		errorBackoff: errorBackoff,
		executions:   opts.ExecutionStore,
		candles:      opts.CandleStore,
		archived:     make(map[string]int64),
		metrics:      opts.Metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Run executes cycles until ctx is cancelled. A cycle-level failure is
// logged and followed by the longer backoff delay; per-instrument failures
// never escalate past the cycle.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Printf("[orchestrator] starting loop: %d instruments, timeframe %s", len(o.instruments), o.timeframe)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := o.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			o.logger.Printf("[orchestrator] cycle failed: %v, backing off %s", err, o.errorBackoff)
			if o.metrics != nil {
				o.metrics.CycleErrors.Inc()
			}
			if err := sleep(ctx, o.errorBackoff); err != nil {
				return err
			}
		}
	}
}

// RunCycle performs one pass over all instruments.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	start := o.now()
	if o.metrics != nil {
		o.metrics.CyclesTotal.Inc()
	}

	for _, instrument := range o.instruments {
		if err := o.processInstrument(ctx, instrument); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// One instrument's failure must not halt the others.
			o.logger.Printf("[orchestrator] %s: %v", instrument.Symbol, err)
			if o.metrics != nil {
				o.metrics.InstrumentErrors.WithLabelValues(instrument.Symbol).Inc()
			}
		}

		// Paced after every instrument, the last included; this is the
		// loop's only throttle against the external APIs.
		if err := sleep(ctx, o.paceDelay); err != nil {
			return err
		}
	}

	if o.metrics != nil {
		o.metrics.CycleDuration.Observe(o.now().Sub(start).Seconds())
		o.metrics.LastSuccessfulCycle.SetToCurrentTime()
		o.updatePositionGauge()
	}
	return nil
}

// processInstrument runs safety gate → fetch → decide → execute for one
// instrument. Panics are caught so a misbehaving collaborator only costs
// this instrument this cycle.
func (o *Orchestrator) processInstrument(ctx context.Context, instrument domain.Instrument) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	verdict := o.oracle.Check(ctx, instrument)
	if o.metrics != nil {
		if verdict.IsValid {
			o.metrics.SafetyChecks.WithLabelValues("pass").Inc()
		} else {
			o.metrics.SafetyChecks.WithLabelValues("reject").Inc()
			o.metrics.SafetyRejects.WithLabelValues(verdict.RiskLevel).Inc()
		}
	}
	if !verdict.IsValid {
		o.logger.Printf("[orchestrator] skipping %s: risk level %s", instrument.Symbol, verdict.RiskLevel)
		return nil
	}

	candles, err := o.feed.FetchCandles(ctx, instrument.Symbol, o.timeframe, o.candleLimit)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) == 0 {
		o.logger.Printf("[orchestrator] no candle data for %s, holding", instrument.Symbol)
		return nil
	}
	o.archiveCandles(ctx, instrument.Symbol, candles)

	balances, err := o.feed.FetchBalances(ctx)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	held := balances[instrument.Base()].Free
	freeQuote := balances[instrument.Quote()].Free

	decision := o.strat.Decide(&strategy.Input{
		Instrument:       instrument,
		Candles:          candles,
		HeldAmount:       held,
		FreeQuoteBalance: freeQuote,
	})
	o.logger.Printf("[orchestrator] decision for %s: %s %g", instrument.Symbol, decision.Action, decision.Amount)
	if o.metrics != nil {
		o.metrics.Decisions.WithLabelValues(string(decision.Action)).Inc()
	}

	if !decision.Actionable() {
		return nil
	}
	return o.executeDecision(ctx, instrument, decision, candles[len(candles)-1].Close)
}

// executeDecision routes one actionable decision through the pipeline and
// journals the submitted swap.
func (o *Orchestrator) executeDecision(ctx context.Context, instrument domain.Instrument, decision domain.Decision, price float64) error {
	tokenIn, tokenOut := instrument.TokenIn, instrument.TokenOut
	side := domain.SwapSideBuy
	if decision.Action == domain.ActionSell {
		tokenIn, tokenOut = tokenOut, tokenIn
		side = domain.SwapSideSell
	}

	// Router amounts are decimal strings in the token's smallest unit.
	amountRaw := strconv.FormatInt(int64(decision.Amount*instrument.Scale()), 10)

	start := o.now()
	result, err := o.pipeline.Execute(ctx, tokenIn, tokenOut, amountRaw, side)
	if o.metrics != nil {
		o.metrics.SwapLatency.Observe(o.now().Sub(start).Seconds())
	}
	if err != nil {
		if o.metrics != nil {
			o.metrics.SwapFailures.WithLabelValues(swapStage(err)).Inc()
		}
		return fmt.Errorf("execute %s: %w", side, err)
	}

	o.logger.Printf("[orchestrator] trade executed for %s: %s", instrument.Symbol, result.Hash)
	if o.metrics != nil {
		o.metrics.SwapsSubmitted.WithLabelValues(side).Inc()
	}

	if o.executions != nil {
		submittedAt := o.now().UnixMilli()
		record := &domain.SwapExecution{
			ExecutionID: idhash.ComputeExecutionID(instrument.Symbol, side, amountRaw, submittedAt),
			Symbol:      instrument.Symbol,
			Side:        side,
			Amount:      decision.Amount,
			AmountRaw:   amountRaw,
			Price:       price,
			TxHash:      result.Hash,
			SubmittedAt: submittedAt,
		}
		if err := o.executions.Insert(ctx, record); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			// The swap already went out; a journal failure is logged, not fatal.
			o.logger.Printf("[orchestrator] journal insert failed for %s: %v", instrument.Symbol, err)
		}
	}
	return nil
}

// archiveCandles records freshly fetched candles into the history archive.
// Fetch windows overlap from one cycle to the next, and the store rejects a
// whole batch on any duplicate row, so bars at or below the per-symbol
// high-water mark are filtered out and the rest inserted one at a time.
// Duplicates surviving the mark (an archive populated before a restart)
// are skipped individually.
func (o *Orchestrator) archiveCandles(ctx context.Context, symbol string, candles []domain.Candle) {
	if o.candles == nil {
		return
	}

	mark := o.archived[symbol]
	for _, candle := range candles {
		if candle.TimestampMs <= mark {
			continue
		}
		err := o.candles.InsertBulk(ctx, symbol, o.timeframe, []domain.Candle{candle})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			o.logger.Printf("[orchestrator] candle archive failed for %s: %v", symbol, err)
			return
		}
		o.archived[symbol] = candle.TimestampMs
	}
}

// positionTracker is the optional strategy capability used for the open
// position gauge.
type positionTracker interface {
	Position(symbol string) (domain.PositionState, bool)
}

func (o *Orchestrator) updatePositionGauge() {
	tracker, ok := o.strat.(positionTracker)
	if !ok {
		return
	}
	var open int
	for _, instrument := range o.instruments {
		if state, ok := tracker.Position(instrument.Symbol); ok && state.Open() {
			open++
		}
	}
	o.metrics.OpenPositions.Set(float64(open))
}

// swapStage maps a pipeline error to its failing stage label.
func swapStage(err error) string {
	switch {
	case errors.Is(err, swap.ErrRoute):
		return "route"
	case errors.Is(err, swap.ErrSign):
		return "sign"
	case errors.Is(err, swap.ErrSubmit):
		return "submit"
	case errors.Is(err, swap.ErrNotAuthenticated):
		return "auth"
	default:
		return "other"
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
