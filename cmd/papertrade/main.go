// Package main runs the trading loop against stubbed collaborators.
// No real exchange, safety oracle, or relay is contacted: swaps settle
// instantly against an in-memory balance sheet, and the price path is
// scripted to walk an instrument through entry, 2x and 3x exits.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"solana-multiplier-bot/internal/domain"
	feedstub "solana-multiplier-bot/internal/marketfeed/stub"
	"solana-multiplier-bot/internal/orchestrator"
	oraclestub "solana-multiplier-bot/internal/safety/stub"
	"solana-multiplier-bot/internal/storage/memory"
	"solana-multiplier-bot/internal/strategy"
)

func main() {
	startingQuote := flag.Float64("quote", 1000, "Starting quote balance")
	allocation := flag.Float64("allocation", 50, "Max allocation percent per buy")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if err := run(*startingQuote, *allocation/100, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(startingQuote, allocationFraction float64, logger *log.Logger) error {
	instrument := domain.Instrument{
		Symbol:          "MEME/USDC",
		Chain:           "solana",
		ContractAddress: "PaperMemeContractAddr11111111111111111111111",
		TokenIn:         "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		TokenOut:        "PaperMemeContractAddr11111111111111111111111",
		Decimals:        domain.DefaultDecimals,
	}

	feed := feedstub.NewFeed()
	feed.SetBalance(instrument.Quote(), startingQuote)
	feed.SetBalance(instrument.Base(), 0)

	oracle := oraclestub.NewOracle()
	oracle.SetRiskLevel(instrument.ContractAddress, domain.RiskLevelGood)

	executions := memory.NewExecutionStore()

	executor := &paperExecutor{
		feed:       feed,
		instrument: instrument,
		logger:     logger,
	}

	strat, err := strategy.FromName(strategy.NameMultiplierSell, strategy.Params{
		AllocationFraction: allocationFraction,
		SellFraction2x:     0.5,
		SellFraction3x:     0.8,
	})
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.Options{
		Oracle:         oracle,
		Feed:           feed,
		Strategy:       strat,
		Pipeline:       executor,
		Instruments:    []domain.Instrument{instrument},
		Timeframe:      "1h",
		PaceDelay:      1, // nanoseconds: no pacing between paper cycles
		ErrorBackoff:   1,
		ExecutionStore: executions,
		Logger:         logger,
	})

	ctx := context.Background()

	// Scripted price path: entry, below 2x, 2x exit, 3x exit.
	prices := []float64{100, 150, 201, 310, 320}
	for i, price := range prices {
		feed.SetCandles(instrument.Symbol, candlesAt(price, i+1))
		executor.markPrice(price)
		if err := orch.RunCycle(ctx); err != nil {
			return err
		}
	}

	records, err := executions.GetBySymbol(ctx, instrument.Symbol)
	if err != nil {
		return err
	}
	fmt.Printf("\nPaper session: %d swaps on %s\n", len(records), instrument.Symbol)
	for _, r := range records {
		fmt.Printf("  %-4s amount=%.6f price=%.2f tx=%s\n", r.Side, r.Amount, r.Price, r.TxHash)
	}

	balances, err := feed.FetchBalances(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Final balances: %.6f %s, %.2f %s\n",
		balances[instrument.Base()].Free, instrument.Base(),
		balances[instrument.Quote()].Free, instrument.Quote())
	return nil
}

// candlesAt builds a short candle window closing at price. Timestamps
// advance per cycle so archived rows stay distinct.
func candlesAt(price float64, cycle int) []domain.Candle {
	base := int64(cycle) * 3_600_000
	return []domain.Candle{
		{TimestampMs: base, Open: price, High: price, Low: price, Close: price, Volume: 1000},
		{TimestampMs: base + 3_600_000, Open: price, High: price, Low: price, Close: price, Volume: 1000},
	}
}

// paperExecutor settles swaps against the stub feed's balance sheet at
// the current marked price.
type paperExecutor struct {
	feed       *feedstub.Feed
	instrument domain.Instrument
	logger     *log.Logger

	mu    sync.Mutex
	price float64
	seq   int
}

func (e *paperExecutor) markPrice(price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.price = price
}

func (e *paperExecutor) Execute(ctx context.Context, tokenIn, tokenOut, amount, side string) (*domain.SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	qty := float64(raw) / e.instrument.Scale()

	balances, err := e.feed.FetchBalances(ctx)
	if err != nil {
		return nil, err
	}
	baseFree := balances[e.instrument.Base()].Free
	quoteFree := balances[e.instrument.Quote()].Free

	switch side {
	case domain.SwapSideBuy:
		cost := qty * e.price
		if cost > quoteFree {
			return nil, fmt.Errorf("insufficient %s: need %.2f, have %.2f", e.instrument.Quote(), cost, quoteFree)
		}
		e.feed.SetBalance(e.instrument.Quote(), quoteFree-cost)
		e.feed.SetBalance(e.instrument.Base(), baseFree+qty)
	case domain.SwapSideSell:
		if qty > baseFree {
			return nil, fmt.Errorf("insufficient %s: need %.6f, have %.6f", e.instrument.Base(), qty, baseFree)
		}
		e.feed.SetBalance(e.instrument.Base(), baseFree-qty)
		e.feed.SetBalance(e.instrument.Quote(), quoteFree+qty*e.price)
	default:
		return nil, fmt.Errorf("unknown swap side %q", side)
	}

	e.seq++
	sum := sha256.Sum256([]byte(fmt.Sprintf("paper|%s|%s|%s|%d", tokenIn, tokenOut, amount, e.seq)))
	hash := hex.EncodeToString(sum[:])
	e.logger.Printf("[paper] settled %s %.6f at %.2f", side, qty, e.price)
	return &domain.SwapResult{Hash: hash}, nil
}
