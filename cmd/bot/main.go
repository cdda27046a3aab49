// Package main runs the live trading bot.
// Loop: safety gate → market data → strategy → swap pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"solana-multiplier-bot/internal/config"
	"solana-multiplier-bot/internal/marketfeed"
	"solana-multiplier-bot/internal/observability"
	"solana-multiplier-bot/internal/orchestrator"
	"solana-multiplier-bot/internal/safety"
	"solana-multiplier-bot/internal/storage"
	chstore "solana-multiplier-bot/internal/storage/clickhouse"
	"solana-multiplier-bot/internal/storage/migrations"
	"solana-multiplier-bot/internal/storage/postgres"
	"solana-multiplier-bot/internal/strategy"
	"solana-multiplier-bot/internal/swap"
	"solana-multiplier-bot/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if err := run(*configPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *log.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Cancel on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wallet and swap pipeline. A missing key is a setup error, caught here.
	w, err := wallet.FromBase58Secret(cfg.Router.PrivateKey)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	pipeline, err := swap.NewPipeline(cfg.Router.APIHost, cfg.Router.Chain, w,
		swap.WithSlippage(cfg.Router.Slippage),
		swap.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// Relay handshake must complete before any submission.
	auth := swap.NewTelegramAuthenticator(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err := pipeline.Authenticate(ctx, auth); err != nil {
		return err
	}

	feed, err := marketfeed.New(cfg.Exchange.Name, marketfeed.Credentials{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
	})
	if err != nil {
		return fmt.Errorf("create market feed (available: %v): %w", marketfeed.Providers(), err)
	}

	instruments := cfg.Instruments()
	if streaming, ok := feed.(*marketfeed.StreamingFeed); ok {
		symbols := make([]string, 0, len(instruments))
		for _, inst := range instruments {
			symbols = append(symbols, inst.Symbol)
		}
		if err := streaming.Start(ctx, symbols, cfg.Timeframe); err != nil {
			return fmt.Errorf("start market stream: %w", err)
		}
		defer streaming.Close()
	}

	strat, err := strategy.FromName(cfg.Strategy.Name, strategy.Params{
		AllocationFraction: cfg.Strategy.MaxAllocationPercent / 100,
		SellFraction2x:     cfg.Strategy.SellPercent2x / 100,
		SellFraction3x:     cfg.Strategy.SellPercent3x / 100,
	})
	if err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}

	oracle := safety.NewRugcheckClient(cfg.Rugcheck.BaseURL, cfg.Rugcheck.APIKey,
		safety.WithLogger(logger),
	)

	// Optional journal backends
	var executionStore storage.ExecutionStore
	if dsn := cfg.Journal.PostgresDSN; dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect journal: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
		executionStore = postgres.NewExecutionStore(pool)
	}

	var candleStore storage.CandleStore
	if dsn := cfg.Journal.ClickhouseDSN; dsn != "" {
		conn, err := chstore.NewConn(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect candle archive: %w", err)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return fmt.Errorf("migrate candle archive: %w", err)
		}
		candleStore = chstore.NewCandleStore(conn)
	}

	metrics := observability.NewMetrics("")
	if addr := cfg.Metrics.Addr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Printf("[main] metrics server stopped: %v", err)
			}
		}()
	}

	paceDelay, err := cfg.PaceDelay()
	if err != nil {
		return err
	}
	errorBackoff, err := cfg.ErrorBackoff()
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.Options{
		Oracle:         oracle,
		Feed:           feed,
		Strategy:       strat,
		Pipeline:       pipeline,
		Instruments:    instruments,
		Timeframe:      cfg.Timeframe,
		PaceDelay:      paceDelay,
		ErrorBackoff:   errorBackoff,
		ExecutionStore: executionStore,
		CandleStore:    candleStore,
		Metrics:        metrics,
		Logger:         logger,
	})

	logger.Printf("[main] starting trading bot, wallet %s", w.Address())
	if err := orch.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Printf("[main] trading bot stopped")
	return nil
}
