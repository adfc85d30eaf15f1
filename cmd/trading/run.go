package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/config"
	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine"
	enginev1 "github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// newEngine builds a ready-to-run engine from the configuration document.
func newEngine(cfg config.Config, log *logger.Logger) (*enginev1.MeanReversionEngineV1, error) {
	eng := enginev1.NewMeanReversionEngineV1(log)
	if err := eng.Initialize(cfg.EngineConfig()); err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	exchangeType, exchangeConfig := cfg.ExchangeProviderConfig()

	exchange, err := tradingprovider.NewExchange(exchangeType, exchangeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange client: %w", err)
	}

	if err := eng.SetExchange(exchange, exchange); err != nil {
		return nil, err
	}

	feedType, feedConfig, err := cfg.FeedProviderConfig()
	if err != nil {
		return nil, err
	}

	feed, err := provider.NewFeed(feedType, feedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create price feed: %w", err)
	}

	if err := eng.SetFeed(feed); err != nil {
		return nil, err
	}

	return eng, nil
}

func loadConfig(cmd *cli.Command) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err //nolint:exhaustruct // error path
	}

	log, err := logger.NewLoggerWithLevel(cfg.App.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err) //nolint:exhaustruct // error path
	}

	return cfg, log, nil
}

// printCallbacks reports engine progress on w.
func printCallbacks(w io.Writer) engine.Callbacks {
	onStart := engine.OnEngineStartCallback(func(symbols []string, interval time.Duration, runPath string) error {
		fmt.Fprintf(w, "Engine started: symbols=%v, interval=%s\n", symbols, interval)

		if runPath != "" {
			fmt.Fprintf(w, "Journal: %s\n", runPath)
		}

		return nil
	})
	onStop := engine.OnEngineStopCallback(func(err error) {
		if err != nil && !stderrors.Is(err, context.Canceled) {
			fmt.Fprintf(w, "Engine stopped with error: %v\n", err)
		} else {
			fmt.Fprintln(w, "Engine stopped")
		}
	})
	onOrderPlaced := engine.OnOrderPlacedCallback(func(record types.ActionRecord) error {
		fmt.Fprintf(w, "Order placed: %s %s %s %s @ %s (%s) id=%s\n",
			record.Symbol, record.Side, record.OrderType, record.Size, record.Price, record.Reason, record.OrderID)

		return nil
	})
	onOrderCancelled := engine.OnOrderCancelledCallback(func(record types.ActionRecord) error {
		fmt.Fprintf(w, "Order cancelled: %s %s (%s)\n", record.Symbol, record.OrderID, record.Reason)

		return nil
	})
	onMarketError := engine.OnMarketErrorCallback(func(cycleID, symbol string, err error) {
		fmt.Fprintf(w, "Market %s failed in cycle %s: %v\n", symbol, cycleID, err)
	})

	return engine.Callbacks{
		OnEngineStart:    &onStart,
		OnEngineStop:     &onStop,
		OnCycleStart:     nil,
		OnCycleEnd:       nil,
		OnOrderPlaced:    &onOrderPlaced,
		OnOrderCancelled: &onOrderCancelled,
		OnMarketError:    &onMarketError,
		OnStatsUpdate:    nil,
		OnStatusUpdate:   nil,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	log.Info("Starting mean reversion engine",
		zap.String("name", cfg.App.Name),
		zap.String("exchange", cfg.Exchange.Provider),
		zap.String("feed", cfg.Feed.Provider),
		zap.Bool("dry_run", cfg.Strategy.DryRun),
	)

	err = eng.Run(ctx, printCallbacks(cmd.Root().Writer))
	if stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.Root().Writer, "Trading stopped by user")

		return nil
	}

	return err
}

func cycleAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	if cmd.Bool("dry-run") {
		cfg.Strategy.DryRun = true
	}

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn("Failed to close engine", zap.Error(err))
		}
	}()

	report, err := eng.RunCycle(ctx, printCallbacks(cmd.Root().Writer))
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to render cycle report: %w", err)
	}

	_, err = cmd.Root().Writer.Write(out)

	return err
}
