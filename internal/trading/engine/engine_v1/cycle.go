package engine_v1

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/indicator"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"go.uber.org/zap"
)

// RunCycle implements engine.Engine.
//
// Each market runs on a context detached from ctx so a shutdown lets the market in
// flight finish; the cycle then stops before the next market and is marked interrupted.
func (e *MeanReversionEngineV1) RunCycle(ctx context.Context, callbacks engine.Callbacks) (types.CycleReport, error) {
	if err := e.preRunCheck(); err != nil {
		return types.CycleReport{}, err //nolint:exhaustruct // no cycle ran
	}

	cycleTime := e.now()
	report := types.CycleReport{
		CycleID:     e.newID(),
		StartedAt:   cycleTime,
		FinishedAt:  time.Time{},
		Markets:     make([]types.MarketResult, 0, len(e.config.Markets)),
		Interrupted: false,
	}

	e.handleDateBoundary(cycleTime)

	if callbacks.OnCycleStart != nil {
		if err := (*callbacks.OnCycleStart)(report.CycleID, cycleTime); err != nil {
			e.log.Warn("OnCycleStart callback failed", zap.Error(err))
		}
	}

	for _, market := range e.config.Markets {
		if ctx.Err() != nil {
			report.Interrupted = true

			break
		}

		result := e.runMarket(context.WithoutCancel(ctx), report.CycleID, cycleTime, market)
		report.Markets = append(report.Markets, result)

		e.afterMarket(report.CycleID, result, callbacks)
	}

	report.FinishedAt = e.now()

	e.log.Info("Cycle finished",
		zap.String("cycle_id", report.CycleID),
		zap.Int("markets", len(report.Markets)),
		zap.Int("failed", report.FailedMarkets()),
		zap.Bool("interrupted", report.Interrupted),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	if e.statsTracker != nil {
		e.statsTracker.RecordCycle(report)

		if err := e.statsTracker.WriteStatsYAML(); err != nil {
			e.log.Warn("Failed to write stats", zap.Error(err))
		}

		if callbacks.OnStatsUpdate != nil {
			if err := (*callbacks.OnStatsUpdate)(e.statsTracker.GetCumulativeStats()); err != nil {
				e.log.Warn("OnStatsUpdate callback failed", zap.Error(err))
			}
		}
	}

	if callbacks.OnCycleEnd != nil {
		if err := (*callbacks.OnCycleEnd)(report); err != nil {
			e.log.Warn("OnCycleEnd callback failed", zap.Error(err))
		}
	}

	return report, nil
}

// runMarket refreshes one market, decides, and executes. Any failure aborts only this market.
func (e *MeanReversionEngineV1) runMarket(
	ctx context.Context,
	cycleID string,
	cycleTime time.Time,
	market engine.MarketConfig,
) types.MarketResult {
	log := e.log.With(zap.String("symbol", market.Symbol), zap.String("cycle_id", cycleID))
	result := types.MarketResult{
		Symbol:    market.Symbol,
		Actions:   nil,
		Records:   nil,
		Executed:  0,
		MidPrice:  "",
		Err:       nil,
		ErrorCode: 0,
	}

	fail := func(err error) types.MarketResult {
		result.Err = err
		result.ErrorCode = int(errors.GetCode(err))
		log.Error("Market step failed", zap.Int("error_code", result.ErrorCode), zap.Error(err))

		return result
	}

	state, err := e.buildState(ctx, cycleID, cycleTime, market)
	if err != nil {
		return fail(err)
	}

	if mid, err := state.Book.MidPrice(); err == nil {
		result.MidPrice = mid.String()
		log.Info("Mid market price", zap.String("mid_price", result.MidPrice))
	}

	log.Debug("Market state",
		zap.Float64("mean", state.Stats.Mean),
		zap.Float64("std_dev", state.Stats.StdDev),
		zap.Int("long_positions", len(state.LongPositions)),
		zap.Bool("open_buy", state.OpenBuyOrder.IsSome()),
		zap.Bool("open_sell", state.OpenSellOrder.IsSome()),
	)

	actions, err := e.strategy.Decide(state)
	if err != nil {
		return fail(err)
	}

	result.Actions = actions
	if len(actions) == 0 {
		log.Debug("No action")

		return result
	}

	records, execErr := e.executor.Execute(ctx, cycleID, actions)
	result.Records = records

	for _, r := range records {
		if r.Status == types.ActionStatusSubmitted || r.Status == types.ActionStatusDryRun {
			result.Executed++
		}
	}

	e.journal(records, log)

	if execErr != nil {
		return fail(execErr)
	}

	return result
}

// buildState fetches everything the strategy needs for one market. Every call is
// bounded by DefaultRequestTimeout; nothing is retried.
func (e *MeanReversionEngineV1) buildState(
	ctx context.Context,
	cycleID string,
	cycleTime time.Time,
	market engine.MarketConfig,
) (types.MarketState, error) {
	symbol := market.Symbol

	info, err := callWithTimeout(ctx, func(c context.Context) (types.Market, error) {
		return e.public.GetMarketInfo(c, symbol)
	})
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	closes, err := callWithTimeout(ctx, func(c context.Context) ([]float64, error) {
		return e.feed.GetRecentCloses(c, market.PriceSymbol(), e.config.Strategy.NumSamples)
	})
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	window := e.windows[symbol]
	window.Reset()
	window.Push(closes...)

	stats, err := indicator.CalculatePriceStatistics(symbol, window.Values())
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	book, err := callWithTimeout(ctx, func(c context.Context) (types.OrderBookSnapshot, error) {
		return e.public.GetOrderBook(c, symbol)
	})
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	positions, err := callWithTimeout(ctx, func(c context.Context) ([]types.Position, error) {
		return e.private.GetOpenPositions(c, symbol)
	})
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	longPositions, _ := types.SplitPositions(positions)

	openBuy, err := e.firstOpenLimitOrder(ctx, symbol, types.OrderSideBuy)
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	openSell, err := e.firstOpenLimitOrder(ctx, symbol, types.OrderSideSell)
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	account, err := callWithTimeout(ctx, e.private.GetAccount)
	if err != nil {
		return types.MarketState{}, err //nolint:exhaustruct // error path
	}

	return types.MarketState{
		CycleID:       cycleID,
		CycleTime:     cycleTime,
		Market:        info,
		Account:       account,
		Book:          book,
		Stats:         stats,
		LongPositions: longPositions,
		OpenBuyOrder:  openBuy,
		OpenSellOrder: openSell,
	}, nil
}

// firstOpenLimitOrder returns the first open limit order on one side, if any.
func (e *MeanReversionEngineV1) firstOpenLimitOrder(
	ctx context.Context,
	symbol string,
	side types.OrderSide,
) (optional.Option[types.Order], error) {
	orders, err := callWithTimeout(ctx, func(c context.Context) ([]types.Order, error) {
		return e.private.GetOpenOrders(c, symbol, side, optional.Some(types.OrderTypeLimit), 1)
	})
	if err != nil {
		return optional.None[types.Order](), err
	}

	if len(orders) == 0 {
		return optional.None[types.Order](), nil
	}

	return optional.Some(orders[0]), nil
}

// afterMarket reports a finished market through the callbacks.
func (e *MeanReversionEngineV1) afterMarket(cycleID string, result types.MarketResult, callbacks engine.Callbacks) {
	if result.Failed() && callbacks.OnMarketError != nil {
		(*callbacks.OnMarketError)(cycleID, result.Symbol, result.Err)
	}

	for _, record := range result.Records {
		if record.Status != types.ActionStatusSubmitted {
			continue
		}

		var err error

		switch record.Kind {
		case types.ActionKindPlace:
			if callbacks.OnOrderPlaced != nil {
				err = (*callbacks.OnOrderPlaced)(record)
			}
		case types.ActionKindCancel:
			if callbacks.OnOrderCancelled != nil {
				err = (*callbacks.OnOrderCancelled)(record)
			}
		}

		if err != nil {
			e.log.Warn("Order callback failed",
				zap.String("symbol", record.Symbol),
				zap.String("cycle_id", cycleID),
				zap.Error(err),
			)
		}
	}
}

func (e *MeanReversionEngineV1) journal(records []types.ActionRecord, log *zap.Logger) {
	if e.actionsWriter == nil {
		return
	}

	if err := e.actionsWriter.WriteBatch(records); err != nil {
		log.Warn("Failed to journal actions", zap.Error(err))
	}
}

// handleDateBoundary moves the journal into a new date folder at midnight.
func (e *MeanReversionEngineV1) handleDateBoundary(cycleTime time.Time) {
	if e.sessionManager == nil {
		return
	}

	changed, err := e.sessionManager.HandleDateBoundary(cycleTime)
	if err != nil {
		e.log.Warn("Failed to handle date boundary", zap.Error(err))

		return
	}

	if !changed {
		return
	}

	e.statsTracker.HandleDateBoundary(e.sessionManager.GetCurrentDate())
	e.statsTracker.SetFilePaths(e.sessionManager.ActionsPath(), e.sessionManager.StatsPath())

	if e.actionsWriter != nil {
		if err := e.actionsWriter.Close(); err != nil {
			e.log.Warn("Failed to close actions writer", zap.Error(err))
		}
	}

	e.actionsWriter = writers.NewActionsWriter(e.sessionManager.ActionsPath())
	if err := e.actionsWriter.Initialize(); err != nil {
		e.log.Warn("Failed to open actions writer for new date", zap.Error(err))

		e.actionsWriter = nil
	}
}
