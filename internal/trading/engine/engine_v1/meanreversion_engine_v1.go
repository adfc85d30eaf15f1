package engine_v1

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/internal/strategy/meanreversion"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/session"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/stats"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/writers"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// MeanReversionEngineV1 implements engine.Engine. Markets are reconciled one at a
// time on a single goroutine; nothing but the price windows outlives a cycle.
type MeanReversionEngineV1 struct {
	config      engine.EngineConfig
	strategy    *meanreversion.Strategy
	private     tradingprovider.ExchangePrivateClient
	public      tradingprovider.ExchangePublicClient
	feed        provider.Feed
	executor    *Executor
	windows     map[string]*types.PriceWindow
	log         *logger.Logger
	initialized bool

	now   func() time.Time
	newID func() string

	// Session management
	sessionManager *session.SessionManager

	// Statistics tracking
	statsTracker *stats.StatsTracker

	// Parquet journal of executed actions
	actionsWriter *writers.ActionsWriter
}

// NewMeanReversionEngineV1 creates a new engine logging to log.
func NewMeanReversionEngineV1(log *logger.Logger) *MeanReversionEngineV1 {
	return &MeanReversionEngineV1{
		config:         engine.EngineConfig{}, //nolint:exhaustruct // initialized via Initialize()
		strategy:       nil,
		private:        nil,
		public:         nil,
		feed:           nil,
		executor:       nil,
		windows:        map[string]*types.PriceWindow{},
		log:            log,
		initialized:    false,
		now:            time.Now,
		newID:          uuid.NewString,
		sessionManager: nil,
		statsTracker:   nil,
		actionsWriter:  nil,
	}
}

// Initialize implements engine.Engine.
func (e *MeanReversionEngineV1) Initialize(config engine.EngineConfig) error {
	if len(config.Markets) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "no markets configured")
	}

	for _, m := range config.Markets {
		if m.Symbol == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "market symbol must not be empty")
		}
	}

	if config.Interval <= 0 {
		config.Interval = engine.DefaultCycleInterval
	}

	strategy, err := meanreversion.NewStrategy(config.Strategy)
	if err != nil {
		return err
	}

	e.config = config
	e.strategy = strategy

	e.windows = make(map[string]*types.PriceWindow, len(config.Markets))
	for _, m := range config.Markets {
		e.windows[m.Symbol] = types.NewPriceWindow(config.Strategy.NumSamples)
	}

	if config.DataOutputPath != "" {
		if err := e.initializeSession(config.DataOutputPath); err != nil {
			return err
		}
	}

	e.initialized = true

	e.log.Debug("Mean reversion engine initialized",
		zap.Strings("symbols", config.Symbols()),
		zap.Duration("interval", config.Interval),
		zap.Bool("dry_run", config.DryRun),
	)

	return nil
}

//nolint:funcorder // helper method used by Initialize
func (e *MeanReversionEngineV1) initializeSession(dataOutputPath string) error {
	e.sessionManager = session.NewSessionManagerWithClock(e.log, e.now)
	if err := e.sessionManager.Initialize(dataOutputPath); err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFail, "failed to initialize session manager", err)
	}

	e.actionsWriter = writers.NewActionsWriter(e.sessionManager.ActionsPath())
	if err := e.actionsWriter.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFail, "failed to initialize actions writer", err)
	}

	e.statsTracker = stats.NewStatsTracker(e.log)
	e.statsTracker.SetFilePaths(e.sessionManager.ActionsPath(), e.sessionManager.StatsPath())

	return nil
}

// SetExchange implements engine.Engine.
func (e *MeanReversionEngineV1) SetExchange(
	private tradingprovider.ExchangePrivateClient,
	public tradingprovider.ExchangePublicClient,
) error {
	if private == nil || public == nil {
		return errors.New(errors.ErrCodeMissingParameter, "both exchange clients are required")
	}

	e.private = private
	e.public = public
	e.log.Debug("Exchange clients set")

	return nil
}

// SetFeed implements engine.Engine.
func (e *MeanReversionEngineV1) SetFeed(feed provider.Feed) error {
	if feed == nil {
		return errors.New(errors.ErrCodeMissingParameter, "feed is required")
	}

	e.feed = feed
	e.log.Debug("Price feed set")

	return nil
}

// Run implements engine.Engine.
func (e *MeanReversionEngineV1) Run(ctx context.Context, callbacks engine.Callbacks) error {
	var runErr error

	// Always call OnEngineStop and cleanup when Run exits
	defer func() {
		if callbacks.OnStatusUpdate != nil {
			_ = (*callbacks.OnStatusUpdate)(types.EngineStatusStopped)
		}

		if err := e.Close(); err != nil {
			e.log.Warn("Failed to close engine", zap.Error(err))
		}

		if callbacks.OnEngineStop != nil {
			(*callbacks.OnEngineStop)(runErr)
		}
	}()

	if err := e.preRunCheck(); err != nil {
		runErr = err

		return err
	}

	// the only fatal venue call: without an account there is nothing to size against
	account, err := callWithTimeout(ctx, e.private.GetAccount)
	if err != nil {
		runErr = errors.Wrap(errors.ErrCodeAccountFetch, "failed to fetch account at start", err)

		return runErr
	}

	e.log.Info("Account loaded",
		zap.String("equity", account.Equity.String()),
	)

	runPath := ""
	if e.sessionManager != nil {
		runPath = e.sessionManager.GetCurrentRunPath()
		e.statsTracker.Initialize(e.config.Symbols(), e.sessionManager.GetRunID(),
			e.sessionManager.GetSessionStart(), e.config.DryRun)
	}

	if callbacks.OnEngineStart != nil {
		if err := (*callbacks.OnEngineStart)(e.config.Symbols(), e.config.Interval, runPath); err != nil {
			runErr = errors.Wrap(errors.ErrCodeCallbackFailed, "OnEngineStart callback failed", err)

			return runErr
		}
	}

	if callbacks.OnStatusUpdate != nil {
		_ = (*callbacks.OnStatusUpdate)(types.EngineStatusRunning)
	}

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunCycle(ctx, callbacks); err != nil {
			runErr = err

			return err
		}

		select {
		case <-ctx.Done():
			runErr = ctx.Err()

			return runErr
		case <-ticker.C:
		}
	}
}

// preRunCheck validates that all required components are configured before running.
//
//nolint:funcorder // helper method used by Run and RunCycle
func (e *MeanReversionEngineV1) preRunCheck() error {
	if !e.initialized {
		return errors.New(errors.ErrCodeEngineNotReady, "engine not initialized - call Initialize() first")
	}

	if e.private == nil || e.public == nil {
		return errors.New(errors.ErrCodeEngineNotReady, "exchange not set - call SetExchange() first")
	}

	if e.feed == nil {
		return errors.New(errors.ErrCodeEngineNotReady, "feed not set - call SetFeed() first")
	}

	if e.executor == nil {
		e.executor = NewExecutor(e.private, e.config.DryRun, e.log)
		e.executor.now = e.now
	}

	return nil
}

// Close implements engine.Engine. It writes the final stats and closes the journal.
// Calling it more than once is a no-op.
func (e *MeanReversionEngineV1) Close() error {
	if e.statsTracker != nil {
		if err := e.statsTracker.WriteStatsYAML(); err != nil {
			e.log.Warn("Failed to write final stats", zap.Error(err))
		}
	}

	if e.actionsWriter == nil {
		return nil
	}

	if err := e.actionsWriter.Flush(); err != nil {
		e.log.Warn("Failed to flush actions writer", zap.Error(err))
	}

	err := e.actionsWriter.Close()
	e.actionsWriter = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to close actions writer", err)
	}

	return nil
}

// callWithTimeout runs one venue or feed call under DefaultRequestTimeout.
func callWithTimeout[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, engine.DefaultRequestTimeout)
	defer cancel()

	return fn(callCtx)
}

// Verify MeanReversionEngineV1 implements engine.Engine interface.
var _ engine.Engine = (*MeanReversionEngineV1)(nil)
