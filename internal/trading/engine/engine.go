package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/strategy/meanreversion"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
)

// DefaultCycleInterval is the pause between two reconciliation cycles.
const DefaultCycleInterval = 60 * time.Second

// DefaultRequestTimeout bounds every exchange and feed call inside a cycle.
const DefaultRequestTimeout = 5 * time.Second

// Lifecycle callback types for the engine.
// Only OnEngineStart can abort execution; errors from the others are logged.

// OnEngineStartCallback is called once the starting account check has passed.
// runPath is the session folder, or an empty string when nothing is persisted.
type OnEngineStartCallback func(symbols []string, interval time.Duration, runPath string) error

// OnEngineStopCallback is called when the engine stops (always called via defer).
type OnEngineStopCallback func(err error)

// OnCycleStartCallback is called before the first market of a cycle.
type OnCycleStartCallback func(cycleID string, cycleTime time.Time) error

// OnCycleEndCallback is called with the report of every finished cycle.
type OnCycleEndCallback func(report types.CycleReport) error

// OnOrderPlacedCallback is called for every order the venue acknowledged.
type OnOrderPlacedCallback func(record types.ActionRecord) error

// OnOrderCancelledCallback is called for every cancel the venue acknowledged.
type OnOrderCancelledCallback func(record types.ActionRecord) error

// OnMarketErrorCallback is called when one market's step aborts.
type OnMarketErrorCallback func(cycleID, symbol string, err error)

// OnStatsUpdateCallback is called after each cycle when statistics are tracked.
type OnStatsUpdateCallback func(stats types.EngineStats) error

// OnStatusUpdateCallback is called when engine status changes.
type OnStatusUpdateCallback func(status types.EngineStatus) error

// Callbacks holds all lifecycle callback functions for the engine.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnEngineStart    *OnEngineStartCallback
	OnEngineStop     *OnEngineStopCallback
	OnCycleStart     *OnCycleStartCallback
	OnCycleEnd       *OnCycleEndCallback
	OnOrderPlaced    *OnOrderPlacedCallback
	OnOrderCancelled *OnOrderCancelledCallback
	OnMarketError    *OnMarketErrorCallback
	OnStatsUpdate    *OnStatsUpdateCallback
	OnStatusUpdate   *OnStatusUpdateCallback
}

// MarketConfig names a market on the venue and, when it differs, on the price feed.
type MarketConfig struct {
	Symbol     string
	FeedSymbol string
}

// PriceSymbol returns the symbol to ask the feed for.
func (m MarketConfig) PriceSymbol() string {
	if m.FeedSymbol != "" {
		return m.FeedSymbol
	}

	return m.Symbol
}

// EngineConfig holds the runtime configuration of the mean-reversion engine.
// internal/config builds it from the YAML document.
type EngineConfig struct {
	// Markets are reconciled in this order every cycle.
	Markets []MarketConfig

	// Interval is the pause between cycles (default: 60s).
	Interval time.Duration

	// DryRun logs and journals actions without sending them to the venue.
	DryRun bool

	// DataOutputPath enables the session journal when set.
	DataOutputPath string

	Strategy meanreversion.Config
}

// Symbols returns the venue symbols in configuration order.
func (c EngineConfig) Symbols() []string {
	symbols := make([]string, 0, len(c.Markets))
	for _, m := range c.Markets {
		symbols = append(symbols, m.Symbol)
	}

	return symbols
}

// Engine runs the mean-reversion strategy against one venue account.
type Engine interface {
	// Initialize sets up the engine with the given configuration.
	Initialize(config EngineConfig) error

	// SetExchange configures the venue clients.
	SetExchange(private tradingprovider.ExchangePrivateClient, public tradingprovider.ExchangePublicClient) error

	// SetFeed configures the price feed.
	SetFeed(feed provider.Feed) error

	// RunCycle reconciles every configured market once.
	// It returns an error only when the engine is not ready; market failures are in the report.
	RunCycle(ctx context.Context, callbacks Callbacks) (types.CycleReport, error)

	// Run checks the account, then runs one cycle immediately and one per interval.
	// Blocks until context is cancelled or the starting account check fails.
	Run(ctx context.Context, callbacks Callbacks) error

	// Close flushes the session journal and stats. Run calls it on exit.
	Close() error
}
