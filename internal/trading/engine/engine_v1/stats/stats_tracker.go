package stats

import (
	"maps"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"go.uber.org/zap"
)

// StatsTracker accumulates cycle statistics for a run and writes them to stats.yaml.
type StatsTracker struct {
	symbols      []string
	runID        string
	sessionStart time.Time
	currentDate  string
	dryRun       bool
	lastCycleID  string
	lastCycleAt  time.Time

	// Daily counters reset on date boundary
	daily types.CycleCounters

	// Cumulative counters from session start
	cumulative types.CycleCounters

	actionsFilePath string
	statsOutputPath string

	now    func() time.Time
	mu     sync.Mutex
	logger *logger.Logger
}

// NewStatsTracker creates a new StatsTracker instance.
func NewStatsTracker(log *logger.Logger) *StatsTracker {
	return &StatsTracker{
		symbols:         nil,
		runID:           "",
		sessionStart:    time.Time{},
		currentDate:     "",
		dryRun:          false,
		lastCycleID:     "",
		lastCycleAt:     time.Time{},
		daily:           newCounters(),
		cumulative:      newCounters(),
		actionsFilePath: "",
		statsOutputPath: "",
		now:             time.Now,
		mu:              sync.Mutex{},
		logger:          log,
	}
}

func newCounters() types.CycleCounters {
	return types.CycleCounters{
		Cycles:            0,
		InterruptedCycles: 0,
		MarketsProcessed:  0,
		MarketsFailed:     0,
		OrdersPlaced:      0,
		OrdersCancelled:   0,
		OrdersRejected:    0,
		ErrorsByCode:      map[int]int{},
	}
}

// Initialize sets up the stats tracker with session information.
func (s *StatsTracker) Initialize(symbols []string, runID string, sessionStart time.Time, dryRun bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.symbols = symbols
	s.runID = runID
	s.sessionStart = sessionStart
	s.currentDate = sessionStart.Format("2006-01-02")
	s.dryRun = dryRun

	s.logger.Info("Stats tracker initialized",
		zap.String("run_id", runID),
		zap.Strings("symbols", symbols),
	)
}

// SetFilePaths sets the journal and stats output paths.
func (s *StatsTracker) SetFilePaths(actionsPath, statsPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actionsFilePath = actionsPath
	s.statsOutputPath = statsPath
}

// RecordCycle folds a cycle report into the daily and cumulative counters.
func (s *StatsTracker) RecordCycle(report types.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateCounters(&s.daily, report)
	updateCounters(&s.cumulative, report)

	s.lastCycleID = report.CycleID
	s.lastCycleAt = report.FinishedAt

	s.logger.Debug("Cycle recorded",
		zap.String("cycle_id", report.CycleID),
		zap.Int("markets", len(report.Markets)),
		zap.Int("failed", report.FailedMarkets()),
		zap.Int("total_cycles", s.cumulative.Cycles),
	)
}

func updateCounters(counters *types.CycleCounters, report types.CycleReport) {
	counters.Cycles++
	if report.Interrupted {
		counters.InterruptedCycles++
	}

	for _, market := range report.Markets {
		counters.MarketsProcessed++

		if market.Failed() {
			counters.MarketsFailed++
			counters.ErrorsByCode[market.ErrorCode]++
		}

		for _, record := range market.Records {
			switch record.Status {
			case types.ActionStatusSubmitted:
				if record.Kind == types.ActionKindPlace {
					counters.OrdersPlaced++
				} else {
					counters.OrdersCancelled++
				}
			case types.ActionStatusRejected:
				counters.OrdersRejected++
			case types.ActionStatusSkipped, types.ActionStatusDryRun:
			}
		}
	}
}

// HandleDateBoundary resets the daily counters while keeping the cumulative ones.
func (s *StatsTracker) HandleDateBoundary(newDate string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldDate := s.currentDate
	s.currentDate = newDate
	s.daily = newCounters()

	s.logger.Info("Date boundary handled, daily stats reset",
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate),
	)
}

// GetDailyStats returns the statistics since the last date boundary.
func (s *StatsTracker) GetDailyStats() types.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildStats(s.daily, s.currentDate)
}

// GetCumulativeStats returns the statistics from session start.
func (s *StatsTracker) GetCumulativeStats() types.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildStats(s.cumulative, s.sessionStart.Format("2006-01-02"))
}

//nolint:funcorder // helper method used by GetDailyStats, GetCumulativeStats, WriteStatsYAML
func (s *StatsTracker) buildStats(counters types.CycleCounters, date string) types.EngineStats {
	counters.ErrorsByCode = maps.Clone(counters.ErrorsByCode)

	return types.EngineStats{
		ID:              s.runID,
		Date:            date,
		SessionStart:    s.sessionStart,
		LastUpdated:     s.now(),
		Symbols:         s.symbols,
		DryRun:          s.dryRun,
		LastCycleID:     s.lastCycleID,
		LastCycleAt:     s.lastCycleAt,
		Counters:        counters,
		ActionsFilePath: s.actionsFilePath,
	}
}

// WriteStatsYAML writes the cumulative stats to the stats output path, if one is set.
func (s *StatsTracker) WriteStatsYAML() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statsOutputPath == "" {
		return nil
	}

	return types.WriteEngineStats(s.statsOutputPath, s.buildStats(s.cumulative, s.currentDate))
}
