package types

import "time"

// EngineStatus represents the current state of the engine.
type EngineStatus string

const (
	EngineStatusRunning EngineStatus = "running"
	EngineStatusStopped EngineStatus = "stopped"
)

// MarketResult is the outcome of one market's reconciliation in a cycle.
type MarketResult struct {
	Symbol    string         `yaml:"symbol" json:"symbol"`
	Actions   []OrderAction  `yaml:"actions" json:"actions"`
	Records   []ActionRecord `yaml:"records" json:"records"`
	Executed  int            `yaml:"executed" json:"executed"`
	MidPrice  string         `yaml:"mid_price,omitempty" json:"mid_price,omitempty"`
	Err       error          `yaml:"-" json:"-"`
	ErrorCode int            `yaml:"error_code,omitempty" json:"error_code,omitempty"`
}

// Failed reports whether the market step aborted.
func (r MarketResult) Failed() bool {
	return r.Err != nil
}

// CycleReport summarizes one pass over all configured markets.
type CycleReport struct {
	CycleID    string         `yaml:"cycle_id" json:"cycle_id"`
	StartedAt  time.Time      `yaml:"started_at" json:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at" json:"finished_at"`
	Markets    []MarketResult `yaml:"markets" json:"markets"`
	// Interrupted is set when shutdown stopped the cycle before all markets ran.
	Interrupted bool `yaml:"interrupted" json:"interrupted"`
}

// FailedMarkets returns the number of markets whose step aborted.
func (c CycleReport) FailedMarkets() int {
	n := 0

	for _, m := range c.Markets {
		if m.Failed() {
			n++
		}
	}

	return n
}
