package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CycleCounters accumulates what the engine did over many cycles.
type CycleCounters struct {
	Cycles            int `yaml:"cycles" json:"cycles"`
	InterruptedCycles int `yaml:"interrupted_cycles" json:"interrupted_cycles"`
	MarketsProcessed  int `yaml:"markets_processed" json:"markets_processed"`
	MarketsFailed     int `yaml:"markets_failed" json:"markets_failed"`
	OrdersPlaced      int `yaml:"orders_placed" json:"orders_placed"`
	OrdersCancelled   int `yaml:"orders_cancelled" json:"orders_cancelled"`
	OrdersRejected    int `yaml:"orders_rejected" json:"orders_rejected"`
	// ErrorsByCode counts failed markets by pkg/errors code.
	ErrorsByCode map[int]int `yaml:"errors_by_code" json:"errors_by_code"`
}

// EngineStats is the content of a session's stats.yaml.
type EngineStats struct {
	ID              string        `yaml:"id" json:"id"`
	Date            string        `yaml:"date" json:"date"`
	SessionStart    time.Time     `yaml:"session_start" json:"session_start"`
	LastUpdated     time.Time     `yaml:"last_updated" json:"last_updated"`
	Symbols         []string      `yaml:"symbols" json:"symbols"`
	DryRun          bool          `yaml:"dry_run" json:"dry_run"`
	LastCycleID     string        `yaml:"last_cycle_id" json:"last_cycle_id"`
	LastCycleAt     time.Time     `yaml:"last_cycle_at" json:"last_cycle_at"`
	Counters        CycleCounters `yaml:"counters" json:"counters"`
	ActionsFilePath string        `yaml:"actions_file_path" json:"actions_file_path"`
}

// WriteEngineStats writes engine statistics to a YAML file.
func WriteEngineStats(path string, stats EngineStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal engine stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write engine stats to file: %w", err)
	}

	return nil
}

// ReadEngineStats reads engine statistics from a YAML file.
func ReadEngineStats(path string) (EngineStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineStats{}, fmt.Errorf("failed to read engine stats file: %w", err)
	}

	var stats EngineStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return EngineStats{}, fmt.Errorf("failed to unmarshal engine stats: %w", err)
	}

	return stats, nil
}
