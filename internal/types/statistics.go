package types

// PriceStatistics is the rolling mean and sample standard deviation of a price window.
// It is recomputed every cycle.
type PriceStatistics struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// LowerBand returns mean - numStd*stddev.
func (s PriceStatistics) LowerBand(numStd float64) float64 {
	return s.Mean - numStd*s.StdDev
}
