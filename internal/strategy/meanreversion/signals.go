package meanreversion

import (
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/shopspring/decimal"
)

// EntrySignal is true when price sits more than numStd standard deviations below the mean.
func EntrySignal(price float64, stats types.PriceStatistics, numStd float64) bool {
	return price < stats.LowerBand(numStd)
}

// TakeProfitSignal is true when price has risen above entryPrice*multiplier.
func TakeProfitSignal(entryPrice, price, multiplier decimal.Decimal) bool {
	return entryPrice.Mul(multiplier).LessThan(price)
}

// StopLossSignal is true when price has fallen below entryPrice*multiplier.
func StopLossSignal(entryPrice, price, multiplier decimal.Decimal) bool {
	return price.LessThan(entryPrice.Mul(multiplier))
}

// SignalEngine binds the three signals to a strategy config.
type SignalEngine struct {
	numStd               float64
	takeProfitMultiplier decimal.Decimal
	stopLossMultiplier   decimal.Decimal
}

// NewSignalEngine creates a SignalEngine from the strategy config.
func NewSignalEngine(cfg Config) SignalEngine {
	return SignalEngine{
		numStd:               cfg.NumStd,
		takeProfitMultiplier: cfg.TakeProfitMultiplier,
		stopLossMultiplier:   cfg.StopLossMultiplier,
	}
}

// Entry evaluates the entry signal on a book price.
func (s SignalEngine) Entry(price decimal.Decimal, stats types.PriceStatistics) bool {
	return EntrySignal(price.InexactFloat64(), stats, s.numStd)
}

// TakeProfit evaluates the take-profit signal for a position entered at entryPrice.
func (s SignalEngine) TakeProfit(entryPrice, price decimal.Decimal) bool {
	return TakeProfitSignal(entryPrice, price, s.takeProfitMultiplier)
}

// StopLoss evaluates the stop-loss signal for a position entered at entryPrice.
func (s SignalEngine) StopLoss(entryPrice, price decimal.Decimal) bool {
	return StopLossSignal(entryPrice, price, s.stopLossMultiplier)
}
