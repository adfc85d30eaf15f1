package types

import (
	"github.com/shopspring/decimal"
)

// Market describes a tradeable instrument as reported by the venue.
// It is refreshed every cycle and treated as immutable within it.
type Market struct {
	// Symbol is the venue identifier, e.g. "ETHUSDT" or "ETH-USD".
	Symbol string `json:"symbol" yaml:"symbol"`
	// QuoteAsset is the asset prices are denominated in.
	QuoteAsset string `json:"quote_asset" yaml:"quote_asset"`
	// StepSize is the smallest allowed size increment.
	StepSize decimal.Decimal `json:"step_size" yaml:"step_size"`
	// MinOrderSize is the smallest order size the venue accepts.
	MinOrderSize decimal.Decimal `json:"min_order_size" yaml:"min_order_size"`
	// IndexPrice is the venue index price used for sizing.
	IndexPrice decimal.Decimal `json:"index_price" yaml:"index_price"`
}

// StepDecimals returns the number of fractional digits in the step size as
// the venue wrote it ("0.001" -> 3, "0.010" -> 3, "1" -> 0).
func (m Market) StepDecimals() int32 {
	exp := m.StepSize.Exponent()
	if exp >= 0 {
		return 0
	}

	return -exp
}

// IsDust reports whether size is below the venue minimum order size.
func (m Market) IsDust(size decimal.Decimal) bool {
	return size.LessThan(m.MinOrderSize)
}
