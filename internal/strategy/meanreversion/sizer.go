package meanreversion

import (
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

// PositionSizer turns account equity into a venue-valid entry size.
type PositionSizer struct {
	equityCap decimal.Decimal
}

// NewPositionSizer creates a sizer that never commits more than equityCap.
func NewPositionSizer(equityCap decimal.Decimal) PositionSizer {
	return PositionSizer{equityCap: equityCap}
}

// Size computes min(equity, cap)/indexPrice, truncated to a multiple of the
// step size, rounded to the step size's decimals and raised to the venue minimum.
func (s PositionSizer) Size(equity decimal.Decimal, market types.Market) (decimal.Decimal, error) {
	if !market.StepSize.IsPositive() {
		return decimal.Zero, errors.NewInvalidStepSizeError(market.Symbol, market.StepSize.String())
	}

	if !market.IndexPrice.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter,
			"index price for %s must be greater than zero, got %s", market.Symbol, market.IndexPrice)
	}

	notional := decimal.Min(equity, s.equityCap)
	if notional.IsNegative() {
		notional = decimal.Zero
	}

	raw := notional.Div(market.IndexPrice)
	truncated := raw.Sub(raw.Mod(market.StepSize)).Round(market.StepDecimals())

	return decimal.Max(truncated, market.MinOrderSize), nil
}
