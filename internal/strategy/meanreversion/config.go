package meanreversion

import (
	"time"

	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

// Defaults carried over from the production bot.
const (
	DefaultNumSamples           = 20
	DefaultNumStd               = 3.0
	DefaultTakeProfitMultiplier = 1.001
	DefaultStopLossMultiplier   = 0.98
	DefaultOrderExpiry          = time.Hour
	DefaultStopLossDepth        = 10
)

var (
	// DefaultEquityCap bounds the notional committed to a single entry.
	DefaultEquityCap = decimal.NewFromInt(10000)
	// DefaultLimitFee is the fee ceiling sent with post-only limit orders.
	DefaultLimitFee = decimal.RequireFromString("0.0005")
	// DefaultStopLossFee is the fee ceiling sent with the stop-loss market order.
	DefaultStopLossFee = decimal.RequireFromString("0.002")
)

// Config holds the tunable knobs of the mean-reversion strategy.
type Config struct {
	// NumSamples is the number of recent closes the statistics are computed over.
	NumSamples int
	// NumStd is how many standard deviations below the mean the entry price must be.
	NumStd float64
	// TakeProfitMultiplier is applied to the entry price; prices above it take profit.
	TakeProfitMultiplier decimal.Decimal
	// StopLossMultiplier is applied to the entry price; prices below it stop out.
	StopLossMultiplier decimal.Decimal
	// EquityCap limits the equity used for sizing an entry.
	EquityCap decimal.Decimal
	// OrderExpiry is added to the cycle time to form every order's expiration.
	OrderExpiry time.Duration
	// LimitFee is sent with post-only limit orders.
	LimitFee decimal.Decimal
	// StopLossFee is sent with the stop-loss market order.
	StopLossFee decimal.Decimal
	// StopLossDepth is the zero-based bid level used as the stop-loss price.
	StopLossDepth int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		NumSamples:           DefaultNumSamples,
		NumStd:               DefaultNumStd,
		TakeProfitMultiplier: decimal.NewFromFloat(DefaultTakeProfitMultiplier),
		StopLossMultiplier:   decimal.NewFromFloat(DefaultStopLossMultiplier),
		EquityCap:            DefaultEquityCap,
		OrderExpiry:          DefaultOrderExpiry,
		LimitFee:             DefaultLimitFee,
		StopLossFee:          DefaultStopLossFee,
		StopLossDepth:        DefaultStopLossDepth,
	}
}

// Validate checks the config for values the strategy cannot act on.
func (c Config) Validate() error {
	if c.NumSamples < 2 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "num samples must be at least 2, got %d", c.NumSamples)
	}

	if c.NumStd < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "num std must not be negative, got %f", c.NumStd)
	}

	if !c.TakeProfitMultiplier.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "take profit multiplier must be positive, got %s", c.TakeProfitMultiplier)
	}

	if !c.StopLossMultiplier.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "stop loss multiplier must be positive, got %s", c.StopLossMultiplier)
	}

	if !c.EquityCap.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "equity cap must be positive, got %s", c.EquityCap)
	}

	if c.OrderExpiry <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "order expiry must be positive, got %s", c.OrderExpiry)
	}

	if c.LimitFee.IsNegative() || c.StopLossFee.IsNegative() {
		return errors.New(errors.ErrCodeInvalidConfiguration, "limit fees must not be negative")
	}

	if c.StopLossDepth < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "stop loss depth must not be negative, got %d", c.StopLossDepth)
	}

	return nil
}
