package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// MarketState is the per-market snapshot the strategy decides on.
// It is rebuilt from venue data every cycle and never shared across markets.
type MarketState struct {
	CycleID   string
	CycleTime time.Time
	Market    Market
	Account   AccountState
	Book      OrderBookSnapshot
	Stats     PriceStatistics
	// LongPositions are the open long positions; the strategy acts on index 0.
	LongPositions []Position
	// OpenBuyOrder is the open limit buy order, if any.
	OpenBuyOrder optional.Option[Order]
	// OpenSellOrder is the open limit sell order, if any.
	OpenSellOrder optional.Option[Order]
}

// HasLongPosition reports whether a long position is open.
func (s MarketState) HasLongPosition() bool {
	return len(s.LongPositions) > 0
}
