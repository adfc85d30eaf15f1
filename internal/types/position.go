package types

import "github.com/shopspring/decimal"

type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// Position is an open position observed on the venue. The engine never creates
// or mutates positions; they appear when orders fill.
type Position struct {
	Symbol     string          `yaml:"symbol" json:"symbol"`
	Side       PositionSide    `yaml:"side" json:"side"`
	EntryPrice decimal.Decimal `yaml:"entry_price" json:"entry_price"`
	OpenSize   decimal.Decimal `yaml:"open_size" json:"open_size"`
}

// SplitPositions groups positions by side, preserving venue order.
func SplitPositions(positions []Position) (long []Position, short []Position) {
	for _, p := range positions {
		switch p.Side {
		case PositionSideLong:
			long = append(long, p)
		case PositionSideShort:
			short = append(short, p)
		}
	}

	return long, short
}
