package types

import (
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

// BookSide selects one side of an order book.
type BookSide string

const (
	BookSideBid BookSide = "bid"
	BookSideAsk BookSide = "ask"
)

// PriceLevel is a single price and size entry in an order book.
type PriceLevel struct {
	Price decimal.Decimal `json:"price" yaml:"price"`
	Size  decimal.Decimal `json:"size" yaml:"size"`
}

// OrderBookSnapshot is a point-in-time view of the book.
// Bids are sorted descending by price, asks ascending.
type OrderBookSnapshot struct {
	Symbol string       `json:"symbol" yaml:"symbol"`
	Bids   []PriceLevel `json:"bids" yaml:"bids"`
	Asks   []PriceLevel `json:"asks" yaml:"asks"`
}

var midpointWeight = decimal.RequireFromString("0.5")

// BestBid returns the top bid level.
func (b OrderBookSnapshot) BestBid() (PriceLevel, error) {
	return b.LevelAt(BookSideBid, 0)
}

// BestAsk returns the top ask level.
func (b OrderBookSnapshot) BestAsk() (PriceLevel, error) {
	return b.LevelAt(BookSideAsk, 0)
}

// LevelAt returns the level at the given zero-based depth on one side.
func (b OrderBookSnapshot) LevelAt(side BookSide, depth int) (PriceLevel, error) {
	var levels []PriceLevel

	switch side {
	case BookSideBid:
		levels = b.Bids
	case BookSideAsk:
		levels = b.Asks
	default:
		return PriceLevel{}, errors.Newf(errors.ErrCodeInvalidParameter, "unknown book side: %s", side)
	}

	if depth < 0 || depth >= len(levels) {
		return PriceLevel{}, errors.NewEmptyBookError(b.Symbol, string(side), depth)
	}

	return levels[depth], nil
}

// MidPrice returns bestBid + (bestAsk - bestBid) * 0.5.
func (b OrderBookSnapshot) MidPrice() (decimal.Decimal, error) {
	bid, err := b.BestBid()
	if err != nil {
		return decimal.Zero, err
	}

	ask, err := b.BestAsk()
	if err != nil {
		return decimal.Zero, err
	}

	return bid.Price.Add(ask.Price.Sub(bid.Price).Mul(midpointWeight)), nil
}

// Validate checks that both sides carry at least one level.
func (b OrderBookSnapshot) Validate() error {
	if len(b.Bids) == 0 {
		return errors.NewEmptyBookError(b.Symbol, string(BookSideBid), 0)
	}

	if len(b.Asks) == 0 {
		return errors.NewEmptyBookError(b.Symbol, string(BookSideAsk), 0)
	}

	return nil
}
