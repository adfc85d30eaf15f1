package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// ProviderType defines the type of market data feed.
type ProviderType string

const (
	ProviderCoinbase ProviderType = "coinbase"
	ProviderBinance  ProviderType = "binance"
	ProviderPolygon  ProviderType = "polygon"
)

// DefaultFeedTimeout bounds every feed request.
const DefaultFeedTimeout = 5 * time.Second

// Feed supplies recent closing prices for a market.
type Feed interface {
	// GetRecentCloses returns up to count closes, oldest first.
	// The caller's context bounds the request in addition to DefaultFeedTimeout.
	GetRecentCloses(ctx context.Context, symbol string, count int) ([]float64, error)
}

// NewFeed creates a market data feed based on the provider type.
func NewFeed(providerType ProviderType, config any) (Feed, error) {
	switch providerType {
	case ProviderCoinbase:
		cfg, ok := config.(CoinbaseFeedConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "coinbase feed requires CoinbaseFeedConfig")
		}

		return NewCoinbaseFeed(cfg)
	case ProviderBinance:
		cfg, ok := config.(BinanceFeedConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "binance feed requires BinanceFeedConfig")
		}

		return NewBinanceFeed(cfg)
	case ProviderPolygon:
		cfg, ok := config.(PolygonFeedConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon feed requires PolygonFeedConfig")
		}

		return NewPolygonFeed(cfg)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// lastN keeps the newest count values of an oldest-first slice.
func lastN(values []float64, count int) []float64 {
	if len(values) <= count {
		return values
	}

	return values[len(values)-count:]
}

func validateCount(symbol string, count int) error {
	if count <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "close count for %s must be positive, got %d", symbol, count)
	}

	return nil
}
