// Package marketdata lists the price feeds the engine can read closes from.
package marketdata

import (
	"maps"
	"slices"

	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-meanrev/pkg/strategy"
)

// ProviderInfo contains metadata about a market data feed.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported feeds.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderCoinbase: {
		Name:         string(provider.ProviderCoinbase),
		DisplayName:  "Coinbase Exchange",
		Description:  "Public candles for crypto products such as ETH-USD",
		RequiresAuth: false,
	},
	provider.ProviderBinance: {
		Name:         string(provider.ProviderBinance),
		DisplayName:  "Binance USD-M Futures",
		Description:  "Public futures klines for perpetual contracts such as ETHUSDT",
		RequiresAuth: false,
	},
	provider.ProviderPolygon: {
		Name:         string(provider.ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "Aggregate bars for US equities and crypto tickers",
		RequiresAuth: true,
	},
}

// GetSupportedProviders returns the names of all supported feeds, sorted.
func GetSupportedProviders() []string {
	names := make([]string, 0, len(providerRegistry))
	for _, providerType := range slices.Sorted(maps.Keys(providerRegistry)) {
		names = append(names, string(providerType))
	}

	return names
}

// GetProviderInfo returns metadata for a specific feed.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetFeedConfigSchema returns the JSON schema for a feed's configuration.
func GetFeedConfigSchema(providerName string) (string, error) {
	switch provider.ProviderType(providerName) {
	case provider.ProviderCoinbase:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return strategy.ToJSONSchema(provider.CoinbaseFeedConfig{})
	case provider.ProviderBinance:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return strategy.ToJSONSchema(provider.BinanceFeedConfig{})
	case provider.ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return strategy.ToJSONSchema(provider.PolygonFeedConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}
}
