package tradingprovider

import (
	"context"
	"maps"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/rxtech-lab/argo-meanrev/pkg/strategy"
)

// ExchangePrivateClient is the authenticated side of the venue.
type ExchangePrivateClient interface {
	// GetAccount returns the account equity and position id.
	GetAccount(ctx context.Context) (types.AccountState, error)
	// GetOpenOrders returns up to limit open orders on one side of a market.
	// A limit of zero or less returns every match.
	GetOpenOrders(ctx context.Context, symbol string, side types.OrderSide, orderType optional.Option[types.OrderType], limit int) ([]types.Order, error)
	// GetOpenPositions returns the open positions of a market.
	GetOpenPositions(ctx context.Context, symbol string) ([]types.Position, error)
	// CreateOrder submits an order and returns the venue acknowledgement.
	CreateOrder(ctx context.Context, params types.OrderParams) (types.Ack, error)
	// CancelOrder cancels an open order by its venue id.
	CancelOrder(ctx context.Context, symbol string, orderID string) (types.Ack, error)
}

// ExchangePublicClient is the unauthenticated market-data side of the venue.
type ExchangePublicClient interface {
	// GetMarketInfo returns the step size, minimum order size and index price of a market.
	GetMarketInfo(ctx context.Context, symbol string) (types.Market, error)
	// GetOrderBook returns the current order book of a market.
	GetOrderBook(ctx context.Context, symbol string) (types.OrderBookSnapshot, error)
}

// Exchange is a venue offering both the private and public clients.
type Exchange interface {
	ExchangePrivateClient
	ExchangePublicClient
}

type ProviderType string

const (
	ProviderBinanceFuturesTestnet ProviderType = "binance-futures-testnet"
	ProviderBinanceFuturesLive    ProviderType = "binance-futures-live"
)

type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	IsTestnet   bool   `json:"isTestnet"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderBinanceFuturesTestnet: {
		Name:        string(ProviderBinanceFuturesTestnet),
		DisplayName: "Binance Futures Testnet",
		Description: "Binance USD-M futures testnet for trading perpetuals without real funds",
		IsTestnet:   true,
	},
	ProviderBinanceFuturesLive: {
		Name:        string(ProviderBinanceFuturesLive),
		DisplayName: "Binance Futures",
		Description: "Binance USD-M futures for real-funds perpetual trading",
		IsTestnet:   false,
	},
}

// GetSupportedProviders returns the supported exchange provider names in sorted order.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for _, providerType := range slices.Sorted(maps.Keys(providerRegistry)) {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific exchange provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported exchange provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema for a provider's configuration.
func GetProviderConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderBinanceFuturesTestnet, ProviderBinanceFuturesLive:
		return strategy.ToJSONSchema(BinanceProviderConfig{
			ApiKey:    "",
			SecretKey: "",
			BaseURL:   "",
		})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported exchange provider: %s", providerName)
	}
}

// NewExchange creates the exchange client for the provider type.
func NewExchange(providerType ProviderType, config any) (Exchange, error) {
	switch providerType {
	case ProviderBinanceFuturesTestnet, ProviderBinanceFuturesLive:
		cfg, ok := config.(BinanceProviderConfig)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid config type for %s provider", providerType)
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		return NewBinanceFuturesProvider(cfg, providerType == ProviderBinanceFuturesTestnet), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported exchange provider: %s", providerType)
	}
}
