package provider

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// BaseFeedConfig contains common fields for all feed configurations.
type BaseFeedConfig struct {
	Granularity Granularity `yaml:"granularity" json:"granularity,omitempty" jsonschema:"title=Granularity,description=Candle width the closes are read from,enum=1m,enum=5m,enum=15m,enum=1h,enum=6h,enum=1d,default=1m" validate:"omitempty,oneof=1m 5m 15m 1h 6h 1d"`
}

// CoinbaseFeedConfig contains configuration for the Coinbase Exchange candles feed.
type CoinbaseFeedConfig struct {
	BaseFeedConfig `yaml:",inline"`

	BaseURL string `yaml:"base_url" json:"baseUrl,omitempty" jsonschema:"title=Base URL,description=Overrides the Coinbase Exchange REST endpoint" validate:"omitempty,url"`
}

// BinanceFeedConfig contains configuration for the Binance futures klines feed.
type BinanceFeedConfig struct {
	BaseFeedConfig `yaml:",inline"`

	BaseURL string `yaml:"base_url" json:"baseUrl,omitempty" jsonschema:"title=Base URL,description=Overrides the Binance futures REST endpoint" validate:"omitempty,url"`
}

// PolygonFeedConfig contains configuration for the Polygon.io aggregates feed.
type PolygonFeedConfig struct {
	BaseFeedConfig `yaml:",inline"`

	ApiKey string `yaml:"api_key" json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// Validate validates the BaseFeedConfig fields.
func (c *BaseFeedConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid feed config", err)
	}

	return nil
}

// Validate validates the CoinbaseFeedConfig.
func (c *CoinbaseFeedConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid coinbase feed config", err)
	}

	return c.BaseFeedConfig.Validate()
}

// Validate validates the BinanceFeedConfig.
func (c *BinanceFeedConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance feed config", err)
	}

	return c.BaseFeedConfig.Validate()
}

// Validate validates the PolygonFeedConfig.
func (c *PolygonFeedConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid polygon feed config", err)
	}

	return c.BaseFeedConfig.Validate()
}
