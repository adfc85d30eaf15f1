// Package config loads the YAML document that drives the trading binary and turns
// it into the engine, exchange and feed configurations.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-meanrev/internal/strategy/meanreversion"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/version"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-meanrev/pkg/strategy"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets in the file.
const (
	EnvAPIKey        = "ARGO_API_KEY"
	EnvSecretKey     = "ARGO_SECRET_KEY"
	EnvPolygonAPIKey = "POLYGON_API_KEY"
)

// Config is the top-level configuration document.
type Config struct {
	// Version is the engine version the file was written for.
	Version  string         `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Engine version this file targets; major and minor must match"`
	App      AppConfig      `yaml:"app" json:"app"`
	Exchange ExchangeConfig `yaml:"exchange" json:"exchange"`
	Feed     FeedConfig     `yaml:"feed" json:"feed"`
	Strategy StrategyConfig `yaml:"strategy" json:"strategy"`
}

type AppConfig struct {
	Name           string `yaml:"name" json:"name,omitempty" jsonschema:"title=Name,default=argo-meanrev"`
	LogLevel       string `yaml:"log_level" json:"logLevel,omitempty" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
	DataOutputPath string `yaml:"data_output_path" json:"dataOutputPath,omitempty" jsonschema:"title=Data Output Path,description=Directory for the per-run action journal and stats; disabled when empty"`
}

type ExchangeConfig struct {
	Provider  string `yaml:"provider" json:"provider" jsonschema:"title=Provider,enum=binance-futures-testnet,enum=binance-futures-live" validate:"required,oneof=binance-futures-testnet binance-futures-live"`
	ApiKey    string `yaml:"api_key" json:"apiKey,omitempty" jsonschema:"title=API Key,description=Overridden by ARGO_API_KEY"`
	SecretKey string `yaml:"secret_key" json:"secretKey,omitempty" jsonschema:"title=Secret Key,description=Overridden by ARGO_SECRET_KEY"`
	BaseURL   string `yaml:"base_url" json:"baseUrl,omitempty" jsonschema:"title=Base URL" validate:"omitempty,url"`
}

type FeedConfig struct {
	Provider    string               `yaml:"provider" json:"provider" jsonschema:"title=Provider,enum=coinbase,enum=binance,enum=polygon,default=coinbase" validate:"required,oneof=coinbase binance polygon"`
	Granularity provider.Granularity `yaml:"granularity" json:"granularity,omitempty" jsonschema:"title=Granularity,enum=1m,enum=5m,enum=15m,enum=1h,enum=6h,enum=1d,default=1m"`
	ApiKey      string               `yaml:"api_key" json:"apiKey,omitempty" jsonschema:"title=API Key,description=Polygon only; overridden by POLYGON_API_KEY"`
	BaseURL     string               `yaml:"base_url" json:"baseUrl,omitempty" jsonschema:"title=Base URL" validate:"omitempty,url"`
}

// MarketEntry is one traded market. FeedSymbol is only needed when the feed
// names the market differently from the venue, e.g. ETH-USD for ETHUSDT.
type MarketEntry struct {
	Symbol     string `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Venue symbol" validate:"required"`
	FeedSymbol string `yaml:"feed_symbol" json:"feedSymbol,omitempty" jsonschema:"title=Feed Symbol"`
}

type StrategyConfig struct {
	Markets              []MarketEntry   `yaml:"markets" json:"markets" jsonschema:"title=Markets,minItems=1" validate:"required,min=1,dive"`
	NumSamples           int             `yaml:"num_samples" json:"numSamples" jsonschema:"title=Number of Samples,minimum=2,default=20" validate:"min=2"`
	NumStd               float64         `yaml:"num_std" json:"numStd" jsonschema:"title=Standard Deviations,minimum=0,default=3" validate:"min=0"`
	TakeProfitMultiplier decimal.Decimal `yaml:"take_profit_multiplier" json:"takeProfitMultiplier" jsonschema:"type=string,title=Take Profit Multiplier,default=1.001"`
	StopLossMultiplier   decimal.Decimal `yaml:"stop_loss_multiplier" json:"stopLossMultiplier" jsonschema:"type=string,title=Stop Loss Multiplier,default=0.98"`
	EquityCap            decimal.Decimal `yaml:"equity_cap" json:"equityCap" jsonschema:"type=string,title=Equity Cap,default=10000"`
	CycleInterval        time.Duration   `yaml:"cycle_interval" json:"cycleInterval" jsonschema:"type=string,title=Cycle Interval,default=60s"`
	OrderExpiry          time.Duration   `yaml:"order_expiry" json:"orderExpiry" jsonschema:"type=string,title=Order Expiry,default=1h"`
	LimitFee             decimal.Decimal `yaml:"limit_fee" json:"limitFee" jsonschema:"type=string,title=Limit Fee,default=0.0005"`
	StopLossFee          decimal.Decimal `yaml:"stop_loss_fee" json:"stopLossFee" jsonschema:"type=string,title=Stop Loss Fee,default=0.002"`
	StopLossDepth        int             `yaml:"stop_loss_depth" json:"stopLossDepth" jsonschema:"title=Stop Loss Depth,description=Zero-based bid level priced by the stop-loss sell,minimum=0,maximum=19,default=10" validate:"min=0"`
	DryRun               bool            `yaml:"dry_run" json:"dryRun,omitempty" jsonschema:"title=Dry Run"`
}

// Default returns a document with every optional field at its default.
func Default() Config {
	s := meanreversion.DefaultConfig()

	return Config{
		Version: "",
		App: AppConfig{
			Name:           "argo-meanrev",
			LogLevel:       "info",
			DataOutputPath: "",
		},
		Exchange: ExchangeConfig{
			Provider:  string(tradingprovider.ProviderBinanceFuturesTestnet),
			ApiKey:    "",
			SecretKey: "",
			BaseURL:   "",
		},
		Feed: FeedConfig{
			Provider:    string(provider.ProviderCoinbase),
			Granularity: provider.DefaultGranularity,
			ApiKey:      "",
			BaseURL:     "",
		},
		Strategy: StrategyConfig{
			Markets:              nil,
			NumSamples:           s.NumSamples,
			NumStd:               s.NumStd,
			TakeProfitMultiplier: s.TakeProfitMultiplier,
			StopLossMultiplier:   s.StopLossMultiplier,
			EquityCap:            s.EquityCap,
			CycleInterval:        engine.DefaultCycleInterval,
			OrderExpiry:          s.OrderExpiry,
			LimitFee:             s.LimitFee,
			StopLossFee:          s.StopLossFee,
			StopLossDepth:        s.StopLossDepth,
			DryRun:               false,
		},
	}
}

// Load reads, parses and validates the file at path. Secrets from the
// environment take precedence over the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path) //nolint:exhaustruct // error path
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err //nolint:exhaustruct // error path
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err //nolint:exhaustruct // error path
	}

	return cfg, nil
}

// Parse decodes a YAML document over the defaults. It does not validate.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err) //nolint:exhaustruct // error path
	}

	return cfg, nil
}

// ApplyEnv overrides secrets with values from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.Exchange.ApiKey = v
	}

	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		c.Exchange.SecretKey = v
	}

	if v, ok := lookup(EnvPolygonAPIKey); ok && v != "" {
		c.Feed.ApiKey = v
	}
}

// Validate checks the struct tags, then builds and validates every derived config.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if c.Strategy.CycleInterval <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "cycle interval must be positive, got %s", c.Strategy.CycleInterval)
	}

	if err := c.StrategyConfig().Validate(); err != nil {
		return err
	}

	// the stop-loss prices off a level the venue book must actually return
	if c.Strategy.StopLossDepth >= tradingprovider.BinanceDepthLimit {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"stop loss depth %d is beyond the %d book levels fetched from the exchange",
			c.Strategy.StopLossDepth, tradingprovider.BinanceDepthLimit)
	}

	_, exchangeConfig := c.ExchangeProviderConfig()
	if err := exchangeConfig.Validate(); err != nil {
		return err
	}

	_, feedConfig, err := c.FeedProviderConfig()
	if err != nil {
		return err
	}

	switch fc := feedConfig.(type) {
	case provider.CoinbaseFeedConfig:
		return fc.Validate()
	case provider.BinanceFeedConfig:
		return fc.Validate()
	case provider.PolygonFeedConfig:
		return fc.Validate()
	}

	return nil
}

// StrategyConfig returns the strategy knobs.
func (c *Config) StrategyConfig() meanreversion.Config {
	s := c.Strategy

	return meanreversion.Config{
		NumSamples:           s.NumSamples,
		NumStd:               s.NumStd,
		TakeProfitMultiplier: s.TakeProfitMultiplier,
		StopLossMultiplier:   s.StopLossMultiplier,
		EquityCap:            s.EquityCap,
		OrderExpiry:          s.OrderExpiry,
		LimitFee:             s.LimitFee,
		StopLossFee:          s.StopLossFee,
		StopLossDepth:        s.StopLossDepth,
	}
}

// EngineConfig returns the engine configuration.
func (c *Config) EngineConfig() engine.EngineConfig {
	markets := make([]engine.MarketConfig, 0, len(c.Strategy.Markets))
	for _, m := range c.Strategy.Markets {
		markets = append(markets, engine.MarketConfig{Symbol: m.Symbol, FeedSymbol: m.FeedSymbol})
	}

	return engine.EngineConfig{
		Markets:        markets,
		Interval:       c.Strategy.CycleInterval,
		DryRun:         c.Strategy.DryRun,
		DataOutputPath: c.App.DataOutputPath,
		Strategy:       c.StrategyConfig(),
	}
}

// ExchangeProviderConfig returns the exchange provider type and its config.
func (c *Config) ExchangeProviderConfig() (tradingprovider.ProviderType, tradingprovider.BinanceProviderConfig) {
	return tradingprovider.ProviderType(c.Exchange.Provider), tradingprovider.BinanceProviderConfig{
		ApiKey:    c.Exchange.ApiKey,
		SecretKey: c.Exchange.SecretKey,
		BaseURL:   c.Exchange.BaseURL,
	}
}

// FeedProviderConfig returns the feed provider type and the config value NewFeed expects for it.
func (c *Config) FeedProviderConfig() (provider.ProviderType, any, error) {
	base := provider.BaseFeedConfig{Granularity: c.Feed.Granularity}
	providerType := provider.ProviderType(c.Feed.Provider)

	switch providerType {
	case provider.ProviderCoinbase:
		return providerType, provider.CoinbaseFeedConfig{BaseFeedConfig: base, BaseURL: c.Feed.BaseURL}, nil
	case provider.ProviderBinance:
		return providerType, provider.BinanceFeedConfig{BaseFeedConfig: base, BaseURL: c.Feed.BaseURL}, nil
	case provider.ProviderPolygon:
		return providerType, provider.PolygonFeedConfig{BaseFeedConfig: base, ApiKey: c.Feed.ApiKey}, nil
	default:
		return "", nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", c.Feed.Provider)
	}
}

// Schema returns the JSON schema of the configuration document.
func Schema() (string, error) {
	return strategy.ToJSONSchema(Default())
}
