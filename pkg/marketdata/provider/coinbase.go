package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// DefaultCoinbaseBaseURL is the public Coinbase Exchange REST endpoint.
const DefaultCoinbaseBaseURL = "https://api.exchange.coinbase.com"

// coinbaseCloseIndex is the close column of a [time, low, high, open, close, volume] candle.
const coinbaseCloseIndex = 4

// CoinbaseFeed reads closes from the Coinbase Exchange public candles endpoint.
type CoinbaseFeed struct {
	client      *resty.Client
	granularity Granularity
}

// NewCoinbaseFeed creates a Coinbase candles feed.
func NewCoinbaseFeed(config CoinbaseFeedConfig) (*CoinbaseFeed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultCoinbaseBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultFeedTimeout).
		SetHeader("Accept", "application/json")

	return &CoinbaseFeed{
		client:      client,
		granularity: config.Granularity.orDefault(),
	}, nil
}

// GetRecentCloses fetches the newest count candles and returns their closes oldest first.
// Coinbase lists candles newest first.
func (f *CoinbaseFeed) GetRecentCloses(ctx context.Context, symbol string, count int) ([]float64, error) {
	if err := validateCount(symbol, count); err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("product", symbol).
		SetQueryParam("granularity", strconv.Itoa(f.granularity.Seconds())).
		Get("/products/{product}/candles")
	if err != nil {
		return nil, errors.NewDataFetchError(symbol, "candles", err)
	}

	if resp.IsError() {
		return nil, errors.NewDataFetchError(symbol, "candles",
			fmt.Errorf("coinbase returned status %d: %s", resp.StatusCode(), resp.String()))
	}

	var candles [][]float64
	if err := json.Unmarshal(resp.Body(), &candles); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid candles payload for %s", symbol)
	}

	if len(candles) > count {
		candles = candles[:count]
	}

	closes := make([]float64, 0, len(candles))

	for _, candle := range slices.Backward(candles) {
		if len(candle) <= coinbaseCloseIndex {
			return nil, errors.Newf(errors.ErrCodeDataParseFailed, "candle for %s has %d fields, want at least %d", symbol, len(candle), coinbaseCloseIndex+1)
		}

		closes = append(closes, candle[coinbaseCloseIndex])
	}

	return closes, nil
}
