package provider

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// BinanceKlinesService abstracts the futures klines request for testing.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*futures.Kline, error)
}

// BinanceAPIClient abstracts the futures client for testing.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type realBinanceAPIClient struct {
	client *futures.Client
}

func (r *realBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &realBinanceKlinesService{service: r.client.NewKlinesService()}
}

type realBinanceKlinesService struct {
	service *futures.KlinesService
}

func (s *realBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realBinanceKlinesService) Do(ctx context.Context) ([]*futures.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceFeed reads closes from Binance USD-M futures klines.
type BinanceFeed struct {
	apiClient   BinanceAPIClient
	granularity Granularity
}

// NewBinanceFeed creates a klines feed. Klines are public, so no keys are needed.
func NewBinanceFeed(config BinanceFeedConfig) (*BinanceFeed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := futures.NewClient("", "")
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return NewBinanceFeedWithAPI(&realBinanceAPIClient{client: client}, config.Granularity), nil
}

// NewBinanceFeedWithAPI creates a klines feed around a custom API client.
func NewBinanceFeedWithAPI(apiClient BinanceAPIClient, granularity Granularity) *BinanceFeed {
	return &BinanceFeed{
		apiClient:   apiClient,
		granularity: granularity.orDefault(),
	}
}

// GetRecentCloses returns the closes of the newest count klines, oldest first.
// The last kline is the one still forming.
func (f *BinanceFeed) GetRecentCloses(ctx context.Context, symbol string, count int) ([]float64, error) {
	if err := validateCount(symbol, count); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultFeedTimeout)
	defer cancel()

	klines, err := f.apiClient.NewKlinesService().
		Symbol(symbol).
		Interval(f.granularity.BinanceInterval()).
		Limit(count).
		Do(ctx)
	if err != nil {
		return nil, errors.NewDataFetchError(symbol, "klines", err)
	}

	closes := make([]float64, 0, len(klines))

	for _, k := range klines {
		closePrice, parseErr := strconv.ParseFloat(k.Close, 64)
		if parseErr != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, parseErr, "invalid kline close %q for %s", k.Close, symbol)
		}

		closes = append(closes, closePrice)
	}

	return lastN(closes, count), nil
}
