package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
)

// polygonMinLookback covers weekends and overnight gaps in equity sessions.
const polygonMinLookback = 96 * time.Hour

// PolygonAggsIterator abstracts the polygon aggregates iterator for testing.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the polygon REST client for testing.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type realPolygonAPIClient struct {
	client *polygon.Client
}

func (r *realPolygonAPIClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return r.client.ListAggs(ctx, params, options...)
}

// PolygonFeed reads closes from Polygon.io aggregates.
type PolygonFeed struct {
	apiClient   PolygonAPIClient
	granularity Granularity
	now         func() time.Time
}

// NewPolygonFeed creates an aggregates feed.
func NewPolygonFeed(config PolygonFeedConfig) (*PolygonFeed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return NewPolygonFeedWithAPI(&realPolygonAPIClient{client: polygon.New(config.ApiKey)}, config.Granularity, time.Now), nil
}

// NewPolygonFeedWithAPI creates an aggregates feed around a custom API client and clock.
func NewPolygonFeedWithAPI(apiClient PolygonAPIClient, granularity Granularity, now func() time.Time) *PolygonFeed {
	return &PolygonFeed{
		apiClient:   apiClient,
		granularity: granularity.orDefault(),
		now:         now,
	}
}

// GetRecentCloses reads aggregates over a lookback window and keeps the newest count closes.
func (f *PolygonFeed) GetRecentCloses(ctx context.Context, symbol string, count int) ([]float64, error) {
	if err := validateCount(symbol, count); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultFeedTimeout)
	defer cancel()

	to := f.now()
	from := to.Add(-f.lookback(count))

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: f.granularity.Multiplier(),
		Timespan:   f.granularity.Timespan(),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithLimit(50000)

	iter := f.apiClient.ListAggs(ctx, params)

	closes := make([]float64, 0, count)
	for iter.Next() {
		closes = append(closes, iter.Item().Close)
	}

	if iter.Err() != nil {
		return nil, errors.NewDataFetchError(symbol, "aggregates", iter.Err())
	}

	return lastN(closes, count), nil
}

func (f *PolygonFeed) lookback(count int) time.Duration {
	window := f.granularity.Duration() * time.Duration(count) * 4

	return max(window, polygonMinLookback)
}
