package engine_v1

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/internal/strategy/meanreversion"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine"
	"github.com/rxtech-lab/argo-meanrev/internal/trading/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/mocks"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// MeanReversionEngineV1TestSuite is the test suite for MeanReversionEngineV1.
type MeanReversionEngineV1TestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	private *mocks.MockExchangePrivateClient
	public  *mocks.MockExchangePublicClient
	feed    *mocks.MockFeed
	gen     *mocks.DataGenerator
	now     time.Time
}

// TestMeanReversionEngineV1 runs the test suite.
func TestMeanReversionEngineV1(t *testing.T) {
	suite.Run(t, new(MeanReversionEngineV1TestSuite))
}

// SetupTest runs before each test.
func (s *MeanReversionEngineV1TestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.private = mocks.NewMockExchangePrivateClient(s.ctrl)
	s.public = mocks.NewMockExchangePublicClient(s.ctrl)
	s.feed = mocks.NewMockFeed(s.ctrl)
	s.gen = mocks.NewDataGenerator(42)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// TearDownTest runs after each test.
func (s *MeanReversionEngineV1TestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// closes around 2000 with mean 2000 and sample std dev sqrt(250), about 15.81.
var testCloses = []float64{2000, 2010, 1990, 2020, 1980}

func testConfig(markets ...engine.MarketConfig) engine.EngineConfig {
	strategy := meanreversion.DefaultConfig()
	strategy.NumSamples = len(testCloses)
	strategy.NumStd = 1

	return engine.EngineConfig{
		Markets:        markets,
		Interval:       time.Hour,
		DryRun:         false,
		DataOutputPath: "",
		Strategy:       strategy,
	}
}

func ethMarket() engine.MarketConfig {
	return engine.MarketConfig{Symbol: "ETHUSDT", FeedSymbol: "ETH-USD"}
}

func marketInfo(symbol string) types.Market {
	return types.Market{
		Symbol:       symbol,
		QuoteAsset:   "USDT",
		StepSize:     decimal.RequireFromString("0.001"),
		MinOrderSize: decimal.RequireFromString("0.010"),
		IndexPrice:   decimal.NewFromInt(2000),
	}
}

func restingOrder(id, symbol string, side types.OrderSide, price int64) types.Order {
	return types.Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Type:      types.OrderTypeLimit,
		Size:      decimal.RequireFromString("0.5"),
		Price:     decimal.NewFromInt(price),
		CreatedAt: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
	}
}

func (s *MeanReversionEngineV1TestSuite) book(symbol string, bestBid int64) types.OrderBookSnapshot {
	return s.gen.GenerateOrderBook(mocks.BookConfig{
		Symbol:  symbol,
		BestBid: decimal.NewFromInt(bestBid),
		Spread:  decimal.NewFromInt(1),
		Tick:    decimal.NewFromInt(1),
		Levels:  20,
	})
}

func (s *MeanReversionEngineV1TestSuite) newEngine(config engine.EngineConfig) *MeanReversionEngineV1 {
	e := NewMeanReversionEngineV1(logger.NewNopLogger())
	e.now = func() time.Time { return s.now }

	ids := 0
	e.newID = func() string {
		ids++

		return fmt.Sprintf("cycle-%d", ids)
	}

	s.Require().NoError(e.Initialize(config))
	s.Require().NoError(e.SetExchange(s.private, s.public))
	s.Require().NoError(e.SetFeed(s.feed))

	return e
}

// expectMarketState wires every read the engine makes for one market.
func (s *MeanReversionEngineV1TestSuite) expectMarketState(
	market engine.MarketConfig,
	bestBid int64,
	positions []types.Position,
	openBuy, openSell []types.Order,
) {
	s.public.EXPECT().GetMarketInfo(gomock.Any(), market.Symbol).Return(marketInfo(market.Symbol), nil)
	s.feed.EXPECT().GetRecentCloses(gomock.Any(), market.PriceSymbol(), len(testCloses)).Return(testCloses, nil)
	s.public.EXPECT().GetOrderBook(gomock.Any(), market.Symbol).Return(s.book(market.Symbol, bestBid), nil)
	s.private.EXPECT().GetOpenPositions(gomock.Any(), market.Symbol).Return(positions, nil)
	s.private.EXPECT().
		GetOpenOrders(gomock.Any(), market.Symbol, types.OrderSideBuy, optional.Some(types.OrderTypeLimit), 1).
		Return(openBuy, nil)
	s.private.EXPECT().
		GetOpenOrders(gomock.Any(), market.Symbol, types.OrderSideSell, optional.Some(types.OrderTypeLimit), 1).
		Return(openSell, nil)
	s.private.EXPECT().GetAccount(gomock.Any()).
		Return(types.AccountState{Equity: decimal.NewFromInt(500), PositionID: "acct-1"}, nil)
}

func (s *MeanReversionEngineV1TestSuite) TestInitialize_Validation() {
	e := NewMeanReversionEngineV1(logger.NewNopLogger())

	err := e.Initialize(testConfig())
	s.Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	err = e.Initialize(testConfig(engine.MarketConfig{Symbol: "", FeedSymbol: ""}))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	bad := testConfig(ethMarket())
	bad.Strategy.NumSamples = 1
	s.Error(e.Initialize(bad))

	config := testConfig(ethMarket())
	config.Interval = 0
	s.Require().NoError(e.Initialize(config))
	s.Equal(engine.DefaultCycleInterval, e.config.Interval)
	s.Equal(len(testCloses), e.windows["ETHUSDT"].Capacity())
}

func (s *MeanReversionEngineV1TestSuite) TestSetters_RejectNil() {
	e := NewMeanReversionEngineV1(logger.NewNopLogger())

	s.True(errors.HasCode(e.SetExchange(nil, s.public), errors.ErrCodeMissingParameter))
	s.True(errors.HasCode(e.SetExchange(s.private, nil), errors.ErrCodeMissingParameter))
	s.True(errors.HasCode(e.SetFeed(nil), errors.ErrCodeMissingParameter))
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_NotReady() {
	e := NewMeanReversionEngineV1(logger.NewNopLogger())

	_, err := e.RunCycle(context.Background(), engine.Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeEngineNotReady))

	s.Require().NoError(e.Initialize(testConfig(ethMarket())))
	_, err = e.RunCycle(context.Background(), engine.Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeEngineNotReady))

	s.Require().NoError(e.SetExchange(s.private, s.public))
	_, err = e.RunCycle(context.Background(), engine.Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeEngineNotReady))
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_EntryPlacesPostOnlyBuy() {
	e := s.newEngine(testConfig(ethMarket()))
	s.expectMarketState(ethMarket(), 1970, nil, nil, nil)

	var placed types.OrderParams

	s.private.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params types.OrderParams) (types.Ack, error) {
			placed = params

			return types.Ack{OrderID: "1001", ClientID: params.ClientID, Status: "NEW"}, nil
		})

	var placedRecords []types.ActionRecord

	onPlaced := engine.OnOrderPlacedCallback(func(record types.ActionRecord) error {
		placedRecords = append(placedRecords, record)

		return nil
	})

	report, err := e.RunCycle(context.Background(), engine.Callbacks{OnOrderPlaced: &onPlaced})
	s.Require().NoError(err)

	s.Equal("cycle-1", report.CycleID)
	s.False(report.Interrupted)
	s.Require().Len(report.Markets, 1)

	result := report.Markets[0]
	s.False(result.Failed())
	s.Equal(1, result.Executed)
	s.Equal("1970.5", result.MidPrice)
	s.Require().Len(result.Records, 1)
	s.Equal(types.ActionStatusSubmitted, result.Records[0].Status)
	s.Equal("1001", result.Records[0].OrderID)

	s.Equal("ETHUSDT", placed.Symbol)
	s.Equal("acct-1", placed.PositionID)
	s.Equal(types.OrderSideBuy, placed.Side)
	s.Equal(types.OrderTypeLimit, placed.Type)
	s.True(placed.PostOnly)
	s.True(placed.Price.Equal(decimal.NewFromInt(1970)))
	s.True(placed.Size.Equal(decimal.RequireFromString("0.25")))
	s.Equal(s.now.Add(meanreversion.DefaultOrderExpiry), placed.Expiration)
	s.Equal(meanreversion.ClientOrderID("cycle-1", "ETHUSDT", types.ActionReasonEntry), placed.ClientID)

	s.Require().Len(placedRecords, 1)
	s.Equal(types.ActionReasonEntry, placedRecords[0].Reason)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_NoSignalNoOrders() {
	e := s.newEngine(testConfig(ethMarket()))
	s.expectMarketState(ethMarket(), 1995, nil, nil, nil)

	report, err := e.RunCycle(context.Background(), engine.Callbacks{})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 1)
	s.Empty(report.Markets[0].Actions)
	s.Zero(report.Markets[0].Executed)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_FailedMarketDoesNotStopOthers() {
	btc := engine.MarketConfig{Symbol: "BTCUSDT", FeedSymbol: "BTC-USD"}
	e := s.newEngine(testConfig(btc, ethMarket()))

	s.public.EXPECT().GetMarketInfo(gomock.Any(), "BTCUSDT").Return(marketInfo("BTCUSDT"), nil)
	s.feed.EXPECT().GetRecentCloses(gomock.Any(), "BTC-USD", len(testCloses)).
		Return(nil, errors.NewDataFetchError("BTC-USD", "candles", stderrors.New("i/o timeout")))
	s.expectMarketState(ethMarket(), 1995, nil, nil, nil)

	var failedSymbols []string

	onMarketError := engine.OnMarketErrorCallback(func(_, symbol string, _ error) {
		failedSymbols = append(failedSymbols, symbol)
	})

	report, err := e.RunCycle(context.Background(), engine.Callbacks{OnMarketError: &onMarketError})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 2)

	s.True(report.Markets[0].Failed())
	s.Equal(int(errors.ErrCodeDataFetchFailed), report.Markets[0].ErrorCode)
	s.False(report.Markets[1].Failed())
	s.Equal(1, report.FailedMarkets())
	s.Equal([]string{"BTCUSDT"}, failedSymbols)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_ShortSampleFailsMarket() {
	e := s.newEngine(testConfig(ethMarket()))

	s.public.EXPECT().GetMarketInfo(gomock.Any(), "ETHUSDT").Return(marketInfo("ETHUSDT"), nil)
	s.feed.EXPECT().GetRecentCloses(gomock.Any(), "ETH-USD", len(testCloses)).Return([]float64{2000}, nil)

	report, err := e.RunCycle(context.Background(), engine.Callbacks{})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 1)
	s.True(errors.IsInsufficientSampleError(report.Markets[0].Err))
	s.Equal(int(errors.ErrCodeInsufficientSample), report.Markets[0].ErrorCode)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_StopLossCancelsThenSells() {
	e := s.newEngine(testConfig(ethMarket()))

	position := types.Position{
		Symbol:     "ETHUSDT",
		Side:       types.PositionSideLong,
		EntryPrice: decimal.NewFromInt(2000),
		OpenSize:   decimal.RequireFromString("0.5"),
	}
	// best ask 1950 is below 2000 * 0.98
	s.expectMarketState(ethMarket(), 1949,
		[]types.Position{position},
		[]types.Order{restingOrder("11", "ETHUSDT", types.OrderSideBuy, 1940)},
		[]types.Order{restingOrder("12", "ETHUSDT", types.OrderSideSell, 2003)},
	)

	var sold types.OrderParams

	gomock.InOrder(
		s.private.EXPECT().CancelOrder(gomock.Any(), "ETHUSDT", "11").
			Return(types.Ack{OrderID: "11", ClientID: "", Status: "CANCELED"}, nil),
		s.private.EXPECT().CancelOrder(gomock.Any(), "ETHUSDT", "12").
			Return(types.Ack{OrderID: "12", ClientID: "", Status: "CANCELED"}, nil),
		s.private.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params types.OrderParams) (types.Ack, error) {
				sold = params

				return types.Ack{OrderID: "1002", ClientID: params.ClientID, Status: "FILLED"}, nil
			}),
	)

	var cancelled []string

	onCancelled := engine.OnOrderCancelledCallback(func(record types.ActionRecord) error {
		cancelled = append(cancelled, record.OrderID)

		return nil
	})

	report, err := e.RunCycle(context.Background(), engine.Callbacks{OnOrderCancelled: &onCancelled})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 1)

	result := report.Markets[0]
	s.False(result.Failed())
	s.Equal(3, result.Executed)
	s.Equal([]string{"11", "12"}, cancelled)

	s.Equal(types.OrderSideSell, sold.Side)
	s.Equal(types.OrderTypeMarket, sold.Type)
	s.False(sold.PostOnly)
	s.True(sold.Size.Equal(decimal.RequireFromString("0.5")))
	// eleventh bid level
	s.True(sold.Price.Equal(decimal.NewFromInt(1939)))
	s.Equal(optional.Some(types.TimeInForceFOK), sold.TimeInForce)
	s.True(sold.LimitFee.Equal(meanreversion.DefaultStopLossFee))
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_FailedCancelSkipsRest() {
	e := s.newEngine(testConfig(ethMarket()))

	position := types.Position{
		Symbol:     "ETHUSDT",
		Side:       types.PositionSideLong,
		EntryPrice: decimal.NewFromInt(2000),
		OpenSize:   decimal.RequireFromString("0.5"),
	}
	s.expectMarketState(ethMarket(), 1949,
		[]types.Position{position},
		[]types.Order{restingOrder("11", "ETHUSDT", types.OrderSideBuy, 1940)},
		[]types.Order{restingOrder("12", "ETHUSDT", types.OrderSideSell, 2003)},
	)

	s.private.EXPECT().CancelOrder(gomock.Any(), "ETHUSDT", "11").
		Return(types.Ack{}, errors.NewExchangeRejectionError("ETHUSDT", "cancel order", stderrors.New("unknown order")))

	report, err := e.RunCycle(context.Background(), engine.Callbacks{})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 1)

	result := report.Markets[0]
	s.True(result.Failed())
	s.Equal(int(errors.ErrCodeExchangeRejected), result.ErrorCode)
	s.Zero(result.Executed)
	s.Require().Len(result.Records, 3)
	s.Equal(types.ActionStatusRejected, result.Records[0].Status)
	s.Contains(result.Records[0].Error, "unknown order")
	s.Equal(types.ActionStatusSkipped, result.Records[1].Status)
	s.Equal(types.ActionStatusSkipped, result.Records[2].Status)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_DryRunSendsNothing() {
	config := testConfig(ethMarket())
	config.DryRun = true
	e := s.newEngine(config)
	s.expectMarketState(ethMarket(), 1970, nil, nil, nil)

	report, err := e.RunCycle(context.Background(), engine.Callbacks{})
	s.Require().NoError(err)
	s.Require().Len(report.Markets, 1)

	result := report.Markets[0]
	s.Equal(1, result.Executed)
	s.Require().Len(result.Records, 1)
	s.Equal(types.ActionStatusDryRun, result.Records[0].Status)
	s.Empty(result.Records[0].OrderID)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_CancelledContextInterrupts() {
	e := s.newEngine(testConfig(ethMarket()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ended *types.CycleReport

	onCycleEnd := engine.OnCycleEndCallback(func(report types.CycleReport) error {
		ended = &report

		return nil
	})

	report, err := e.RunCycle(ctx, engine.Callbacks{OnCycleEnd: &onCycleEnd})
	s.Require().NoError(err)
	s.True(report.Interrupted)
	s.Empty(report.Markets)
	s.Require().NotNil(ended)
	s.True(ended.Interrupted)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_StopMidMarketFinishesMarket() {
	btc := engine.MarketConfig{Symbol: "BTCUSDT", FeedSymbol: "BTC-USD"}
	e := s.newEngine(testConfig(ethMarket(), btc))
	s.expectMarketState(ethMarket(), 1970, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var callErr error

	// BTCUSDT has no expectations: any read for it fails the test.
	s.private.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, params types.OrderParams) (types.Ack, error) {
			cancel()
			callErr = callCtx.Err()

			return types.Ack{OrderID: "1001", ClientID: params.ClientID, Status: "NEW"}, nil
		})

	report, err := e.RunCycle(ctx, engine.Callbacks{})
	s.Require().NoError(err)

	s.NoError(callErr)
	s.True(report.Interrupted)
	s.Require().Len(report.Markets, 1)

	result := report.Markets[0]
	s.Equal("ETHUSDT", result.Symbol)
	s.False(result.Failed())
	s.Equal(1, result.Executed)
	s.Require().Len(result.Records, 1)
	s.Equal(types.ActionStatusSubmitted, result.Records[0].Status)
	s.Equal("1001", result.Records[0].OrderID)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_CallbackErrorsAreLogged() {
	e := s.newEngine(testConfig(ethMarket()))
	s.expectMarketState(ethMarket(), 1995, nil, nil, nil)

	onCycleStart := engine.OnCycleStartCallback(func(string, time.Time) error {
		return stderrors.New("boom")
	})
	onCycleEnd := engine.OnCycleEndCallback(func(types.CycleReport) error {
		return stderrors.New("boom")
	})

	report, err := e.RunCycle(context.Background(), engine.Callbacks{
		OnCycleStart: &onCycleStart,
		OnCycleEnd:   &onCycleEnd,
	})
	s.NoError(err)
	s.Len(report.Markets, 1)
}

func (s *MeanReversionEngineV1TestSuite) TestRunCycle_JournalsActions() {
	config := testConfig(ethMarket())
	config.DataOutputPath = s.T().TempDir()
	e := s.newEngine(config)
	s.expectMarketState(ethMarket(), 1970, nil, nil, nil)

	s.private.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		Return(types.Ack{OrderID: "1001", ClientID: "", Status: "NEW"}, nil)

	var stats types.EngineStats

	onStats := engine.OnStatsUpdateCallback(func(update types.EngineStats) error {
		stats = update

		return nil
	})

	_, err := e.RunCycle(context.Background(), engine.Callbacks{OnStatsUpdate: &onStats})
	s.Require().NoError(err)

	s.Equal(1, stats.Counters.Cycles)
	s.Equal(1, stats.Counters.OrdersPlaced)
	s.Equal("cycle-1", stats.LastCycleID)

	actionsPath := e.sessionManager.ActionsPath()
	statsPath := e.sessionManager.StatsPath()

	s.Require().NoError(e.Close())
	s.NoError(e.Close())

	_, err = os.Stat(statsPath)
	s.NoError(err)

	written, err := types.ReadEngineStats(statsPath)
	s.Require().NoError(err)
	s.Equal(1, written.Counters.OrdersPlaced)

	records, err := writers.ReadActions(actionsPath, types.ActionFilter{Symbol: "ETHUSDT"})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("cycle-1", records[0].CycleID)
	s.Equal(types.ActionStatusSubmitted, records[0].Status)
	s.Equal("1001", records[0].OrderID)
}

func (s *MeanReversionEngineV1TestSuite) TestRun_AccountFailureIsFatal() {
	e := s.newEngine(testConfig(ethMarket()))

	s.private.EXPECT().GetAccount(gomock.Any()).Return(types.AccountState{}, stderrors.New("unauthorized"))

	var stopErr error

	stopped := false
	onStop := engine.OnEngineStopCallback(func(err error) {
		stopped = true
		stopErr = err
	})

	var statuses []types.EngineStatus

	onStatus := engine.OnStatusUpdateCallback(func(status types.EngineStatus) error {
		statuses = append(statuses, status)

		return nil
	})

	err := e.Run(context.Background(), engine.Callbacks{OnEngineStop: &onStop, OnStatusUpdate: &onStatus})
	s.Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeAccountFetch))
	s.True(stopped)
	s.Equal(err, stopErr)
	s.Equal([]types.EngineStatus{types.EngineStatusStopped}, statuses)
}

func (s *MeanReversionEngineV1TestSuite) TestRun_StartCallbackErrorAborts() {
	e := s.newEngine(testConfig(ethMarket()))

	s.private.EXPECT().GetAccount(gomock.Any()).
		Return(types.AccountState{Equity: decimal.NewFromInt(500), PositionID: ""}, nil)

	onStart := engine.OnEngineStartCallback(func([]string, time.Duration, string) error {
		return stderrors.New("not now")
	})

	err := e.Run(context.Background(), engine.Callbacks{OnEngineStart: &onStart})
	s.True(errors.HasCode(err, errors.ErrCodeCallbackFailed))
}

func (s *MeanReversionEngineV1TestSuite) TestRun_StopsWhenContextCancelled() {
	e := s.newEngine(testConfig(ethMarket()))

	s.private.EXPECT().GetAccount(gomock.Any()).
		Return(types.AccountState{Equity: decimal.NewFromInt(500), PositionID: ""}, nil)
	s.expectMarketState(ethMarket(), 1995, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var startedSymbols []string

	onStart := engine.OnEngineStartCallback(func(symbols []string, interval time.Duration, _ string) error {
		startedSymbols = symbols
		s.Equal(time.Hour, interval)

		return nil
	})
	cycles := 0
	onCycleEnd := engine.OnCycleEndCallback(func(types.CycleReport) error {
		cycles++
		cancel()

		return nil
	})

	err := e.Run(ctx, engine.Callbacks{OnEngineStart: &onStart, OnCycleEnd: &onCycleEnd})
	s.ErrorIs(err, context.Canceled)
	s.Equal(1, cycles)
	s.Equal([]string{"ETHUSDT"}, startedSymbols)
}
