package meanreversion

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DecisionTestSuite struct {
	suite.Suite
	strategy  *Strategy
	cycleTime time.Time
}

func TestDecisionSuite(t *testing.T) {
	suite.Run(t, new(DecisionTestSuite))
}

func (suite *DecisionTestSuite) SetupTest() {
	strategy, err := NewStrategy(DefaultConfig())
	suite.Require().NoError(err)

	suite.strategy = strategy
	suite.cycleTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// book builds a book with levels one unit apart, bids descending from bid and asks ascending from ask.
func book(bid, ask string, levels int) types.OrderBookSnapshot {
	snapshot := types.OrderBookSnapshot{Symbol: "ETH-USD", Bids: nil, Asks: nil}
	bidPrice := decimal.RequireFromString(bid)
	askPrice := decimal.RequireFromString(ask)

	for i := range levels {
		step := decimal.NewFromInt(int64(i))
		snapshot.Bids = append(snapshot.Bids, types.PriceLevel{Price: bidPrice.Sub(step), Size: decimal.NewFromInt(1)})
		snapshot.Asks = append(snapshot.Asks, types.PriceLevel{Price: askPrice.Add(step), Size: decimal.NewFromInt(1)})
	}

	return snapshot
}

func (suite *DecisionTestSuite) flatState(bid, ask string) types.MarketState {
	return types.MarketState{
		CycleID:       "cycle-1",
		CycleTime:     suite.cycleTime,
		Market:        testMarket("0.001", "0.01", "2000"),
		Account:       types.AccountState{Equity: decimal.NewFromInt(500), PositionID: "pos-1"},
		Book:          book(bid, ask, 12),
		Stats:         types.PriceStatistics{Mean: 2000, StdDev: 10},
		LongPositions: nil,
		OpenBuyOrder:  optional.None[types.Order](),
		OpenSellOrder: optional.None[types.Order](),
	}
}

func (suite *DecisionTestSuite) longState(bid, ask, size string) types.MarketState {
	state := suite.flatState(bid, ask)
	state.LongPositions = []types.Position{{
		Symbol:     "ETH-USD",
		Side:       types.PositionSideLong,
		EntryPrice: decimal.NewFromInt(2000),
		OpenSize:   decimal.RequireFromString(size),
	}}

	return state
}

func restingOrder(id string, side types.OrderSide, price string) optional.Option[types.Order] {
	return optional.Some(types.Order{
		ID:        id,
		Symbol:    "ETH-USD",
		Side:      side,
		Type:      types.OrderTypeLimit,
		Size:      decimal.RequireFromString("0.25"),
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Time{},
	})
}

func (suite *DecisionTestSuite) TestEntryPlacesPostOnlyBuyAtBestBid() {
	state := suite.flatState("1960", "1961")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Require().Len(actions, 1)

	action := actions[0]
	suite.Equal(types.ActionKindPlace, action.Kind)
	suite.Equal(types.ActionReasonEntry, action.Reason)

	params := action.Params
	suite.Equal(types.OrderSideBuy, params.Side)
	suite.Equal(types.OrderTypeLimit, params.Type)
	suite.True(params.PostOnly)
	suite.Equal("0.250", params.Size.StringFixed(state.Market.StepDecimals()))
	suite.Equal("1960", params.Price.String())
	suite.Equal("0.0005", params.LimitFee.String())
	suite.Equal(suite.cycleTime.Add(time.Hour), params.Expiration)
	suite.Equal("pos-1", params.PositionID)
	suite.True(params.CancelID.IsNone())
	suite.NoError(ValidatePlan(actions))
}

func (suite *DecisionTestSuite) TestNoEntryAboveLowerBand() {
	actions, err := suite.strategy.Decide(suite.flatState("1975", "1976"))
	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *DecisionTestSuite) TestNoEntryWhileBuyIsOpen() {
	state := suite.flatState("1960", "1961")
	state.OpenBuyOrder = restingOrder("buy-1", types.OrderSideBuy, "1960")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *DecisionTestSuite) TestDecideIsRepeatable() {
	state := suite.flatState("1960", "1961")

	first, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)

	second, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *DecisionTestSuite) TestDustPositionCancelsBuyThenTopsUp() {
	state := suite.longState("1990", "1991", "0.005")
	state.OpenBuyOrder = restingOrder("buy-1", types.OrderSideBuy, "1985")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Require().Len(actions, 2)

	suite.Equal(types.ActionKindCancel, actions[0].Kind)
	suite.Equal("buy-1", actions[0].OrderID)

	topUp := actions[1]
	suite.Equal(types.ActionKindPlace, topUp.Kind)
	suite.Equal(types.ActionReasonDustTopUp, topUp.Reason)
	suite.Equal(types.OrderSideBuy, topUp.Params.Side)
	suite.Equal("0.010", topUp.Params.Size.StringFixed(state.Market.StepDecimals()))
	suite.Equal("1990", topUp.Params.Price.String())
	suite.True(topUp.Params.PostOnly)
	suite.True(topUp.Params.CancelID.IsNone())
}

func (suite *DecisionTestSuite) TestDustPositionWithoutOpenBuy() {
	actions, err := suite.strategy.Decide(suite.longState("1990", "1991", "0.005"))
	suite.Require().NoError(err)
	suite.Require().Len(actions, 1)
	suite.Equal(types.ActionReasonDustTopUp, actions[0].Reason)
	suite.True(actions[0].Params.CancelID.IsNone())
}

func (suite *DecisionTestSuite) TestTakeProfitPlacesSellAtBestAsk() {
	actions, err := suite.strategy.Decide(suite.longState("2002", "2003", "0.25"))
	suite.Require().NoError(err)
	suite.Require().Len(actions, 1)

	params := actions[0].Params
	suite.Equal(types.ActionReasonTakeProfit, actions[0].Reason)
	suite.Equal(types.OrderSideSell, params.Side)
	suite.Equal(types.OrderTypeLimit, params.Type)
	suite.True(params.PostOnly)
	suite.Equal("2003", params.Price.String())
	suite.Equal("0.25", params.Size.String())
}

func (suite *DecisionTestSuite) TestTakeProfitSkippedWhileSellIsOpen() {
	state := suite.longState("2002", "2003", "0.25")
	state.OpenSellOrder = restingOrder("sell-1", types.OrderSideSell, "2003")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *DecisionTestSuite) TestHoldBetweenThresholds() {
	actions, err := suite.strategy.Decide(suite.longState("1999", "2000", "0.25"))
	suite.Require().NoError(err)
	suite.Empty(actions)
}

func (suite *DecisionTestSuite) TestStopLossCancelsThenSellsAtMarket() {
	state := suite.longState("1958", "1959", "0.25")
	state.OpenBuyOrder = restingOrder("buy-1", types.OrderSideBuy, "1950")
	state.OpenSellOrder = restingOrder("sell-1", types.OrderSideSell, "2003")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Require().Len(actions, 3)

	suite.Equal(types.ActionKindCancel, actions[0].Kind)
	suite.Equal("buy-1", actions[0].OrderID)
	suite.Equal(types.ActionKindCancel, actions[1].Kind)
	suite.Equal("sell-1", actions[1].OrderID)

	exit := actions[2]
	suite.Equal(types.ActionReasonStopLoss, exit.Reason)
	suite.Equal(types.OrderSideSell, exit.Params.Side)
	suite.Equal(types.OrderTypeMarket, exit.Params.Type)
	suite.False(exit.Params.PostOnly)
	suite.Equal(types.TimeInForceFOK, exit.Params.TimeInForce.Unwrap())
	suite.Equal("0.002", exit.Params.LimitFee.String())
	suite.Equal("0.25", exit.Params.Size.String())
	// bids[10] of a book starting at 1958
	suite.Equal("1948", exit.Params.Price.String())
	suite.NoError(ValidatePlan(actions))
}

func (suite *DecisionTestSuite) TestStopLossWinsOverTakeProfit() {
	cfg := DefaultConfig()
	cfg.TakeProfitMultiplier = decimal.RequireFromString("0.95")

	strategy, err := NewStrategy(cfg)
	suite.Require().NoError(err)

	actions, err := strategy.Decide(suite.longState("1958", "1959", "0.25"))
	suite.Require().NoError(err)
	suite.Require().Len(actions, 1)

	suite.Equal(types.OrderTypeMarket, actions[0].Params.Type)
	for _, action := range actions {
		suite.NotEqual(types.ActionReasonTakeProfit, action.Reason)
	}
}

func (suite *DecisionTestSuite) TestStopLossDropsDustTopUp() {
	state := suite.longState("1958", "1959", "0.005")
	state.OpenBuyOrder = restingOrder("buy-1", types.OrderSideBuy, "1950")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Require().Len(actions, 2)
	suite.Equal("buy-1", actions[0].OrderID)
	suite.Equal(types.OrderTypeMarket, actions[1].Params.Type)
	suite.Equal("0.005", actions[1].Params.Size.String())
}

func (suite *DecisionTestSuite) TestStopLossWithShallowBook() {
	state := suite.longState("1958", "1959", "0.25")
	state.Book = book("1958", "1959", 5)

	_, err := suite.strategy.Decide(state)
	suite.Require().Error(err)
	suite.True(errors.IsEmptyBookError(err))
}

func (suite *DecisionTestSuite) TestEmptyBookIsRejected() {
	state := suite.flatState("1960", "1961")
	state.Book.Asks = nil

	_, err := suite.strategy.Decide(state)
	suite.Require().Error(err)
	suite.True(errors.IsEmptyBookError(err))
}

func (suite *DecisionTestSuite) TestInvalidStepSizeAbortsEntry() {
	state := suite.flatState("1960", "1961")
	state.Market.StepSize = decimal.Zero

	_, err := suite.strategy.Decide(state)
	suite.Require().Error(err)
	suite.True(errors.IsInvalidStepSizeError(err))
}

func (suite *DecisionTestSuite) TestClientOrderIDIsStable() {
	first := ClientOrderID("cycle-1", "ETH-USD", types.ActionReasonEntry)
	suite.Equal(first, ClientOrderID("cycle-1", "ETH-USD", types.ActionReasonEntry))
	suite.NotEqual(first, ClientOrderID("cycle-2", "ETH-USD", types.ActionReasonEntry))
	suite.NotEqual(first, ClientOrderID("cycle-1", "ETH-USD", types.ActionReasonTakeProfit))
}

func (suite *DecisionTestSuite) TestConfigValidation() {
	cfg := DefaultConfig()
	cfg.NumSamples = 1

	_, err := NewStrategy(cfg)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	cfg = DefaultConfig()
	cfg.StopLossMultiplier = decimal.Zero
	_, err = NewStrategy(cfg)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))
}

func (suite *DecisionTestSuite) TestStopLossCancelsSellBeforeExit() {
	state := suite.longState("1958", "1959", "0.25")
	state.OpenSellOrder = restingOrder("sell-1", types.OrderSideSell, "2003")

	actions, err := suite.strategy.Decide(state)
	suite.Require().NoError(err)
	suite.Require().Len(actions, 2)

	suite.Equal(types.ActionKindCancel, actions[0].Kind)
	suite.Equal("sell-1", actions[0].OrderID)
	suite.Equal(types.ActionKindPlace, actions[1].Kind)
	suite.Equal(types.ActionReasonStopLoss, actions[1].Reason)
}
