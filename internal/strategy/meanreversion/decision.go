package meanreversion

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

// Strategy decides the order actions for one market from its cycle snapshot.
// Decide is pure: the same MarketState always yields the same plan.
type Strategy struct {
	config  Config
	signals SignalEngine
	sizer   PositionSizer
}

// NewStrategy creates a Strategy from a validated config.
func NewStrategy(config Config) (*Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Strategy{
		config:  config,
		signals: NewSignalEngine(config),
		sizer:   NewPositionSizer(config.EquityCap),
	}, nil
}

// Config returns the strategy config.
func (s *Strategy) Config() Config {
	return s.config
}

// Decide returns the actions to execute, in order, for one market.
//
// Without a long position it may place one post-only entry buy at the best bid.
// With one, it tops up dust positions to the venue minimum, places a post-only
// take-profit sell at the best ask, and on a stop-loss drops any place action
// planned this cycle, cancels the open buy and sell orders and sells the whole
// position with a single fill-or-kill market order.
func (s *Strategy) Decide(state types.MarketState) ([]types.OrderAction, error) {
	if err := state.Book.Validate(); err != nil {
		return nil, err
	}

	bid, _ := state.Book.BestBid()
	ask, _ := state.Book.BestAsk()

	if !state.HasLongPosition() {
		if state.OpenBuyOrder.IsSome() || !s.signals.Entry(bid.Price, state.Stats) {
			return nil, nil
		}

		size, err := s.sizer.Size(state.Account.Equity, state.Market)
		if err != nil {
			return nil, err
		}

		params := s.limitParams(state, types.ActionReasonEntry, types.OrderSideBuy, size, bid.Price)

		return []types.OrderAction{types.NewPlaceAction(types.ActionReasonEntry, params)}, nil
	}

	position := state.LongPositions[0]
	actions := make([]types.OrderAction, 0, 4)

	if state.Market.IsDust(position.OpenSize) {
		params := s.limitParams(state, types.ActionReasonDustTopUp, types.OrderSideBuy, state.Market.MinOrderSize, bid.Price)

		if buy, ok := openOrder(state.OpenBuyOrder); ok {
			actions = append(actions, types.NewCancelAction(types.ActionReasonDustTopUp, buy))
		}

		actions = append(actions, types.NewPlaceAction(types.ActionReasonDustTopUp, params))
	} else if state.OpenSellOrder.IsNone() && s.signals.TakeProfit(position.EntryPrice, ask.Price) {
		params := s.limitParams(state, types.ActionReasonTakeProfit, types.OrderSideSell, position.OpenSize, ask.Price)
		actions = append(actions, types.NewPlaceAction(types.ActionReasonTakeProfit, params))
	}

	if !s.signals.StopLoss(position.EntryPrice, ask.Price) {
		return actions, nil
	}

	exitLevel, err := state.Book.LevelAt(types.BookSideBid, s.config.StopLossDepth)
	if err != nil {
		return nil, err
	}

	stopLoss := make([]types.OrderAction, 0, 3)

	if buy, ok := openOrder(state.OpenBuyOrder); ok {
		stopLoss = append(stopLoss, types.NewCancelAction(types.ActionReasonStopLoss, buy))
	}

	if sell, ok := openOrder(state.OpenSellOrder); ok {
		stopLoss = append(stopLoss, types.NewCancelAction(types.ActionReasonStopLoss, sell))
	}

	params := types.OrderParams{
		Symbol:      state.Market.Symbol,
		PositionID:  state.Account.PositionID,
		ClientID:    ClientOrderID(state.CycleID, state.Market.Symbol, types.ActionReasonStopLoss),
		Side:        types.OrderSideSell,
		Type:        types.OrderTypeMarket,
		Size:        position.OpenSize,
		Price:       exitLevel.Price,
		PostOnly:    false,
		LimitFee:    s.config.StopLossFee,
		Expiration:  state.CycleTime.Add(s.config.OrderExpiry),
		TimeInForce: optional.Some(types.TimeInForceFOK),
		CancelID:    optional.None[string](),
	}
	stopLoss = append(stopLoss, types.NewPlaceAction(types.ActionReasonStopLoss, params))

	return stopLoss, nil
}

func (s *Strategy) limitParams(
	state types.MarketState,
	reason types.ActionReason,
	side types.OrderSide,
	size, price decimal.Decimal,
) types.OrderParams {
	return types.OrderParams{
		Symbol:      state.Market.Symbol,
		PositionID:  state.Account.PositionID,
		ClientID:    ClientOrderID(state.CycleID, state.Market.Symbol, reason),
		Side:        side,
		Type:        types.OrderTypeLimit,
		Size:        size,
		Price:       price,
		PostOnly:    true,
		LimitFee:    s.config.LimitFee,
		Expiration:  state.CycleTime.Add(s.config.OrderExpiry),
		TimeInForce: optional.None[types.TimeInForce](),
		CancelID:    optional.None[string](),
	}
}

// ClientOrderID derives a stable client order id from the cycle, market and
// reason, so a retried submission within a cycle reuses the same id.
func ClientOrderID(cycleID, symbol string, reason types.ActionReason) string {
	name := fmt.Sprintf("%s/%s/%s", cycleID, symbol, reason)

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func openOrder(order optional.Option[types.Order]) (types.Order, bool) {
	if order.IsNone() {
		return types.Order{}, false //nolint:exhaustruct // zero order when absent
	}

	return order.Unwrap(), true
}

// ValidatePlan checks every place action in the plan against the order rules.
func ValidatePlan(actions []types.OrderAction) error {
	for i := range actions {
		if actions[i].Kind != types.ActionKindPlace {
			continue
		}

		if err := actions[i].Params.Validate(); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidOrderParams, err, "invalid %s action for %s", actions[i].Reason, actions[i].Symbol)
		}
	}

	return nil
}
