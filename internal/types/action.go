package types

import "fmt"

// ActionKind is what the executor does with an OrderAction.
type ActionKind string

const (
	ActionKindPlace  ActionKind = "place"
	ActionKindCancel ActionKind = "cancel"
)

// ActionReason records which branch of the strategy produced an action.
type ActionReason string

const (
	ActionReasonEntry      ActionReason = "entry"
	ActionReasonTakeProfit ActionReason = "take_profit"
	ActionReasonStopLoss   ActionReason = "stop_loss"
	ActionReasonDustTopUp  ActionReason = "dust_top_up"
)

// OrderAction is a single instruction for the order executor.
// Place actions carry Params; cancel actions carry OrderID.
type OrderAction struct {
	Kind    ActionKind   `yaml:"kind" json:"kind"`
	Reason  ActionReason `yaml:"reason" json:"reason"`
	Symbol  string       `yaml:"symbol" json:"symbol"`
	OrderID string       `yaml:"order_id,omitempty" json:"order_id,omitempty"`
	Params  OrderParams  `yaml:"params,omitempty" json:"params,omitempty"`
}

// NewPlaceAction builds a place action.
func NewPlaceAction(reason ActionReason, params OrderParams) OrderAction {
	return OrderAction{
		Kind:    ActionKindPlace,
		Reason:  reason,
		Symbol:  params.Symbol,
		OrderID: "",
		Params:  params,
	}
}

// NewCancelAction builds a cancel action for an open order.
func NewCancelAction(reason ActionReason, order Order) OrderAction {
	return OrderAction{
		Kind:    ActionKindCancel,
		Reason:  reason,
		Symbol:  order.Symbol,
		OrderID: order.ID,
		Params:  OrderParams{}, //nolint:exhaustruct // cancel actions carry no params
	}
}

// String renders the action for logs.
func (a OrderAction) String() string {
	if a.Kind == ActionKindCancel {
		return fmt.Sprintf("cancel %s %s (%s)", a.Symbol, a.OrderID, a.Reason)
	}

	return fmt.Sprintf("place %s %s %s %s@%s (%s)",
		a.Symbol, a.Params.Side, a.Params.Type, a.Params.Size.String(), a.Params.Price.String(), a.Reason)
}
