package types

import "time"

// ActionStatus is the executor outcome of one OrderAction.
type ActionStatus string

const (
	ActionStatusSubmitted ActionStatus = "submitted"
	ActionStatusRejected  ActionStatus = "rejected"
	// ActionStatusSkipped marks actions left unexecuted after an earlier failure in the same market.
	ActionStatusSkipped ActionStatus = "skipped"
	ActionStatusDryRun  ActionStatus = "dry_run"
)

// ActionRecord is one journal row: an action and what the venue said about it.
type ActionRecord struct {
	CycleID   string       `yaml:"cycle_id" json:"cycle_id"`
	Sequence  int          `yaml:"sequence" json:"sequence"`
	Symbol    string       `yaml:"symbol" json:"symbol"`
	Kind      ActionKind   `yaml:"kind" json:"kind"`
	Reason    ActionReason `yaml:"reason" json:"reason"`
	Side      OrderSide    `yaml:"side,omitempty" json:"side,omitempty"`
	OrderType OrderType    `yaml:"order_type,omitempty" json:"order_type,omitempty"`
	Size      string       `yaml:"size,omitempty" json:"size,omitempty"`
	Price     string       `yaml:"price,omitempty" json:"price,omitempty"`
	ClientID  string       `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	// OrderID is the venue id from the ack, or the cancelled order id.
	OrderID   string       `yaml:"order_id,omitempty" json:"order_id,omitempty"`
	Status    ActionStatus `yaml:"status" json:"status"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Timestamp time.Time    `yaml:"timestamp" json:"timestamp"`
}

// NewActionRecord captures an action before it is executed.
func NewActionRecord(cycleID string, sequence int, action OrderAction, at time.Time) ActionRecord {
	record := ActionRecord{
		CycleID:   cycleID,
		Sequence:  sequence,
		Symbol:    action.Symbol,
		Kind:      action.Kind,
		Reason:    action.Reason,
		Side:      "",
		OrderType: "",
		Size:      "",
		Price:     "",
		ClientID:  "",
		OrderID:   action.OrderID,
		Status:    ActionStatusSkipped,
		Error:     "",
		Timestamp: at,
	}

	if action.Kind == ActionKindPlace {
		record.Side = action.Params.Side
		record.OrderType = action.Params.Type
		record.Size = action.Params.Size.String()
		record.Price = action.Params.Price.String()
		record.ClientID = action.Params.ClientID
	}

	return record
}

// ActionFilter narrows a journal query. Empty fields match everything.
type ActionFilter struct {
	Symbol  string
	CycleID string
	Status  ActionStatus
	Limit   uint64
}
