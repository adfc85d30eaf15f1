package types

import "github.com/shopspring/decimal"

// AccountState is the read-only account view used for sizing.
type AccountState struct {
	// Equity is the total account value in the quote asset.
	Equity decimal.Decimal `json:"equity" yaml:"equity"`
	// PositionID identifies the account's position on venues that require it on orders.
	PositionID string `json:"position_id" yaml:"position_id"`
}
