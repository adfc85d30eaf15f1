package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validLimitParams() OrderParams {
	return OrderParams{
		Symbol:      "ETH-USD",
		PositionID:  "12345",
		ClientID:    "client-1",
		Side:        OrderSideBuy,
		Type:        OrderTypeLimit,
		Size:        decimal.RequireFromString("0.250"),
		Price:       decimal.RequireFromString("1999.5"),
		PostOnly:    true,
		LimitFee:    decimal.RequireFromString("0.0005"),
		Expiration:  time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
		TimeInForce: optional.None[TimeInForce](),
		CancelID:    optional.None[string](),
	}
}

func TestOrderParamsValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *OrderParams)
		shouldError bool
	}{
		{
			name:        "valid post-only limit",
			mutate:      func(_ *OrderParams) {},
			shouldError: false,
		},
		{
			name: "valid market FOK",
			mutate: func(p *OrderParams) {
				p.Type = OrderTypeMarket
				p.PostOnly = false
				p.LimitFee = decimal.RequireFromString("0.002")
				p.TimeInForce = optional.Some(TimeInForceFOK)
			},
			shouldError: false,
		},
		{
			name:        "missing symbol",
			mutate:      func(p *OrderParams) { p.Symbol = "" },
			shouldError: true,
		},
		{
			name:        "missing client id",
			mutate:      func(p *OrderParams) { p.ClientID = "" },
			shouldError: true,
		},
		{
			name:        "invalid side",
			mutate:      func(p *OrderParams) { p.Side = OrderSide("HOLD") },
			shouldError: true,
		},
		{
			name:        "invalid type",
			mutate:      func(p *OrderParams) { p.Type = OrderType("STOP") },
			shouldError: true,
		},
		{
			name:        "zero size",
			mutate:      func(p *OrderParams) { p.Size = decimal.Zero },
			shouldError: true,
		},
		{
			name:        "negative price",
			mutate:      func(p *OrderParams) { p.Price = decimal.NewFromInt(-1) },
			shouldError: true,
		},
		{
			name:        "negative fee",
			mutate:      func(p *OrderParams) { p.LimitFee = decimal.RequireFromString("-0.1") },
			shouldError: true,
		},
		{
			name:        "missing expiration",
			mutate:      func(p *OrderParams) { p.Expiration = time.Time{} },
			shouldError: true,
		},
		{
			name:        "post-only market",
			mutate:      func(p *OrderParams) { p.Type = OrderTypeMarket },
			shouldError: true,
		},
		{
			name:        "post-only FOK",
			mutate:      func(p *OrderParams) { p.TimeInForce = optional.Some(TimeInForceFOK) },
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validLimitParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.shouldError {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOrderParams))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderActionString(t *testing.T) {
	place := NewPlaceAction(ActionReasonEntry, validLimitParams())
	assert.Equal(t, ActionKindPlace, place.Kind)
	assert.Equal(t, "ETH-USD", place.Symbol)
	assert.Equal(t, "place ETH-USD BUY LIMIT 0.25@1999.5 (entry)", place.String())

	cancel := NewCancelAction(ActionReasonStopLoss, Order{ID: "42", Symbol: "ETH-USD"})
	assert.Equal(t, ActionKindCancel, cancel.Kind)
	assert.Equal(t, "42", cancel.OrderID)
	assert.Equal(t, "cancel ETH-USD 42 (stop_loss)", cancel.String())
}
