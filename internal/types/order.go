package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderSide string

type OrderType string

type TimeInForce string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

const (
	// TimeInForceGTT rests on the book until it expires.
	TimeInForceGTT TimeInForce = "GTT"
	// TimeInForceFOK fills completely and immediately or is cancelled.
	TimeInForceFOK TimeInForce = "FOK"
	// TimeInForceIOC fills what it can immediately and cancels the rest.
	TimeInForceIOC TimeInForce = "IOC"
)

// Order is an open order acknowledged by the venue.
type Order struct {
	ID        string          `yaml:"id" json:"id"`
	Symbol    string          `yaml:"symbol" json:"symbol"`
	Side      OrderSide       `yaml:"side" json:"side"`
	Type      OrderType       `yaml:"type" json:"type"`
	Size      decimal.Decimal `yaml:"size" json:"size"`
	Price     decimal.Decimal `yaml:"price" json:"price"`
	CreatedAt time.Time       `yaml:"created_at" json:"created_at"`
}

// OrderParams is what the engine asks the venue to create.
type OrderParams struct {
	Symbol     string          `yaml:"symbol" json:"symbol" validate:"required"`
	PositionID string          `yaml:"position_id" json:"position_id"`
	ClientID   string          `yaml:"client_id" json:"client_id" validate:"required"`
	Side       OrderSide       `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Type       OrderType       `yaml:"type" json:"type" validate:"required,oneof=LIMIT MARKET"`
	Size       decimal.Decimal `yaml:"size" json:"size"`
	Price      decimal.Decimal `yaml:"price" json:"price"`
	PostOnly   bool            `yaml:"post_only" json:"post_only"`
	LimitFee   decimal.Decimal `yaml:"limit_fee" json:"limit_fee"`
	Expiration time.Time       `yaml:"expiration" json:"expiration" validate:"required"`
	// TimeInForce is left to the venue default when not set.
	TimeInForce optional.Option[TimeInForce] `yaml:"time_in_force" json:"time_in_force"`
	// CancelID names an open order the venue should replace with this one.
	// The strategy cancels with a separate action instead and leaves it unset.
	CancelID optional.Option[string] `yaml:"cancel_id" json:"cancel_id"`
}

// Ack is the venue acknowledgement of a create or cancel request.
type Ack struct {
	OrderID  string `yaml:"order_id" json:"order_id"`
	ClientID string `yaml:"client_id" json:"client_id"`
	Status   string `yaml:"status" json:"status"`
}

// Validate validates the OrderParams struct.
func (p *OrderParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderParams, "invalid order params", err)
	}

	if !p.Size.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidOrderParams, "order size must be greater than zero, got %s", p.Size)
	}

	if !p.Price.IsPositive() {
		return errors.Newf(errors.ErrCodeInvalidOrderParams, "order price must be greater than zero, got %s", p.Price)
	}

	if p.LimitFee.IsNegative() {
		return errors.Newf(errors.ErrCodeInvalidOrderParams, "limit fee must not be negative, got %s", p.LimitFee)
	}

	if p.PostOnly && p.Type == OrderTypeMarket {
		return errors.New(errors.ErrCodeInvalidOrderParams, "market orders cannot be post-only")
	}

	if p.PostOnly && p.TimeInForce.IsSome() && p.TimeInForce.Unwrap() != TimeInForceGTT {
		return errors.Newf(errors.ErrCodeInvalidOrderParams, "post-only orders cannot use time in force %s", p.TimeInForce.Unwrap())
	}

	return nil
}
