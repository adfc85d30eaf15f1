package tradingprovider

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// BinanceDepthLimit is the number of book levels requested per side.
	// The stop-loss exit reads the eleventh bid, so it must stay above 10.
	BinanceDepthLimit = 20
)

// Service interfaces for mocking the Binance futures API

// GetAccountService interface for getting futures account info.
type GetAccountService interface {
	Do(ctx context.Context) (*futures.Account, error)
}

// GetPositionRiskService interface for listing positions of a symbol.
type GetPositionRiskService interface {
	Symbol(symbol string) GetPositionRiskService
	Do(ctx context.Context) ([]*futures.PositionRisk, error)
}

// ListOpenOrdersService interface for listing open orders of a symbol.
type ListOpenOrdersService interface {
	Symbol(symbol string) ListOpenOrdersService
	Do(ctx context.Context) ([]*futures.Order, error)
}

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side futures.SideType) CreateOrderService
	Type(orderType futures.OrderType) CreateOrderService
	TimeInForce(tif futures.TimeInForceType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Price(price string) CreateOrderService
	NewClientOrderID(clientOrderID string) CreateOrderService
	Do(ctx context.Context) (*futures.CreateOrderResponse, error)
}

// CancelOrderService interface for canceling orders.
type CancelOrderService interface {
	Symbol(symbol string) CancelOrderService
	OrderID(orderID int64) CancelOrderService
	Do(ctx context.Context) (*futures.CancelOrderResponse, error)
}

// ExchangeInfoService interface for reading symbol filters.
type ExchangeInfoService interface {
	Do(ctx context.Context) (*futures.ExchangeInfo, error)
}

// DepthService interface for reading the order book.
type DepthService interface {
	Symbol(symbol string) DepthService
	Limit(limit int) DepthService
	Do(ctx context.Context) (*futures.DepthResponse, error)
}

// PremiumIndexService interface for reading mark and index prices.
type PremiumIndexService interface {
	Symbol(symbol string) PremiumIndexService
	Do(ctx context.Context) ([]*futures.PremiumIndex, error)
}

// BinanceFuturesClient interface abstracts the Binance futures client for testing.
type BinanceFuturesClient interface {
	NewGetAccountService() GetAccountService
	NewGetPositionRiskService() GetPositionRiskService
	NewListOpenOrdersService() ListOpenOrdersService
	NewCreateOrderService() CreateOrderService
	NewCancelOrderService() CancelOrderService
	NewExchangeInfoService() ExchangeInfoService
	NewDepthService() DepthService
	NewPremiumIndexService() PremiumIndexService
}

// realBinanceFuturesClient wraps the actual futures.Client.
type realBinanceFuturesClient struct {
	client *futures.Client
}

func (r *realBinanceFuturesClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

func (r *realBinanceFuturesClient) NewGetPositionRiskService() GetPositionRiskService {
	return &realGetPositionRiskService{service: r.client.NewGetPositionRiskService()}
}

func (r *realBinanceFuturesClient) NewListOpenOrdersService() ListOpenOrdersService {
	return &realListOpenOrdersService{service: r.client.NewListOpenOrdersService()}
}

func (r *realBinanceFuturesClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceFuturesClient) NewCancelOrderService() CancelOrderService {
	return &realCancelOrderService{service: r.client.NewCancelOrderService()}
}

func (r *realBinanceFuturesClient) NewExchangeInfoService() ExchangeInfoService {
	return &realExchangeInfoService{service: r.client.NewExchangeInfoService()}
}

func (r *realBinanceFuturesClient) NewDepthService() DepthService {
	return &realDepthService{service: r.client.NewDepthService()}
}

func (r *realBinanceFuturesClient) NewPremiumIndexService() PremiumIndexService {
	return &realPremiumIndexService{service: r.client.NewPremiumIndexService()}
}

// Real service wrappers

type realGetAccountService struct {
	service *futures.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*futures.Account, error) {
	return s.service.Do(ctx)
}

type realGetPositionRiskService struct {
	service *futures.GetPositionRiskService
}

func (s *realGetPositionRiskService) Symbol(symbol string) GetPositionRiskService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realGetPositionRiskService) Do(ctx context.Context) ([]*futures.PositionRisk, error) {
	return s.service.Do(ctx)
}

type realListOpenOrdersService struct {
	service *futures.ListOpenOrdersService
}

func (s *realListOpenOrdersService) Symbol(symbol string) ListOpenOrdersService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListOpenOrdersService) Do(ctx context.Context) ([]*futures.Order, error) {
	return s.service.Do(ctx)
}

type realCreateOrderService struct {
	service *futures.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side futures.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType futures.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) TimeInForce(tif futures.TimeInForceType) CreateOrderService {
	s.service = s.service.TimeInForce(tif)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Price(price string) CreateOrderService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOrderService) NewClientOrderID(clientOrderID string) CreateOrderService {
	s.service = s.service.NewClientOrderID(clientOrderID)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*futures.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realCancelOrderService struct {
	service *futures.CancelOrderService
}

func (s *realCancelOrderService) Symbol(symbol string) CancelOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCancelOrderService) OrderID(orderID int64) CancelOrderService {
	s.service = s.service.OrderID(orderID)

	return s
}

func (s *realCancelOrderService) Do(ctx context.Context) (*futures.CancelOrderResponse, error) {
	return s.service.Do(ctx)
}

type realExchangeInfoService struct {
	service *futures.ExchangeInfoService
}

func (s *realExchangeInfoService) Do(ctx context.Context) (*futures.ExchangeInfo, error) {
	return s.service.Do(ctx)
}

type realDepthService struct {
	service *futures.DepthService
}

func (s *realDepthService) Symbol(symbol string) DepthService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realDepthService) Limit(limit int) DepthService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realDepthService) Do(ctx context.Context) (*futures.DepthResponse, error) {
	return s.service.Do(ctx)
}

type realPremiumIndexService struct {
	service *futures.PremiumIndexService
}

func (s *realPremiumIndexService) Symbol(symbol string) PremiumIndexService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realPremiumIndexService) Do(ctx context.Context) ([]*futures.PremiumIndex, error) {
	return s.service.Do(ctx)
}

// BinanceFuturesProvider implements Exchange on Binance USD-M futures.
// It is stateless; every call reads straight from the API.
//
// Binance has no per-order expiration, fee ceiling or position id, so
// OrderParams.Expiration, LimitFee and PositionID are not sent. Post-only
// limits go out as GTX. A MARKET order with a price goes out as a FOK limit at
// that price, which bounds the worst fill the way the stop-loss expects.
type BinanceFuturesProvider struct {
	client BinanceFuturesClient
}

// NewBinanceFuturesProvider creates a new Binance futures provider.
// If useTestnet is true, connects to the futures testnet.
// If config.BaseURL is set, it takes precedence over useTestnet.
func NewBinanceFuturesProvider(config BinanceProviderConfig, useTestnet bool) *BinanceFuturesProvider {
	if useTestnet {
		futures.UseTestnet = true
	}

	client := futures.NewClient(config.ApiKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return &BinanceFuturesProvider{
		client: &realBinanceFuturesClient{client: client},
	}
}

// newBinanceFuturesProviderWithClient creates a provider around a custom client.
// This is used for testing with mock clients.
func newBinanceFuturesProviderWithClient(client BinanceFuturesClient) *BinanceFuturesProvider {
	return &BinanceFuturesProvider{
		client: client,
	}
}

// GetAccount returns the margin balance as equity.
func (b *BinanceFuturesProvider) GetAccount(ctx context.Context) (types.AccountState, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return types.AccountState{}, errors.Wrap(errors.ErrCodeAccountFetch, "failed to get account info from Binance", err)
	}

	equity, err := decimal.NewFromString(account.TotalMarginBalance)
	if err != nil {
		return types.AccountState{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid margin balance %q", account.TotalMarginBalance)
	}

	return types.AccountState{
		Equity:     equity,
		PositionID: "",
	}, nil
}

// GetOpenOrders returns the open orders of a symbol filtered by side and type.
func (b *BinanceFuturesProvider) GetOpenOrders(
	ctx context.Context,
	symbol string,
	side types.OrderSide,
	orderType optional.Option[types.OrderType],
	limit int,
) ([]types.Order, error) {
	binanceOrders, err := b.client.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, errors.NewDataFetchError(symbol, "open orders", err)
	}

	orders := make([]types.Order, 0, len(binanceOrders))

	for _, bo := range binanceOrders {
		order, convertErr := convertBinanceOrder(bo)
		if convertErr != nil {
			// stop and take-profit orders are not ours; a malformed limit order would hide an open buy
			if errors.HasCode(convertErr, errors.ErrCodeDataParseFailed) {
				return nil, convertErr
			}

			continue
		}

		if order.Side != side {
			continue
		}

		if orderType.IsSome() && order.Type != orderType.Unwrap() {
			continue
		}

		orders = append(orders, order)
		if limit > 0 && len(orders) == limit {
			break
		}
	}

	return orders, nil
}

// GetOpenPositions returns the non-zero positions of a symbol.
// One-way mode reports side BOTH; the sign of the amount decides it.
func (b *BinanceFuturesProvider) GetOpenPositions(ctx context.Context, symbol string) ([]types.Position, error) {
	risks, err := b.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, errors.NewDataFetchError(symbol, "positions", err)
	}

	positions := make([]types.Position, 0, len(risks))

	for _, risk := range risks {
		amount, parseErr := decimal.NewFromString(risk.PositionAmt)
		if parseErr != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, parseErr, "invalid position amount %q for %s", risk.PositionAmt, symbol)
		}

		if amount.IsZero() {
			continue
		}

		entryPrice, parseErr := decimal.NewFromString(risk.EntryPrice)
		if parseErr != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, parseErr, "invalid entry price %q for %s", risk.EntryPrice, symbol)
		}

		side := types.PositionSideLong

		switch risk.PositionSide {
		case "SHORT":
			side = types.PositionSideShort
		case "LONG":
			side = types.PositionSideLong
		default:
			if amount.IsNegative() {
				side = types.PositionSideShort
			}
		}

		positions = append(positions, types.Position{
			Symbol:     risk.Symbol,
			Side:       side,
			EntryPrice: entryPrice,
			OpenSize:   amount.Abs(),
		})
	}

	return positions, nil
}

// CreateOrder places an order on Binance futures.
func (b *BinanceFuturesProvider) CreateOrder(ctx context.Context, params types.OrderParams) (types.Ack, error) {
	if err := params.Validate(); err != nil {
		return types.Ack{}, err
	}

	var side futures.SideType

	switch params.Side {
	case types.OrderSideBuy:
		side = futures.SideTypeBuy
	case types.OrderSideSell:
		side = futures.SideTypeSell
	default:
		return types.Ack{}, errors.Newf(errors.ErrCodeInvalidOrderParams, "unsupported order side: %s", params.Side)
	}

	tif, err := binanceTimeInForce(params)
	if err != nil {
		return types.Ack{}, err
	}

	resp, err := b.client.NewCreateOrderService().
		Symbol(params.Symbol).
		Side(side).
		Type(futures.OrderTypeLimit).
		TimeInForce(tif).
		Quantity(params.Size.String()).
		Price(params.Price.String()).
		NewClientOrderID(params.ClientID).
		Do(ctx)
	if err != nil {
		return types.Ack{}, errors.NewExchangeRejectionError(params.Symbol, "create order", err)
	}

	return types.Ack{
		OrderID:  strconv.FormatInt(resp.OrderID, 10),
		ClientID: resp.ClientOrderID,
		Status:   string(resp.Status),
	}, nil
}

// CancelOrder cancels an order by its numeric Binance id.
func (b *BinanceFuturesProvider) CancelOrder(ctx context.Context, symbol string, orderID string) (types.Ack, error) {
	binanceOrderID, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return types.Ack{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid order ID format: %s", orderID)
	}

	resp, err := b.client.NewCancelOrderService().
		Symbol(symbol).
		OrderID(binanceOrderID).
		Do(ctx)
	if err != nil {
		return types.Ack{}, errors.NewExchangeRejectionError(symbol, "cancel order "+orderID, err)
	}

	return types.Ack{
		OrderID:  strconv.FormatInt(resp.OrderID, 10),
		ClientID: resp.ClientOrderID,
		Status:   string(resp.Status),
	}, nil
}

// GetMarketInfo combines the symbol's LOT_SIZE filter with its index price.
func (b *BinanceFuturesProvider) GetMarketInfo(ctx context.Context, symbol string) (types.Market, error) {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return types.Market{}, errors.NewDataFetchError(symbol, "exchange info", err)
	}

	var found *futures.Symbol

	for i := range info.Symbols {
		if info.Symbols[i].Symbol == symbol {
			found = &info.Symbols[i]

			break
		}
	}

	if found == nil {
		return types.Market{}, errors.Newf(errors.ErrCodeMarketNotFound, "market not found: %s", symbol)
	}

	lotSize := found.LotSizeFilter()
	if lotSize == nil {
		return types.Market{}, errors.Newf(errors.ErrCodeDataParseFailed, "market %s has no LOT_SIZE filter", symbol)
	}

	stepSize, err := decimal.NewFromString(lotSize.StepSize)
	if err != nil {
		return types.Market{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid step size %q for %s", lotSize.StepSize, symbol)
	}

	minQuantity, err := decimal.NewFromString(lotSize.MinQuantity)
	if err != nil {
		return types.Market{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid min quantity %q for %s", lotSize.MinQuantity, symbol)
	}

	indexes, err := b.client.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.Market{}, errors.NewDataFetchError(symbol, "index price", err)
	}

	if len(indexes) == 0 {
		return types.Market{}, errors.Newf(errors.ErrCodeMarketNotFound, "no index price for %s", symbol)
	}

	indexPrice, err := decimal.NewFromString(indexes[0].IndexPrice)
	if err != nil {
		return types.Market{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid index price %q for %s", indexes[0].IndexPrice, symbol)
	}

	return types.Market{
		Symbol:       symbol,
		QuoteAsset:   found.QuoteAsset,
		StepSize:     stepSize,
		MinOrderSize: minQuantity,
		IndexPrice:   indexPrice,
	}, nil
}

// GetOrderBook returns the top BinanceDepthLimit levels of each side.
func (b *BinanceFuturesProvider) GetOrderBook(ctx context.Context, symbol string) (types.OrderBookSnapshot, error) {
	depth, err := b.client.NewDepthService().Symbol(symbol).Limit(BinanceDepthLimit).Do(ctx)
	if err != nil {
		return types.OrderBookSnapshot{}, errors.NewDataFetchError(symbol, "order book", err)
	}

	bids := make([]types.PriceLevel, 0, len(depth.Bids))

	for _, bid := range depth.Bids {
		level, parseErr := parsePriceLevel(symbol, bid.Price, bid.Quantity)
		if parseErr != nil {
			return types.OrderBookSnapshot{}, parseErr
		}

		bids = append(bids, level)
	}

	asks := make([]types.PriceLevel, 0, len(depth.Asks))

	for _, ask := range depth.Asks {
		level, parseErr := parsePriceLevel(symbol, ask.Price, ask.Quantity)
		if parseErr != nil {
			return types.OrderBookSnapshot{}, parseErr
		}

		asks = append(asks, level)
	}

	return types.OrderBookSnapshot{
		Symbol: symbol,
		Bids:   bids,
		Asks:   asks,
	}, nil
}

// Helper functions

// binanceTimeInForce picks the Binance time in force for an order.
func binanceTimeInForce(params types.OrderParams) (futures.TimeInForceType, error) {
	if params.PostOnly {
		return futures.TimeInForceTypeGTX, nil
	}

	if params.Type == types.OrderTypeMarket {
		return futures.TimeInForceTypeFOK, nil
	}

	if params.TimeInForce.IsNone() {
		return futures.TimeInForceTypeGTC, nil
	}

	switch params.TimeInForce.Unwrap() {
	case types.TimeInForceGTT:
		return futures.TimeInForceTypeGTC, nil
	case types.TimeInForceFOK:
		return futures.TimeInForceTypeFOK, nil
	case types.TimeInForceIOC:
		return futures.TimeInForceTypeIOC, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidOrderParams, "unsupported time in force: %s", params.TimeInForce.Unwrap())
	}
}

func parsePriceLevel(symbol, price, quantity string) (types.PriceLevel, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return types.PriceLevel{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid book price %q for %s", price, symbol)
	}

	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return types.PriceLevel{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid book quantity %q for %s", quantity, symbol)
	}

	return types.PriceLevel{Price: p, Size: q}, nil
}

// convertBinanceOrder converts a Binance futures order to our Order type.
func convertBinanceOrder(bo *futures.Order) (types.Order, error) {
	var side types.OrderSide

	switch bo.Side {
	case futures.SideTypeBuy:
		side = types.OrderSideBuy
	case futures.SideTypeSell:
		side = types.OrderSideSell
	default:
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidParameter, "unknown side: %s", bo.Side)
	}

	var orderType types.OrderType

	switch bo.Type {
	case futures.OrderTypeMarket:
		orderType = types.OrderTypeMarket
	case futures.OrderTypeLimit:
		orderType = types.OrderTypeLimit
	default:
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order type: %s", bo.Type)
	}

	size, err := decimal.NewFromString(bo.OrigQuantity)
	if err != nil {
		return types.Order{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid quantity %q on order %d", bo.OrigQuantity, bo.OrderID)
	}

	price, err := decimal.NewFromString(bo.Price)
	if err != nil {
		return types.Order{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "invalid price %q on order %d", bo.Price, bo.OrderID)
	}

	return types.Order{
		ID:        strconv.FormatInt(bo.OrderID, 10),
		Symbol:    bo.Symbol,
		Side:      side,
		Type:      orderType,
		Size:      size,
		Price:     price,
		CreatedAt: time.UnixMilli(bo.Time),
	}, nil
}

// Ensure BinanceFuturesProvider implements Exchange.
var _ Exchange = (*BinanceFuturesProvider)(nil)
