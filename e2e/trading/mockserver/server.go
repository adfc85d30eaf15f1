// Package mockserver provides a mock Binance USD-M futures REST server for testing.
// It implements the endpoints the futures provider and klines feed call and keeps
// a small in-memory venue: symbols, books, closes, one-way positions and orders.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/shopspring/decimal"
)

// Binance error codes returned by the mock.
const (
	ErrCodePostOnlyRejected = -5022
	ErrCodeUnknownOrder     = -2011
	ErrCodeInvalidSymbol    = -1121
	ErrCodeRejected         = -2010
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusExpired  OrderStatus = "EXPIRED"
)

// Order is an order the mock venue accepted.
type Order struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Side          string
	Type          string
	TimeInForce   string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
}

// Position is a one-way mode position; a negative amount is short.
type Position struct {
	Amount     decimal.Decimal
	EntryPrice decimal.Decimal
}

// SymbolInfo holds the exchange info the engine reads for a symbol.
type SymbolInfo struct {
	Symbol     string
	QuoteAsset string
	StepSize   string
	MinQty     string
}

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Symbols listed by exchangeInfo
	Symbols []SymbolInfo
	// MarginBalance is reported as totalMarginBalance
	MarginBalance decimal.Decimal
	// IndexPrices maps symbol to index price
	IndexPrices map[string]decimal.Decimal
	// Closes maps symbol to kline closes, oldest first
	Closes map[string][]float64
	// KlineInterval is the spacing of generated kline open times
	KlineInterval time.Duration
}

// MockBinanceServer provides a mock Binance futures server for testing.
type MockBinanceServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener

	symbols       map[string]SymbolInfo
	marginBalance decimal.Decimal
	indexPrices   map[string]decimal.Decimal
	closes        map[string][]float64
	klineInterval time.Duration
	books         map[string]types.OrderBookSnapshot
	positions     map[string]*Position
	orders        map[int64]*Order
	orderIDSeq    int64
	rejectOrders  bool
	requests      []string
}

// NewMockBinanceServer creates a new mock Binance futures server.
func NewMockBinanceServer(config ServerConfig) *MockBinanceServer {
	server := &MockBinanceServer{
		mu:            sync.RWMutex{},
		httpServer:    nil,
		listener:      nil,
		symbols:       make(map[string]SymbolInfo),
		marginBalance: config.MarginBalance,
		indexPrices:   make(map[string]decimal.Decimal),
		closes:        make(map[string][]float64),
		klineInterval: config.KlineInterval,
		books:         make(map[string]types.OrderBookSnapshot),
		positions:     make(map[string]*Position),
		orders:        make(map[int64]*Order),
		orderIDSeq:    1000,
		rejectOrders:  false,
		requests:      nil,
	}

	for _, info := range config.Symbols {
		server.symbols[info.Symbol] = info
	}

	for symbol, price := range config.IndexPrices {
		server.indexPrices[symbol] = price
	}

	for symbol, closes := range config.Closes {
		server.closes[symbol] = slices.Clone(closes)
	}

	if server.klineInterval == 0 {
		server.klineInterval = time.Minute
	}

	return server
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockBinanceServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()
	router.Use(s.recordRequest)

	router.HandleFunc("/fapi/v1/exchangeInfo", s.handleExchangeInfo).Methods(http.MethodGet)
	router.HandleFunc("/fapi/v1/premiumIndex", s.handlePremiumIndex).Methods(http.MethodGet)
	router.HandleFunc("/fapi/v1/depth", s.handleDepth).Methods(http.MethodGet)
	router.HandleFunc("/fapi/v1/klines", s.handleKlines).Methods(http.MethodGet)
	router.HandleFunc("/fapi/v1/openOrders", s.handleOpenOrders).Methods(http.MethodGet)
	router.HandleFunc("/fapi/v1/order", s.handleCreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/fapi/v1/order", s.handleCancelOrder).Methods(http.MethodDelete)

	for _, version := range []string{"v2", "v3"} {
		router.HandleFunc("/fapi/"+version+"/account", s.handleAccount).Methods(http.MethodGet)
		router.HandleFunc("/fapi/"+version+"/positionRisk", s.handlePositionRisk).Methods(http.MethodGet)
	}

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockBinanceServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// BaseURL returns the base URL for the server.
func (s *MockBinanceServer) BaseURL() string {
	if s.listener == nil {
		return ""
	}

	return "http://" + s.listener.Addr().String()
}

// SetOrderBook replaces a symbol's book.
func (s *MockBinanceServer) SetOrderBook(book types.OrderBookSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[book.Symbol] = book
}

// SetCloses replaces a symbol's kline closes.
func (s *MockBinanceServer) SetCloses(symbol string, closes []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes[symbol] = slices.Clone(closes)
}

// SetPosition sets a symbol's position directly.
func (s *MockBinanceServer) SetPosition(symbol string, amount, entryPrice decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[symbol] = &Position{Amount: amount, EntryPrice: entryPrice}
}

// GetPosition returns a copy of a symbol's position; zero when flat.
func (s *MockBinanceServer) GetPosition(symbol string) Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.positions[symbol]; ok {
		return *p
	}

	return Position{Amount: decimal.Zero, EntryPrice: decimal.Zero}
}

// SetRejectOrders makes every create order request fail.
func (s *MockBinanceServer) SetRejectOrders(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejectOrders = reject
}

// Orders returns copies of every order the venue accepted, oldest first.
func (s *MockBinanceServer) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.orders))
	result := make([]Order, 0, len(ids))

	for _, id := range ids {
		result = append(result, *s.orders[id])
	}

	return result
}

// OpenOrders returns copies of the resting orders of a symbol.
func (s *MockBinanceServer) OpenOrders(symbol string) []Order {
	return slices.DeleteFunc(s.Orders(), func(o Order) bool {
		return o.Symbol != symbol || o.Status != OrderStatusNew
	})
}

// FillOrder fills a resting order completely and updates the position.
func (s *MockBinanceServer) FillOrder(orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok || order.Status != OrderStatusNew {
		return fmt.Errorf("order %d is not open", orderID)
	}

	s.fillLocked(order, order.Price)

	return nil
}

// Requests returns the request paths the server has seen, in order.
func (s *MockBinanceServer) Requests() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.requests)
}

func (s *MockBinanceServer) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// fillLocked applies a fill to the symbol's one-way position. Callers hold s.mu.
func (s *MockBinanceServer) fillLocked(order *Order, price decimal.Decimal) {
	order.Status = OrderStatusFilled

	position, ok := s.positions[order.Symbol]
	if !ok {
		position = &Position{Amount: decimal.Zero, EntryPrice: decimal.Zero}
		s.positions[order.Symbol] = position
	}

	delta := order.Quantity
	if order.Side == "SELL" {
		delta = delta.Neg()
	}

	next := position.Amount.Add(delta)

	switch {
	case next.IsZero():
		position.EntryPrice = decimal.Zero
	case position.Amount.IsZero() || position.Amount.Sign() != next.Sign():
		position.EntryPrice = price
	case position.Amount.Sign() == delta.Sign():
		// adding to the position: size-weighted entry
		notional := position.Amount.Abs().Mul(position.EntryPrice).Add(delta.Abs().Mul(price))
		position.EntryPrice = notional.Div(next.Abs())
	}

	position.Amount = next
}

// REST API Handlers

// handleExchangeInfo handles GET /fapi/v1/exchangeInfo
func (s *MockBinanceServer) handleExchangeInfo(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]map[string]any, 0, len(s.symbols))
	for _, name := range slices.Sorted(maps.Keys(s.symbols)) {
		info := s.symbols[name]
		symbols = append(symbols, map[string]any{
			"symbol":       info.Symbol,
			"pair":         info.Symbol,
			"contractType": "PERPETUAL",
			"status":       "TRADING",
			"quoteAsset":   info.QuoteAsset,
			"filters": []map[string]any{
				{"filterType": "LOT_SIZE", "stepSize": info.StepSize, "minQty": info.MinQty, "maxQty": "10000"},
				{"filterType": "PRICE_FILTER", "tickSize": "0.01", "minPrice": "0.01", "maxPrice": "1000000"},
			},
		})
	}

	writeJSON(w, map[string]any{
		"timezone":   "UTC",
		"serverTime": time.Now().UnixMilli(),
		"symbols":    symbols,
	})
}

// handlePremiumIndex handles GET /fapi/v1/premiumIndex
func (s *MockBinanceServer) handlePremiumIndex(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	s.mu.RLock()
	price, ok := s.indexPrices[symbol]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidSymbol, "Invalid symbol.")

		return
	}

	writeJSON(w, []map[string]any{{
		"symbol":          symbol,
		"markPrice":       price.String(),
		"indexPrice":      price.String(),
		"lastFundingRate": "0.0001",
		"nextFundingTime": time.Now().Add(time.Hour).UnixMilli(),
		"interestRate":    "0.0001",
		"time":            time.Now().UnixMilli(),
	}})
}

// handleDepth handles GET /fapi/v1/depth
func (s *MockBinanceServer) handleDepth(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.RLock()
	book, ok := s.books[symbol]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidSymbol, "Invalid symbol.")

		return
	}

	writeJSON(w, map[string]any{
		"lastUpdateId": 1,
		"E":            time.Now().UnixMilli(),
		"T":            time.Now().UnixMilli(),
		"bids":         levels(book.Bids, limit),
		"asks":         levels(book.Asks, limit),
	})
}

// handleKlines handles GET /fapi/v1/klines
func (s *MockBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.RLock()
	closes, ok := s.closes[symbol]
	interval := s.klineInterval
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidSymbol, "Invalid symbol.")

		return
	}

	if limit > 0 && len(closes) > limit {
		closes = closes[len(closes)-limit:]
	}

	start := time.Now().Truncate(interval).Add(-time.Duration(len(closes)-1) * interval)
	klines := make([][]any, 0, len(closes))

	for i, c := range closes {
		openTime := start.Add(time.Duration(i) * interval)
		price := strconv.FormatFloat(c, 'f', -1, 64)
		klines = append(klines, []any{
			openTime.UnixMilli(),
			price, price, price, price,
			"10",
			openTime.Add(interval).UnixMilli() - 1,
			"0", 0, "0", "0", "0",
		})
	}

	writeJSON(w, klines)
}

// handleAccount handles GET /fapi/v2/account and /fapi/v3/account
func (s *MockBinanceServer) handleAccount(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	balance := s.marginBalance.String()
	s.mu.RUnlock()

	writeJSON(w, map[string]any{
		"feeTier":               0,
		"canTrade":              true,
		"canDeposit":            true,
		"canWithdraw":           true,
		"updateTime":            0,
		"totalWalletBalance":    balance,
		"totalMarginBalance":    balance,
		"availableBalance":      balance,
		"totalUnrealizedProfit": "0",
		"assets":                []any{},
		"positions":             []any{},
	})
}

// handlePositionRisk handles GET /fapi/v2/positionRisk and /fapi/v3/positionRisk
func (s *MockBinanceServer) handlePositionRisk(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	s.mu.RLock()
	defer s.mu.RUnlock()

	risks := make([]map[string]any, 0, 1)

	if p, ok := s.positions[symbol]; ok {
		risks = append(risks, map[string]any{
			"symbol":           symbol,
			"positionAmt":      p.Amount.String(),
			"entryPrice":       p.EntryPrice.String(),
			"markPrice":        p.EntryPrice.String(),
			"unRealizedProfit": "0",
			"liquidationPrice": "0",
			"leverage":         "1",
			"marginType":       "cross",
			"isolatedMargin":   "0",
			"isAutoAddMargin":  "false",
			"positionSide":     "BOTH",
			"notional":         p.Amount.Mul(p.EntryPrice).String(),
			"isolatedWallet":   "0",
			"updateTime":       time.Now().UnixMilli(),
		})
	}

	writeJSON(w, risks)
}

// handleOpenOrders handles GET /fapi/v1/openOrders
func (s *MockBinanceServer) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	open := s.OpenOrders(symbol)
	response := make([]orderResponse, 0, len(open))

	for i := range open {
		response = append(response, newOrderResponse(&open[i]))
	}

	writeJSON(w, response)
}

// handleCreateOrder handles POST /fapi/v1/order
func (s *MockBinanceServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	form, err := requestValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeRejected, "Failed to parse request.")

		return
	}

	symbol := form.Get("symbol")
	side := form.Get("side")
	orderType := form.Get("type")
	timeInForce := form.Get("timeInForce")

	quantity, qtyErr := decimal.NewFromString(form.Get("quantity"))
	price, priceErr := decimal.NewFromString(form.Get("price"))

	if symbol == "" || side == "" || orderType == "" || qtyErr != nil || priceErr != nil {
		writeError(w, http.StatusBadRequest, ErrCodeRejected, "Mandatory parameter was not sent or was malformed.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectOrders {
		writeError(w, http.StatusBadRequest, ErrCodeRejected, "Order was rejected.")

		return
	}

	if _, ok := s.symbols[symbol]; !ok {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidSymbol, "Invalid symbol.")

		return
	}

	book := s.books[symbol]
	crosses := crossesBook(book, side, price)

	if timeInForce == "GTX" && crosses {
		writeError(w, http.StatusBadRequest, ErrCodePostOnlyRejected,
			"Due to the order could not be executed as maker, the Post Only order will be rejected.")

		return
	}

	clientOrderID := form.Get("newClientOrderId")
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}

	s.orderIDSeq++
	order := &Order{
		OrderID:       s.orderIDSeq,
		ClientOrderID: clientOrderID,
		Symbol:        symbol,
		Side:          side,
		Type:          orderType,
		TimeInForce:   timeInForce,
		Quantity:      quantity,
		Price:         price,
		Status:        OrderStatusNew,
		CreatedAt:     time.Now(),
	}
	s.orders[order.OrderID] = order

	switch {
	case crosses:
		s.fillLocked(order, price)
	case timeInForce == "FOK" || timeInForce == "IOC":
		order.Status = OrderStatusExpired
	}

	writeJSON(w, newOrderResponse(order))
}

// handleCancelOrder handles DELETE /fapi/v1/order
func (s *MockBinanceServer) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	form, err := requestValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeRejected, "Failed to parse request.")

		return
	}

	orderID, err := strconv.ParseInt(form.Get("orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeUnknownOrder, "Unknown order sent.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok || order.Status != OrderStatusNew || order.Symbol != form.Get("symbol") {
		writeError(w, http.StatusBadRequest, ErrCodeUnknownOrder, "Unknown order sent.")

		return
	}

	order.Status = OrderStatusCanceled

	writeJSON(w, newOrderResponse(order))
}

type orderResponse struct {
	Symbol           string `json:"symbol"`
	OrderID          int64  `json:"orderId"`
	ClientOrderID    string `json:"clientOrderId"`
	Price            string `json:"price"`
	OrigQuantity     string `json:"origQty"`
	ExecutedQuantity string `json:"executedQty"`
	CumQuote         string `json:"cumQuote"`
	AvgPrice         string `json:"avgPrice"`
	ReduceOnly       bool   `json:"reduceOnly"`
	ClosePosition    bool   `json:"closePosition"`
	PriceProtect     bool   `json:"priceProtect"`
	Status           string `json:"status"`
	TimeInForce      string `json:"timeInForce"`
	Type             string `json:"type"`
	OrigType         string `json:"origType"`
	Side             string `json:"side"`
	PositionSide     string `json:"positionSide"`
	StopPrice        string `json:"stopPrice"`
	WorkingType      string `json:"workingType"`
	Time             int64  `json:"time"`
	UpdateTime       int64  `json:"updateTime"`
}

func newOrderResponse(o *Order) orderResponse {
	executed := decimal.Zero
	avgPrice := decimal.Zero

	if o.Status == OrderStatusFilled {
		executed = o.Quantity
		avgPrice = o.Price
	}

	return orderResponse{
		Symbol:           o.Symbol,
		OrderID:          o.OrderID,
		ClientOrderID:    o.ClientOrderID,
		Price:            o.Price.String(),
		OrigQuantity:     o.Quantity.String(),
		ExecutedQuantity: executed.String(),
		CumQuote:         executed.Mul(avgPrice).String(),
		AvgPrice:         avgPrice.String(),
		ReduceOnly:       false,
		ClosePosition:    false,
		PriceProtect:     false,
		Status:           string(o.Status),
		TimeInForce:      o.TimeInForce,
		Type:             o.Type,
		OrigType:         o.Type,
		Side:             o.Side,
		PositionSide:     "BOTH",
		StopPrice:        "0",
		WorkingType:      "CONTRACT_PRICE",
		Time:             o.CreatedAt.UnixMilli(),
		UpdateTime:       time.Now().UnixMilli(),
	}
}

// crossesBook reports whether a limit at price would trade against the book.
func crossesBook(book types.OrderBookSnapshot, side string, price decimal.Decimal) bool {
	if side == "BUY" {
		ask, err := book.BestAsk()

		return err == nil && price.GreaterThanOrEqual(ask.Price)
	}

	bid, err := book.BestBid()

	return err == nil && price.LessThanOrEqual(bid.Price)
}

// requestValues merges query and form-encoded body values for any method.
func requestValues(r *http.Request) (url.Values, error) {
	values := r.URL.Query()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return values, nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}

	for key, vs := range form {
		for _, v := range vs {
			values.Add(key, v)
		}
	}

	return values, nil
}

func levels(book []types.PriceLevel, limit int) [][]string {
	if limit > 0 && len(book) > limit {
		book = book[:limit]
	}

	result := make([][]string, 0, len(book))
	for _, level := range book {
		result = append(result, []string{level.Price.String(), level.Size.String()})
	}

	return result
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg})
}
