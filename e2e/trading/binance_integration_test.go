package trading

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	marketdataprovider "github.com/rxtech-lab/argo-meanrev/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

const integrationSymbol = "ETHUSDT"

// BinanceIntegrationTestSuite contains integration tests for the Binance futures provider.
// These tests require BINANCE_TESTNET_API_KEY and BINANCE_TESTNET_SECRET_KEY environment variables.
type BinanceIntegrationTestSuite struct {
	suite.Suite
	provider *tradingprovider.BinanceFuturesProvider
}

func TestBinanceIntegrationSuite(t *testing.T) {
	suite.Run(t, new(BinanceIntegrationTestSuite))
}

func (suite *BinanceIntegrationTestSuite) SetupTest() {
	apiKey := os.Getenv("BINANCE_TESTNET_API_KEY")
	secretKey := os.Getenv("BINANCE_TESTNET_SECRET_KEY")

	if apiKey == "" || secretKey == "" {
		suite.T().Skip("Skipping integration test: BINANCE_TESTNET_API_KEY and BINANCE_TESTNET_SECRET_KEY not set")
	}

	suite.provider = tradingprovider.NewBinanceFuturesProvider(tradingprovider.BinanceProviderConfig{
		ApiKey:    apiKey,
		SecretKey: secretKey,
		BaseURL:   "",
	}, true)
}

func (suite *BinanceIntegrationTestSuite) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	suite.T().Cleanup(cancel)

	return ctx
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetAccount() {
	account, err := suite.provider.GetAccount(suite.ctx())
	suite.Require().NoError(err)
	suite.False(account.Equity.IsNegative())
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetOpenPositions() {
	positions, err := suite.provider.GetOpenPositions(suite.ctx(), integrationSymbol)
	suite.Require().NoError(err)

	for _, p := range positions {
		suite.Equal(integrationSymbol, p.Symbol)
		suite.True(p.OpenSize.IsPositive())
	}
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetOpenOrders() {
	orders, err := suite.provider.GetOpenOrders(suite.ctx(), integrationSymbol, types.OrderSideBuy,
		optional.Some(types.OrderTypeLimit), 1)
	suite.Require().NoError(err)
	suite.LessOrEqual(len(orders), 1)
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetMarketInfo() {
	market, err := suite.provider.GetMarketInfo(suite.ctx(), integrationSymbol)
	suite.Require().NoError(err)
	suite.Equal(integrationSymbol, market.Symbol)
	suite.Equal("USDT", market.QuoteAsset)
	suite.True(market.StepSize.IsPositive())
	suite.True(market.IndexPrice.IsPositive())
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetMarketInfo_UnknownSymbol() {
	_, err := suite.provider.GetMarketInfo(suite.ctx(), "NOTAREALSYMBOL")
	suite.True(errors.HasCode(err, errors.ErrCodeMarketNotFound))
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_GetOrderBook() {
	book, err := suite.provider.GetOrderBook(suite.ctx(), integrationSymbol)
	suite.Require().NoError(err)
	suite.Require().NoError(book.Validate())

	bid, _ := book.BestBid()
	ask, _ := book.BestAsk()
	suite.True(bid.Price.LessThan(ask.Price))
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_CancelOrder_OrderNotFound() {
	_, err := suite.provider.CancelOrder(suite.ctx(), integrationSymbol, "1")
	suite.True(errors.HasCode(err, errors.ErrCodeExchangeRejected))
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_CancelOrder_InvalidID() {
	_, err := suite.provider.CancelOrder(suite.ctx(), integrationSymbol, "not-a-number")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *BinanceIntegrationTestSuite) TestIntegration_BinanceFeedCloses() {
	feed, err := marketdataprovider.NewBinanceFeed(marketdataprovider.BinanceFeedConfig{
		BaseFeedConfig: marketdataprovider.BaseFeedConfig{Granularity: marketdataprovider.DefaultGranularity},
		BaseURL:        "",
	})
	suite.Require().NoError(err)

	closes, err := feed.GetRecentCloses(suite.ctx(), integrationSymbol, 20)
	suite.Require().NoError(err)
	suite.Len(closes, 20)
}
