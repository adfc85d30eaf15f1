package mocks

import (
	"math"
	"math/rand"

	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/shopspring/decimal"
)

// DataGenerator generates close series and order books for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how closes are generated.
type GeneratorConfig struct {
	// Count is the number of closes to generate
	Count int
	// InitialPrice is the first close
	InitialPrice float64
	// Volatility controls price movement per close (0.002 = 0.2%)
	Volatility float64
	// Trend is the total drift spread across the series (-0.01 to 0.01)
	Trend float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:        20,
		InitialPrice: 2000.0,
		Volatility:   0.002,
		Trend:        0.0,
	}
}

// GenerateCloses returns closes following a geometric Brownian motion, oldest first.
func (g *DataGenerator) GenerateCloses(config GeneratorConfig) []float64 {
	closes := make([]float64, config.Count)
	price := config.InitialPrice

	for i := 0; i < config.Count; i++ {
		// Box-Muller transform for a standard normal sample
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		next := price * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = price * 0.99
		}

		closes[i] = roundToDecimals(next, 4)
		price = next
	}

	return closes
}

// BookConfig configures a generated order book.
type BookConfig struct {
	Symbol string
	// BestBid is the top bid price
	BestBid decimal.Decimal
	// Spread is the distance from the best bid to the best ask
	Spread decimal.Decimal
	// Tick is the distance between adjacent levels on one side
	Tick decimal.Decimal
	// Levels is the number of levels per side
	Levels int
}

// GenerateOrderBook builds a book with evenly spaced levels and random sizes.
// Bids descend from BestBid and asks ascend from BestBid+Spread.
func (g *DataGenerator) GenerateOrderBook(config BookConfig) types.OrderBookSnapshot {
	book := types.OrderBookSnapshot{
		Symbol: config.Symbol,
		Bids:   make([]types.PriceLevel, 0, config.Levels),
		Asks:   make([]types.PriceLevel, 0, config.Levels),
	}

	bestAsk := config.BestBid.Add(config.Spread)

	for i := 0; i < config.Levels; i++ {
		offset := config.Tick.Mul(decimal.NewFromInt(int64(i)))

		book.Bids = append(book.Bids, types.PriceLevel{
			Price: config.BestBid.Sub(offset),
			Size:  g.levelSize(),
		})
		book.Asks = append(book.Asks, types.PriceLevel{
			Price: bestAsk.Add(offset),
			Size:  g.levelSize(),
		})
	}

	return book
}

func (g *DataGenerator) levelSize() decimal.Decimal {
	return decimal.NewFromFloat(roundToDecimals(0.1+g.rng.Float64()*10, 3))
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
