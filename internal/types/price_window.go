package types

// DefaultPriceWindowSize is the number of closes kept per market.
const DefaultPriceWindowSize = 20

// PriceWindow is a fixed-capacity sliding window of closing prices, most recent last.
// Pushing beyond capacity drops the oldest price.
type PriceWindow struct {
	capacity int
	prices   []float64
}

// NewPriceWindow creates a window holding at most capacity prices.
// A non-positive capacity falls back to DefaultPriceWindowSize.
func NewPriceWindow(capacity int) *PriceWindow {
	if capacity <= 0 {
		capacity = DefaultPriceWindowSize
	}

	return &PriceWindow{
		capacity: capacity,
		prices:   make([]float64, 0, capacity),
	}
}

// Push appends prices in order, evicting the oldest when full.
func (w *PriceWindow) Push(prices ...float64) {
	for _, p := range prices {
		if len(w.prices) == w.capacity {
			copy(w.prices, w.prices[1:])
			w.prices = w.prices[:len(w.prices)-1]
		}

		w.prices = append(w.prices, p)
	}
}

// Reset empties the window.
func (w *PriceWindow) Reset() {
	w.prices = w.prices[:0]
}

// Values returns a copy of the window contents, oldest first.
func (w *PriceWindow) Values() []float64 {
	out := make([]float64, len(w.prices))
	copy(out, w.prices)

	return out
}

// Len returns the number of prices held.
func (w *PriceWindow) Len() int {
	return len(w.prices)
}

// Capacity returns the maximum number of prices held.
func (w *PriceWindow) Capacity() int {
	return w.capacity
}
