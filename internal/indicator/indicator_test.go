package indicator

import (
	"testing"

	"github.com/amirphl/book-algo/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(t *testing.T, bids, asks []market.PriceLevel) *market.Book {
	t.Helper()
	b := market.NewBook("TEST")
	require.NoError(t, b.SetLevels(bids, asks))
	return b
}

func TestVWAP(t *testing.T) {
	tests := []struct {
		name     string
		bids     []market.PriceLevel
		asks     []market.PriceLevel
		expected float64
	}{
		{
			name:     "single level each side",
			bids:     []market.PriceLevel{{Price: 115, Quantity: 10}},
			asks:     []market.PriceLevel{{Price: 125, Quantity: 10}},
			expected: 120.0,
		},
		{
			name:     "four levels across both sides",
			bids:     []market.PriceLevel{{Price: 110, Quantity: 20}, {Price: 100, Quantity: 10}},
			asks:     []market.PriceLevel{{Price: 120, Quantity: 10}, {Price: 130, Quantity: 30}},
			expected: 8300.0 / 70.0,
		},
		{
			name:     "all levels on one side",
			asks:     []market.PriceLevel{{Price: 100, Quantity: 10}, {Price: 110, Quantity: 20}, {Price: 120, Quantity: 10}, {Price: 130, Quantity: 30}},
			expected: 8300.0 / 70.0,
		},
		{
			name:     "zero quantity",
			bids:     []market.PriceLevel{{Price: 100, Quantity: 0}},
			asks:     []market.PriceLevel{{Price: 101, Quantity: 0}},
			expected: 0,
		},
		{
			name:     "empty book",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, VWAP(book(t, tt.bids, tt.asks)), 1e-9)
		})
	}
}

func TestCalculateSMA(t *testing.T) {
	assert.Equal(t, 0.0, CalculateSMA(nil))
	assert.Equal(t, 93.0, CalculateSMA([]float64{95, 94, 93, 92, 91}))
}

func TestRollingSMA(t *testing.T) {
	r := NewRollingSMA(5)
	assert.Equal(t, 0.0, r.Value())
	assert.Equal(t, 5, r.Period())

	for _, p := range []float64{95, 94, 93, 92} {
		r.Push(p)
	}
	assert.Equal(t, 93.5, r.Value())
	assert.Equal(t, 93.0, r.Push(91))
	assert.Equal(t, []float64{95, 94, 93, 92, 91}, r.Samples())

	// sixth sample evicts the oldest
	assert.Equal(t, 92.0, r.Push(90))
	assert.Equal(t, []float64{94, 93, 92, 91, 90}, r.Samples())
	assert.Equal(t, 5, r.Len())

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, r.Value())
}

func TestRollingSMA_MinimumPeriod(t *testing.T) {
	r := NewRollingSMA(0)
	assert.Equal(t, 1, r.Period())
	r.Push(10)
	assert.Equal(t, 20.0, r.Push(20))
	assert.Equal(t, []float64{20}, r.Samples())
}
