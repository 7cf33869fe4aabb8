package strategy

import (
	"testing"

	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() Option {
	return WithLogger(zap.NewNop().Sugar())
}

func lv(price, qty int64) market.PriceLevel {
	return market.PriceLevel{Price: price, Quantity: qty}
}

func book(t *testing.T, bids, asks []market.PriceLevel, orders ...*order.ChildOrder) *market.Book {
	t.Helper()
	b := market.NewBook("TEST")
	require.NoError(t, b.SetLevels(bids, asks))
	for _, o := range orders {
		b.AddOrder(o)
	}
	return b
}

func ackedOrder(t *testing.T, id, qty, price int64) *order.ChildOrder {
	t.Helper()
	o := order.New(order.Buy, id, qty, price)
	require.NoError(t, o.Ack())
	return o
}

func ackedOrders(t *testing.T, n int, qty, price int64) []*order.ChildOrder {
	t.Helper()
	out := make([]*order.ChildOrder, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, ackedOrder(t, int64(i), qty, price))
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		expected string
		wantErr  bool
	}{
		{"scalper", config.StrategyScalper, "Scalper", false},
		{"iceberg", config.StrategyIcebergVWAP, "IcebergVWAP", false},
		{"unknown", "grid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Strategy = tt.strategy
			s, err := New(cfg, nopLogger())
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalid)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Name())
		})
	}
}

func TestEnginesWithoutAsks(t *testing.T) {
	engines := []Strategy{
		NewScalper("TEST", config.DefaultScalper(), nopLogger()),
		NewIcebergVWAP("TEST", config.DefaultIceberg(), nopLogger()),
	}
	state := book(t, []market.PriceLevel{lv(100, 10)}, nil, ackedOrder(t, 1, 10, 100))

	for _, s := range engines {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, action.None, s.Evaluate(state))
			assert.Equal(t, action.None, s.Evaluate(book(t, nil, nil)))
		})
	}
}
