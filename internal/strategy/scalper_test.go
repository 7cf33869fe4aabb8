package strategy

import (
	"testing"

	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScalper() *Scalper {
	return NewScalper("TEST", config.DefaultScalper(), nopLogger())
}

func TestScalper_CreatesAtFarTouch(t *testing.T) {
	tests := []struct {
		name     string
		bid      int64
		ask      int64
		expected int64
	}{
		{"inside threshold keeps ask", 115, 125, 125},
		{"tight spread keeps ask", 99, 100, 100},
		{"deviation equal to threshold keeps ask", 95, 105, 105},
		{"deviation above threshold", 90, 100, 95},
		{"adjusted price truncates", 50, 99, 94},
		{"non-positive mean skips adjustment", -10, 9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScalper()
			state := rawState{
				bids: []market.PriceLevel{lv(tt.bid, 10)},
				asks: []market.PriceLevel{lv(tt.ask, 7)},
			}
			assert.Equal(t, action.Create(order.Buy, 7, tt.expected), s.Evaluate(state))
		})
	}
}

func TestScalper_NoBidAbortsCreate(t *testing.T) {
	s := newScalper()
	state := book(t, nil, []market.PriceLevel{lv(100, 10)})
	assert.Equal(t, action.None, s.Evaluate(state))
	assert.Zero(t, s.PerformanceMetrics()["orders_created"])
}

func TestScalper_LadderCap(t *testing.T) {
	s := newScalper()
	b := book(t, []market.PriceLevel{lv(98, 10)}, []market.PriceLevel{lv(100, 10)})

	var ids order.IDGenerator
	for i := 0; i < 8; i++ {
		a := s.Evaluate(b)
		require.Equal(t, action.KindCreate, a.Kind(), "evaluation %d", i)
		create := a.(action.CreateChildOrder)
		o := order.New(create.Side, ids.Next(), create.Quantity, create.Price)
		require.NoError(t, o.Ack())
		b.AddOrder(o)
	}
	require.Len(t, b.ChildOrders(), 8)

	// ladder full: oldest active order goes first, regardless of price
	a := s.Evaluate(b)
	require.Equal(t, action.Cancel(b.ChildOrders()[0]), a)
	require.NoError(t, b.ChildOrders()[0].Cancel())

	a = s.Evaluate(b)
	assert.Equal(t, action.Cancel(b.ChildOrders()[1]), a)

	metrics := s.PerformanceMetrics()
	assert.Equal(t, 8.0, metrics["orders_created"])
	assert.Equal(t, 2.0, metrics["orders_cancelled"])
}

func TestScalper_FullLadderWithoutActiveOrders(t *testing.T) {
	s := newScalper()
	orders := ackedOrders(t, 8, 10, 100)
	for _, o := range orders {
		require.NoError(t, o.Cancel())
	}
	state := book(t, []market.PriceLevel{lv(101, 10)}, []market.PriceLevel{lv(102, 10)}, orders...)
	assert.Equal(t, action.None, s.Evaluate(state))
}

func TestScalper_DecisionIsStable(t *testing.T) {
	s := newScalper()
	state := book(t, []market.PriceLevel{lv(90, 10)}, []market.PriceLevel{lv(100, 10)})

	first := s.Evaluate(state)
	second := s.Evaluate(state)
	assert.Equal(t, first.Kind(), second.Kind())
	assert.Equal(t, first, second)

	full := book(t, []market.PriceLevel{lv(90, 10)}, []market.PriceLevel{lv(100, 10)}, ackedOrders(t, 8, 10, 100)...)
	assert.Equal(t, s.Evaluate(full), s.Evaluate(full))
}

func TestScalper_Execute(t *testing.T) {
	tests := []struct {
		name   string
		price  int64
		bid    int64
		cancel bool
	}{
		{"take-profit", 100, 102, true},
		{"stop-loss", 100, 98, true},
		{"inside band", 100, 100, false},
		{"tick truncation widens band", 149, 150, false}, // levels 147 / 151
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScalper()
			o := ackedOrder(t, 1, 10, tt.price)
			a := s.Execute(o, tt.bid)
			if tt.cancel {
				assert.Equal(t, action.Cancel(o), a)
				assert.Equal(t, 1.0, s.PerformanceMetrics()["exits"])
			} else {
				assert.Equal(t, action.None, a)
			}
			assert.Equal(t, int64(10), o.FilledQuantity)
			assert.Equal(t, order.Filled, o.State)
		})
	}

	t.Run("non-positive price", func(t *testing.T) {
		s := newScalper()
		o := ackedOrder(t, 1, 10, 0)
		assert.Equal(t, action.None, s.Execute(o, 5))
		assert.Zero(t, o.FilledQuantity)
	})
}

func TestScalper_Reset(t *testing.T) {
	s := newScalper()
	s.Evaluate(book(t, []market.PriceLevel{lv(98, 10)}, []market.PriceLevel{lv(100, 10)}))
	require.Equal(t, 1.0, s.PerformanceMetrics()["orders_created"])

	s.Reset()
	for _, v := range s.PerformanceMetrics() {
		assert.Zero(t, v)
	}
}

// rawState is a State without Book's level validation.
type rawState struct {
	bids, asks []market.PriceLevel
	orders     []*order.ChildOrder
}

func (r rawState) Symbol() string                   { return "RAW" }
func (r rawState) BidLevels() int                   { return len(r.bids) }
func (r rawState) BidAt(i int) market.PriceLevel    { return r.bids[i] }
func (r rawState) AskLevels() int                   { return len(r.asks) }
func (r rawState) AskAt(i int) market.PriceLevel    { return r.asks[i] }
func (r rawState) ChildOrders() []*order.ChildOrder { return r.orders }
func (r rawState) ActiveChildOrders() []*order.ChildOrder {
	var out []*order.ChildOrder
	for _, o := range r.orders {
		if o.Active() {
			out = append(out, o)
		}
	}
	return out
}
