// Package market
package market

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/book-algo/internal/order"
)

// PriceLevel is one aggregated level of the book. Price is in integer ticks.
type PriceLevel struct {
	Price    int64 `yaml:"price" json:"price"`
	Quantity int64 `yaml:"quantity" json:"quantity"`
}

// State is the read-only snapshot a strategy evaluates. Levels are indexed
// best-first; BidAt and AskAt must only be called with an index below the
// matching level count.
type State interface {
	Symbol() string
	BidLevels() int
	BidAt(i int) PriceLevel
	AskLevels() int
	AskAt(i int) PriceLevel
	// ChildOrders returns every child order ever created, in creation order.
	ChildOrders() []*order.ChildOrder
	// ActiveChildOrders returns the ACKED subset, in creation order.
	ActiveChildOrders() []*order.ChildOrder
}

// BestBid returns the top bid level, false if the bid side is empty.
func BestBid(s State) (PriceLevel, bool) {
	if s.BidLevels() == 0 {
		return PriceLevel{}, false
	}
	return s.BidAt(0), true
}

// BestAsk returns the top ask level (far touch for a buyer), false if the
// ask side is empty.
func BestAsk(s State) (PriceLevel, bool) {
	if s.AskLevels() == 0 {
		return PriceLevel{}, false
	}
	return s.AskAt(0), true
}

var ErrInvalidLevel = errors.New("invalid price level")

// Book is an in-memory State. The replay driver owns it and mutates it
// between evaluations; strategies only read it.
type Book struct {
	symbol string
	bids   []PriceLevel
	asks   []PriceLevel
	orders []*order.ChildOrder
}

func NewBook(symbol string) *Book {
	return &Book{symbol: symbol}
}

// SetLevels replaces both sides of the book. Levels are copied.
func (b *Book) SetLevels(bids, asks []PriceLevel) error {
	for i, l := range bids {
		if err := validateLevel(l); err != nil {
			return fmt.Errorf("bid level %d: %w", i, err)
		}
	}
	for i, l := range asks {
		if err := validateLevel(l); err != nil {
			return fmt.Errorf("ask level %d: %w", i, err)
		}
	}
	b.bids = append(b.bids[:0], bids...)
	b.asks = append(b.asks[:0], asks...)
	return nil
}

func validateLevel(l PriceLevel) error {
	if l.Quantity < 0 {
		return fmt.Errorf("quantity %d: %w", l.Quantity, ErrInvalidLevel)
	}
	if l.Price < 0 {
		return fmt.Errorf("price %d: %w", l.Price, ErrInvalidLevel)
	}
	return nil
}

// AddOrder appends a child order; creation order is preserved.
func (b *Book) AddOrder(o *order.ChildOrder) {
	b.orders = append(b.orders, o)
}

// Order looks up a child order by id.
func (b *Book) Order(id int64) (*order.ChildOrder, bool) {
	for _, o := range b.orders {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

func (b *Book) Symbol() string                   { return b.symbol }
func (b *Book) BidLevels() int                   { return len(b.bids) }
func (b *Book) BidAt(i int) PriceLevel           { return b.bids[i] }
func (b *Book) AskLevels() int                   { return len(b.asks) }
func (b *Book) AskAt(i int) PriceLevel           { return b.asks[i] }
func (b *Book) ChildOrders() []*order.ChildOrder { return b.orders }

func (b *Book) ActiveChildOrders() []*order.ChildOrder {
	var active []*order.ChildOrder
	for _, o := range b.orders {
		if o.Active() {
			active = append(active, o)
		}
	}
	return active
}

// Render formats both sides of the book for diagnostics.
func Render(s State) string {
	var sb strings.Builder
	sb.WriteString("Current Order Book State:\n")
	for i := 0; i < s.BidLevels(); i++ {
		l := s.BidAt(i)
		fmt.Fprintf(&sb, "BID: %d @ %d\n", l.Price, l.Quantity)
	}
	for i := 0; i < s.AskLevels(); i++ {
		l := s.AskAt(i)
		fmt.Fprintf(&sb, "ASK: %d @ %d\n", l.Price, l.Quantity)
	}
	return sb.String()
}
