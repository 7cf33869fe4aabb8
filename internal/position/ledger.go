package position

import (
	"github.com/amirphl/book-algo/internal/order"
	"github.com/shopspring/decimal"
)

// Ledger records buy lots in insertion order for FIFO profit matching.
type Ledger struct {
	lots []*order.ChildOrder
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends a lot.
func (l *Ledger) Record(lot *order.ChildOrder) {
	l.lots = append(l.lots, lot)
}

// Lots returns the recorded lots, oldest first. The slice is shared.
func (l *Ledger) Lots() []*order.ChildOrder { return l.lots }

func (l *Ledger) Len() int { return len(l.lots) }

// Quantity sums the full quantity of every lot.
func (l *Ledger) Quantity() int64 {
	var q int64
	for _, lot := range l.lots {
		q += lot.Quantity
	}
	return q
}

// OpenQuantity sums what has not been consumed by Realize.
func (l *Ledger) OpenQuantity() int64 {
	var q int64
	for _, lot := range l.lots {
		q += lot.Remaining()
	}
	return q
}

// Profit prices a sale of quantity at price against the lots, oldest
// first, without touching them: repeated calls return the same value.
// Once the ledger runs out the rest of the sale is costed at zero.
func (l *Ledger) Profit(quantity, price int64) decimal.Decimal {
	var cost int64
	remaining := quantity
	for _, lot := range l.lots {
		if remaining <= 0 {
			break
		}
		take := min(remaining, lot.Quantity)
		cost += take * lot.Price
		remaining -= take
	}
	return decimal.NewFromInt(price*quantity - cost)
}

// Realize is Profit with consumption: each matched lot gets a fill at the
// sale price, so later sales only match what is left.
func (l *Ledger) Realize(quantity, price int64) decimal.Decimal {
	var cost int64
	remaining := quantity
	for _, lot := range l.lots {
		if remaining <= 0 {
			break
		}
		open := lot.Remaining()
		if open <= 0 {
			continue
		}
		take := min(remaining, open)
		// take is positive and within the lot's remaining quantity
		_ = lot.AddFill(take, price)
		cost += take * lot.Price
		remaining -= take
	}
	return decimal.NewFromInt(price*quantity - cost)
}

func (l *Ledger) Reset() {
	l.lots = nil
}
