// Package order
package order

import (
	"errors"
	"fmt"
	"strings"
)

// Side is the direction of a child order.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// State is the lifecycle state of a child order.
type State int8

const (
	Pending State = iota
	Acked
	Filled
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Acked:
		return "ACKED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == Filled || s == Cancelled
}

var (
	ErrTerminal    = errors.New("order is in a terminal state")
	ErrOverfill    = errors.New("fill exceeds remaining quantity")
	ErrInvalidFill = errors.New("fill quantity must be positive")
	ErrNotPending  = errors.New("order is not pending")
	ErrNotAcked    = errors.New("order is not acked")
)

// Fill is a single execution against a child order.
type Fill struct {
	Quantity int64
	Price    int64
}

// ChildOrder is an order created by a strategy and owned by it until the
// matching engine transitions its state. Fills are append-only.
type ChildOrder struct {
	Side           Side
	ID             int64
	Quantity       int64
	Price          int64
	State          State
	FilledQuantity int64
	Fills          []Fill
}

// New creates a PENDING child order.
func New(side Side, id, quantity, price int64) *ChildOrder {
	return &ChildOrder{
		Side:     side,
		ID:       id,
		Quantity: quantity,
		Price:    price,
		State:    Pending,
	}
}

// Remaining is the unfilled quantity.
func (o *ChildOrder) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}

// Active reports whether the order is resting in the book.
func (o *ChildOrder) Active() bool {
	return o.State == Acked
}

// Ack moves a PENDING order to ACKED.
func (o *ChildOrder) Ack() error {
	if o.State != Pending {
		return fmt.Errorf("ack order %d in state %s: %w", o.ID, o.State, ErrNotPending)
	}
	o.State = Acked
	return nil
}

// Cancel moves an ACKED order to CANCELLED.
func (o *ChildOrder) Cancel() error {
	if o.State.Terminal() {
		return fmt.Errorf("cancel order %d in state %s: %w", o.ID, o.State, ErrTerminal)
	}
	if o.State != Acked {
		return fmt.Errorf("cancel order %d in state %s: %w", o.ID, o.State, ErrNotAcked)
	}
	o.State = Cancelled
	return nil
}

// AddFill records an execution. The order becomes FILLED once the
// cumulative filled quantity reaches its quantity.
func (o *ChildOrder) AddFill(quantity, price int64) error {
	if o.State.Terminal() {
		return fmt.Errorf("fill order %d in state %s: %w", o.ID, o.State, ErrTerminal)
	}
	if quantity <= 0 {
		return fmt.Errorf("fill order %d with %d: %w", o.ID, quantity, ErrInvalidFill)
	}
	if quantity > o.Remaining() {
		return fmt.Errorf("fill order %d with %d, remaining %d: %w", o.ID, quantity, o.Remaining(), ErrOverfill)
	}
	o.Fills = append(o.Fills, Fill{Quantity: quantity, Price: price})
	o.FilledQuantity += quantity
	if o.FilledQuantity == o.Quantity {
		o.State = Filled
	}
	return nil
}

func (o *ChildOrder) String() string {
	return fmt.Sprintf("ChildOrder[id=%d %s %d@%d state=%s filled=%d]",
		o.ID, o.Side, o.Quantity, o.Price, o.State, o.FilledQuantity)
}

// IDGenerator hands out strictly increasing ids starting at 1.
// Not safe for concurrent use; each engine owns one.
type IDGenerator struct {
	next int64
}

func (g *IDGenerator) Next() int64 {
	g.next++
	return g.next
}

// Last returns the most recently issued id, 0 if none.
func (g *IDGenerator) Last() int64 { return g.next }

func (g *IDGenerator) Reset() { g.next = 0 }
