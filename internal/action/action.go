// Package action
package action

import (
	"fmt"

	"github.com/amirphl/book-algo/internal/order"
)

// Kind identifies the variant of an Action.
type Kind int8

const (
	KindNone Kind = iota
	KindCreate
	KindCancel
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoAction"
	case KindCreate:
		return "CreateChildOrder"
	case KindCancel:
		return "CancelChildOrder"
	default:
		return fmt.Sprintf("Kind(%d)", int8(k))
	}
}

// Action is the single request a strategy returns per evaluation. It is a
// closed set: CreateChildOrder, CancelChildOrder and NoAction.
type Action interface {
	Kind() Kind
	String() string
	sealed()
}

// CreateChildOrder asks the matching engine to place a new resting order.
type CreateChildOrder struct {
	Side     order.Side
	Quantity int64
	Price    int64
}

func (CreateChildOrder) Kind() Kind { return KindCreate }
func (CreateChildOrder) sealed()    {}

func (a CreateChildOrder) String() string {
	return fmt.Sprintf("CreateChildOrder[%s %d@%d]", a.Side, a.Quantity, a.Price)
}

// CancelChildOrder asks the matching engine to cancel Order.
type CancelChildOrder struct {
	Order *order.ChildOrder
}

func (CancelChildOrder) Kind() Kind { return KindCancel }
func (CancelChildOrder) sealed()    {}

func (a CancelChildOrder) String() string {
	if a.Order == nil {
		return "CancelChildOrder[<nil>]"
	}
	return fmt.Sprintf("CancelChildOrder[id=%d]", a.Order.ID)
}

// NoAction is an intentional decision to do nothing this cycle.
type NoAction struct{}

func (NoAction) Kind() Kind     { return KindNone }
func (NoAction) sealed()        {}
func (NoAction) String() string { return "NoAction" }

// None is the shared NoAction value.
var None Action = NoAction{}

func Create(side order.Side, quantity, price int64) Action {
	return CreateChildOrder{Side: side, Quantity: quantity, Price: price}
}

func Cancel(o *order.ChildOrder) Action {
	return CancelChildOrder{Order: o}
}
