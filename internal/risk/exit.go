// Package risk
package risk

import (
	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/shopspring/decimal"
)

// Trigger is the outcome of comparing a market price to an order's exit
// levels.
type Trigger int8

const (
	NoTrigger Trigger = iota
	StopLoss
	TakeProfit
)

func (t Trigger) String() string {
	switch t {
	case StopLoss:
		return "stop-loss"
	case TakeProfit:
		return "take-profit"
	default:
		return "none"
	}
}

// ExitPolicy holds percentage stop-loss / take-profit thresholds expressed
// as fractions (0.03 is 3%).
type ExitPolicy struct {
	StopLossPct   decimal.Decimal
	TakeProfitPct decimal.Decimal
	// TickRounding truncates the offsets to whole ticks before applying
	// them: entry ± int(entry × pct).
	TickRounding bool
}

func NewExitPolicy(stopLossPct, takeProfitPct float64, tickRounding bool) ExitPolicy {
	return ExitPolicy{
		StopLossPct:   decimal.NewFromFloat(stopLossPct),
		TakeProfitPct: decimal.NewFromFloat(takeProfitPct),
		TickRounding:  tickRounding,
	}
}

// Levels returns the stop-loss and take-profit prices for an entry price.
func (p ExitPolicy) Levels(entry int64) (stopLoss, takeProfit decimal.Decimal) {
	e := decimal.NewFromInt(entry)
	if p.TickRounding {
		return e.Sub(e.Mul(p.StopLossPct).Truncate(0)), e.Add(e.Mul(p.TakeProfitPct).Truncate(0))
	}
	one := decimal.NewFromInt(1)
	return e.Mul(one.Sub(p.StopLossPct)), e.Mul(one.Add(p.TakeProfitPct))
}

// Evaluate classifies price against the exit levels of entry. Stop-loss
// wins when both would fire.
func (p ExitPolicy) Evaluate(entry, price int64) Trigger {
	stopLoss, takeProfit := p.Levels(entry)
	px := decimal.NewFromInt(price)
	switch {
	case px.LessThanOrEqual(stopLoss):
		return StopLoss
	case px.GreaterThanOrEqual(takeProfit):
		return TakeProfit
	default:
		return NoTrigger
	}
}

// Check walks the active orders in creation order and returns the first
// exit it finds: stop-loss cancels the order, take-profit sells the
// remaining quantity at the best bid. An order that hits take-profit with
// nothing left to sell is skipped.
//
// The boolean is false when the policy has no opinion (no bid, no active
// orders, nothing triggered). That is different from action.None, which is
// a decision.
func (p ExitPolicy) Check(s market.State) (action.Action, bool) {
	bid, ok := market.BestBid(s)
	if !ok {
		return nil, false
	}
	for _, o := range s.ActiveChildOrders() {
		switch p.Evaluate(o.Price, bid.Price) {
		case StopLoss:
			return action.Cancel(o), true
		case TakeProfit:
			if remaining := o.Remaining(); remaining > 0 {
				return action.Create(order.Sell, remaining, bid.Price), true
			}
		}
	}
	return nil, false
}

// Exit treats o as executed at its own price against the current bid: the
// unfilled remainder is filled at the order price, then the order is
// cancelled if bid has reached either exit level. A non-positive order
// price returns action.None before anything is touched.
func (p ExitPolicy) Exit(o *order.ChildOrder, bid int64) (action.Action, Trigger) {
	if o.Price <= 0 {
		return action.None, NoTrigger
	}
	if remaining := o.Remaining(); remaining > 0 {
		// a terminal order keeps its fills; the exit check still applies
		_ = o.AddFill(remaining, o.Price)
	}
	trigger := p.Evaluate(o.Price, bid)
	if trigger == NoTrigger {
		return action.None, NoTrigger
	}
	return action.Cancel(o), trigger
}
