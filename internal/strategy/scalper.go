package strategy

import (
	"math"

	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/amirphl/book-algo/internal/risk"
	"go.uber.org/zap"
)

// Scalper builds a ladder of buy orders at the far touch, then recycles it
// by cancelling the oldest resting order.
type Scalper struct {
	symbol string
	params config.ScalperParams
	exit   risk.ExitPolicy
	log    *zap.SugaredLogger

	created   int
	adjusted  int
	cancelled int
	exits     int
}

func NewScalper(symbol string, params config.ScalperParams, opts ...Option) *Scalper {
	o := buildOptions(opts)
	return &Scalper{
		symbol: symbol,
		params: params,
		exit:   risk.NewExitPolicy(params.StopLoss, params.TakeProfit, true),
		log:    o.log,
	}
}

func (s *Scalper) Name() string { return "Scalper" }

func (s *Scalper) Evaluate(state market.State) action.Action {
	s.log.Debugf("Strategy | [%s Scalper] %s", s.symbol, market.Render(state))

	ask, ok := market.BestAsk(state)
	if !ok {
		s.log.Infof("Strategy | [%s Scalper] No ask levels available", s.symbol)
		return action.None
	}

	total := len(state.ChildOrders())
	if total < s.params.LadderCap {
		bid, ok := market.BestBid(state)
		if !ok {
			s.log.Infof("Strategy | [%s Scalper] No bid level, cannot price against the midpoint", s.symbol)
			return action.None
		}
		price := s.adjustPrice(ask.Price, bid.Price)
		s.created++
		s.log.Infof("Strategy | [%s Scalper] Have %d children, want %d, sniping far touch with %d @ %d",
			s.symbol, total, s.params.LadderCap, ask.Quantity, price)
		return action.Create(order.Buy, ask.Quantity, price)
	}

	active := state.ActiveChildOrders()
	if len(active) > 0 {
		s.cancelled++
		s.log.Infof("Strategy | [%s Scalper] Cancelling oldest active order %s", s.symbol, active[0])
		return action.Cancel(active[0])
	}

	// Unreachable while cancellation above takes every active order first;
	// kept so the ladder still exits if that rule is relaxed.
	if bid, ok := market.BestBid(state); ok {
		for _, o := range active {
			if bid.Price >= o.Price {
				return s.Execute(o, bid.Price)
			}
		}
	}
	return action.None
}

// adjustPrice lowers the buy price by PriceFactor when the ask sits more than
// DeviationThreshold away from the integer bid/ask midpoint.
func (s *Scalper) adjustPrice(ask, bid int64) int64 {
	mean := (ask + bid) / 2
	if mean <= 0 {
		return ask
	}
	deviation := math.Abs(float64(ask-mean)) / float64(mean)
	if deviation <= s.params.DeviationThreshold {
		return ask
	}
	s.adjusted++
	adjusted := int64(float64(ask) * s.params.PriceFactor)
	s.log.Infof("Strategy | [%s Scalper] Ask %d deviates %.4f from mean %d, adjusting price to %d",
		s.symbol, ask, deviation, mean, adjusted)
	return adjusted
}

// Execute treats o as matched by the market bid and applies the tick-rounded
// exit rules to it.
func (s *Scalper) Execute(o *order.ChildOrder, bid int64) action.Action {
	if o.Price <= 0 {
		s.log.Warnf("Strategy | [%s Scalper] Ignoring execution of %s at non-positive price", s.symbol, o)
		return action.None
	}
	sl, tp := s.exit.Levels(o.Price)
	s.log.Infof("Strategy | [%s Scalper] Order %d filled at %d, take profit %s, stop loss %s",
		s.symbol, o.ID, o.Price, tp, sl)

	a, trigger := s.exit.Exit(o, bid)
	if trigger != risk.NoTrigger {
		s.exits++
		s.log.Infof("Strategy | [%s Scalper] Triggering %s at bid %d", s.symbol, trigger, bid)
	}
	return a
}

func (s *Scalper) PerformanceMetrics() map[string]float64 {
	return map[string]float64{
		"orders_created":   float64(s.created),
		"price_adjusted":   float64(s.adjusted),
		"orders_cancelled": float64(s.cancelled),
		"exits":            float64(s.exits),
	}
}

func (s *Scalper) Reset() {
	s.created = 0
	s.adjusted = 0
	s.cancelled = 0
	s.exits = 0
}
