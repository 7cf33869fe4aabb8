package strategy

import (
	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/indicator"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/amirphl/book-algo/internal/position"
	"github.com/amirphl/book-algo/internal/risk"
	"github.com/amirphl/book-algo/internal/sizing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IcebergVWAP buys below the book VWAP in iceberg slices, sells resting
// quantity above it and otherwise runs a stop-loss / take-profit pass.
type IcebergVWAP struct {
	symbol string
	params config.IcebergParams
	exit   risk.ExitPolicy
	log    *zap.SugaredLogger

	account     *position.Account
	sma         *indicator.RollingSMA
	ledger      *position.Ledger
	ids         order.IDGenerator
	totalProfit decimal.Decimal

	lastVWAP float64
	lastSMA  float64
}

func NewIcebergVWAP(symbol string, params config.IcebergParams, opts ...Option) *IcebergVWAP {
	o := buildOptions(opts)
	return &IcebergVWAP{
		symbol:  symbol,
		params:  params,
		exit:    risk.NewExitPolicy(params.StopLoss, params.TakeProfit, false),
		log:     o.log,
		account: position.NewAccount(decimal.NewFromFloat(params.InitialCapital)),
		sma:     indicator.NewRollingSMA(params.SMAPeriod),
		ledger:  position.NewLedger(),
	}
}

func (s *IcebergVWAP) Name() string { return "IcebergVWAP" }

func (s *IcebergVWAP) Evaluate(state market.State) action.Action {
	s.log.Debugf("Strategy | [%s IcebergVWAP] %s", s.symbol, market.Render(state))

	ask, ok := market.BestAsk(state)
	if !ok {
		s.log.Infof("Strategy | [%s IcebergVWAP] No ask levels available", s.symbol)
		return action.None
	}
	bid, hasBid := market.BestBid(state)

	s.lastVWAP = indicator.VWAP(state)
	if hasBid {
		s.lastSMA = s.sma.Push(float64(bid.Price))
	}
	s.log.Infof("Strategy | [%s IcebergVWAP] VWAP: %.4f, SMA: %.4f, best ask: %d, best bid: %d",
		s.symbol, s.lastVWAP, s.lastSMA, ask.Price, bid.Price)

	active := state.ActiveChildOrders()
	if len(active) >= s.params.MaxActiveOrders {
		s.log.Infof("Strategy | [%s IcebergVWAP] %d active orders at cap %d, cancelling oldest %s",
			s.symbol, len(active), s.params.MaxActiveOrders, active[0])
		return action.Cancel(active[0])
	}

	if float64(ask.Price) < s.lastVWAP && s.account.Balance().IsPositive() {
		cost := s.buyCost(ask.Price)
		if err := s.account.Debit(cost); err == nil {
			s.log.Infof("Strategy | [%s IcebergVWAP] Placing buy at best ask %d, quantity %d, cost %s",
				s.symbol, ask.Price, s.params.TotalQuantity, cost)
			return s.placeIceberg(order.Buy, s.params.TotalQuantity, ask.Price)
		}
		s.log.Infof("Strategy | [%s IcebergVWAP] Insufficient capital for buy, available %s, cost %s",
			s.symbol, s.account.Balance(), cost)
	} else if hasBid && float64(bid.Price) > s.lastVWAP && len(active) > 0 {
		if a, ok := s.sell(active, bid.Price); ok {
			return a
		}
	}

	if a, ok := s.exit.Check(state); ok {
		s.log.Infof("Strategy | [%s IcebergVWAP] Risk pass returned %s", s.symbol, a)
		return a
	}
	return action.None
}

// buyCost is ask × TotalQuantity × (1 + TransactionCost) truncated to whole
// currency units.
func (s *IcebergVWAP) buyCost(ask int64) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return decimal.NewFromInt(ask).
		Mul(decimal.NewFromInt(s.params.TotalQuantity)).
		Mul(one.Add(decimal.NewFromFloat(s.params.TransactionCost))).
		Floor()
}

// placeIceberg records the slices of total in the ledger. The slices are not
// submitted, so the caller gets action.None.
func (s *IcebergVWAP) placeIceberg(side order.Side, total, price int64) action.Action {
	for _, qty := range sizing.Split(total, s.params.VisibleQuantity) {
		slice := order.New(side, s.ids.Next(), qty, price)
		s.ledger.Record(slice)
		s.log.Debugf("Strategy | [%s IcebergVWAP] Iceberg slice %s", s.symbol, slice)
	}
	s.log.Infof("Strategy | [%s IcebergVWAP] Iceberg order created: %s %d @ %d", s.symbol, side, total, price)
	return action.None
}

func (s *IcebergVWAP) sell(active []*order.ChildOrder, bid int64) (action.Action, bool) {
	var sellable int64
	for _, o := range active {
		sellable += o.Remaining()
	}
	if sellable <= 0 {
		s.log.Infof("Strategy | [%s IcebergVWAP] No quantity available to sell", s.symbol)
		return nil, false
	}

	var profit decimal.Decimal
	if s.params.ConsumeLots {
		profit = s.ledger.Realize(sellable, bid)
	} else {
		profit = s.ledger.Profit(sellable, bid)
	}
	s.totalProfit = s.totalProfit.Add(profit)
	s.log.Infof("Strategy | [%s IcebergVWAP] Selling %d at %d, profit %s, total profit %s",
		s.symbol, sellable, bid, profit, s.totalProfit)
	return action.Create(order.Sell, sellable, bid), true
}

// Capital returns the remaining balance.
func (s *IcebergVWAP) Capital() decimal.Decimal { return s.account.Balance() }

// TotalProfit returns the realized profit so far.
func (s *IcebergVWAP) TotalProfit() decimal.Decimal { return s.totalProfit }

// Ledger exposes the buy ledger for inspection.
func (s *IcebergVWAP) Ledger() *position.Ledger { return s.ledger }

func (s *IcebergVWAP) PerformanceMetrics() map[string]float64 {
	return map[string]float64{
		"capital":         s.account.Balance().InexactFloat64(),
		"total_profit":    s.totalProfit.InexactFloat64(),
		"last_vwap":       s.lastVWAP,
		"last_sma":        s.lastSMA,
		"ledger_size":     float64(s.ledger.Len()),
		"ledger_quantity": float64(s.ledger.Quantity()),
	}
}

func (s *IcebergVWAP) Reset() {
	s.account.Reset()
	s.sma.Reset()
	s.ledger.Reset()
	s.ids.Reset()
	s.totalProfit = decimal.Zero
	s.lastVWAP = 0
	s.lastSMA = 0
}
