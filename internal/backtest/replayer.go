// Package backtest replays scripted order-book ticks through a strategy and
// plays the matching engine for its actions.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/journal"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/order"
	"github.com/amirphl/book-algo/internal/strategy"
	"github.com/amirphl/book-algo/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrRejected = errors.New("action rejected")

// Decision is one strategy evaluation during a replay.
type Decision struct {
	Tick     int
	Seq      int
	Action   action.Action
	Rejected error
}

// Result summarizes a replay.
type Result struct {
	RunID     uuid.UUID
	Strategy  string
	Ticks     int
	Creates   int
	Cancels   int
	NoActions int
	Rejected  int
	Fills     int
	Decisions []Decision
	Metrics   map[string]float64
}

// Replayer drives a strategy over a scenario. Per tick it installs the book
// levels, applies scripted fills and then evaluates until the strategy
// returns NoAction or maxActions evaluations have run. Created orders are
// acknowledged immediately.
type Replayer struct {
	strat      strategy.Strategy
	journal    journal.Journaler
	maxActions int
	book       *market.Book
	ids        order.IDGenerator
	log        *zap.SugaredLogger
	runID      uuid.UUID
}

// NewReplayer creates a replayer. j may be nil to skip journaling.
func NewReplayer(strat strategy.Strategy, symbol string, maxActions int, j journal.Journaler) *Replayer {
	if maxActions < 1 {
		maxActions = 1
	}
	return &Replayer{
		strat:      strat,
		journal:    j,
		maxActions: maxActions,
		book:       market.NewBook(symbol),
		log:        utils.GetLogger(),
	}
}

// SetLogger replaces the replay logger.
func (r *Replayer) SetLogger(l *zap.SugaredLogger) { r.log = l }

// Book returns the simulated book.
func (r *Replayer) Book() *market.Book { return r.book }

func (r *Replayer) Run(ctx context.Context, sc *Scenario) (Result, error) {
	r.runID = uuid.New()
	res := Result{RunID: r.runID, Strategy: r.strat.Name()}

	r.record(ctx, journal.TypeRun, "replay started", map[string]any{
		"scenario": sc.Name,
		"strategy": r.strat.Name(),
		"ticks":    len(sc.Ticks),
	})
	r.log.Infof("Replay | [%s] Starting run %s of %q with %d ticks", r.strat.Name(), r.runID, sc.Name, len(sc.Ticks))

	for i, tick := range sc.Ticks {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("replay interrupted at tick %d: %w", i, err)
		}
		if err := r.book.SetLevels(tick.Bids, tick.Asks); err != nil {
			return res, fmt.Errorf("tick %d: %w", i, err)
		}
		r.applyFills(ctx, i, tick.Fills, &res)
		r.evaluate(ctx, i, &res)
		res.Ticks++
	}

	res.Metrics = r.strat.PerformanceMetrics()
	r.record(ctx, journal.TypeRun, "replay finished", map[string]any{
		"creates":  res.Creates,
		"cancels":  res.Cancels,
		"rejected": res.Rejected,
		"fills":    res.Fills,
	})
	return res, nil
}

func (r *Replayer) applyFills(ctx context.Context, tick int, fills []Fill, res *Result) {
	for _, f := range fills {
		o, ok := r.book.Order(f.OrderID)
		if !ok {
			r.reject(ctx, tick, fmt.Sprintf("fill for unknown order %d", f.OrderID), res)
			continue
		}
		if err := o.AddFill(f.Quantity, f.Price); err != nil {
			r.reject(ctx, tick, err.Error(), res)
			continue
		}
		res.Fills++
		r.log.Infof("Replay | [%s] Tick %d: filled %d @ %d on %s", r.strat.Name(), tick, f.Quantity, f.Price, o)
		r.record(ctx, journal.TypeFill, o.String(), map[string]any{
			"tick":     tick,
			"order_id": o.ID,
			"quantity": f.Quantity,
			"price":    f.Price,
			"state":    o.State.String(),
		})
	}
}

func (r *Replayer) evaluate(ctx context.Context, tick int, res *Result) {
	for seq := 0; seq < r.maxActions; seq++ {
		a := r.strat.Evaluate(r.book)
		d := Decision{Tick: tick, Seq: seq, Action: a}

		switch v := a.(type) {
		case action.CreateChildOrder:
			res.Creates++
			d.Rejected = r.create(v)
		case action.CancelChildOrder:
			res.Cancels++
			d.Rejected = r.cancel(v)
		case action.NoAction:
			res.NoActions++
		}

		res.Decisions = append(res.Decisions, d)
		r.record(ctx, journal.TypeDecision, a.String(), decisionData(d))
		if d.Rejected != nil {
			r.reject(ctx, tick, d.Rejected.Error(), res)
		}
		if a.Kind() == action.KindNone {
			return
		}
	}
	r.log.Debugf("Replay | [%s] Tick %d: stopped after %d actions", r.strat.Name(), tick, r.maxActions)
}

func (r *Replayer) create(a action.CreateChildOrder) error {
	if a.Quantity <= 0 || a.Price <= 0 {
		return fmt.Errorf("%w: %s", ErrRejected, a)
	}
	o := order.New(a.Side, r.ids.Next(), a.Quantity, a.Price)
	if err := o.Ack(); err != nil {
		return err
	}
	r.book.AddOrder(o)
	return nil
}

func (r *Replayer) cancel(a action.CancelChildOrder) error {
	if a.Order == nil {
		return fmt.Errorf("%w: cancel without an order", ErrRejected)
	}
	if err := a.Order.Cancel(); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

func (r *Replayer) reject(ctx context.Context, tick int, reason string, res *Result) {
	res.Rejected++
	r.log.Warnf("Replay | [%s] Tick %d: %s", r.strat.Name(), tick, reason)
	r.record(ctx, journal.TypeReject, reason, map[string]any{"tick": tick})
}

func decisionData(d Decision) map[string]any {
	data := map[string]any{
		"tick": d.Tick,
		"seq":  d.Seq,
		"kind": d.Action.Kind().String(),
	}
	switch v := d.Action.(type) {
	case action.CreateChildOrder:
		data["side"] = v.Side.String()
		data["quantity"] = v.Quantity
		data["price"] = v.Price
	case action.CancelChildOrder:
		if v.Order != nil {
			data["order_id"] = v.Order.ID
		}
	}
	if d.Rejected != nil {
		data["rejected"] = d.Rejected.Error()
	}
	return data
}

// record journals an event tagged with the run id. Journal failures are
// logged and do not stop the replay.
func (r *Replayer) record(ctx context.Context, eventType, description string, data map[string]any) {
	if r.journal == nil {
		return
	}
	data["run_id"] = r.runID.String()
	err := r.journal.LogEvent(ctx, journal.Event{
		Time:        time.Now().UTC(),
		Type:        eventType,
		Description: description,
		Data:        data,
	})
	if err != nil {
		r.log.Warnf("Replay | [%s] Failed to journal %s event: %v", r.strat.Name(), eventType, err)
	}
}
