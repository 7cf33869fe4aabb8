// Package strategy holds the order-book decision engines.
package strategy

import (
	"fmt"

	"github.com/amirphl/book-algo/internal/action"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/market"
	"github.com/amirphl/book-algo/internal/utils"
	"go.uber.org/zap"
)

// Strategy is the interface for all order-book strategies. Evaluate is
// called once per book update and returns exactly one action. Engines keep
// state between calls and are not safe for concurrent use; run one per
// instrument.
type Strategy interface {
	Name() string
	Evaluate(state market.State) action.Action
	PerformanceMetrics() map[string]float64
	// Reset restores the engine to its freshly constructed state.
	Reset()
}

type options struct {
	log *zap.SugaredLogger
}

type Option func(*options)

// WithLogger sets the engine logger. The process logger is used otherwise.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = utils.GetLogger()
	}
	return o
}

// New builds the engine named by cfg.Strategy.
func New(cfg config.Config, opts ...Option) (Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyScalper:
		return NewScalper(cfg.Symbol, cfg.Scalper, opts...), nil
	case config.StrategyIcebergVWAP:
		return NewIcebergVWAP(cfg.Symbol, cfg.Iceberg, opts...), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", cfg.Strategy, config.ErrInvalid)
	}
}
