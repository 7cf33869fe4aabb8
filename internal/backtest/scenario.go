package backtest

import (
	"errors"
	"fmt"
	"os"

	"github.com/amirphl/book-algo/internal/market"
	"gopkg.in/yaml.v3"
)

/*
Scenario YAML example:
name: "dip and recover"
symbol: "TEST"
ticks:
  - bids: [{price: 98, quantity: 100}]
    asks: [{price: 100, quantity: 100}, {price: 105, quantity: 50}]
  - bids: [{price: 101, quantity: 100}]
    asks: [{price: 102, quantity: 100}]
    fills:
      - {order_id: 1, quantity: 100, price: 100}
*/

var ErrInvalidScenario = errors.New("invalid scenario")

// Fill is a scripted execution applied to a resting child order before the
// tick is evaluated.
type Fill struct {
	OrderID  int64 `yaml:"order_id"`
	Quantity int64 `yaml:"quantity"`
	Price    int64 `yaml:"price"`
}

// Tick is one book update. Levels are best first.
type Tick struct {
	Bids  []market.PriceLevel `yaml:"bids"`
	Asks  []market.PriceLevel `yaml:"asks"`
	Fills []Fill              `yaml:"fills"`
}

type Scenario struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
	Ticks  []Tick `yaml:"ticks"`
}

func (s *Scenario) Validate() error {
	if len(s.Ticks) == 0 {
		return fmt.Errorf("%w: no ticks", ErrInvalidScenario)
	}
	for i, t := range s.Ticks {
		for _, f := range t.Fills {
			if f.OrderID <= 0 {
				return fmt.Errorf("%w: tick %d: fill references order id %d", ErrInvalidScenario, i, f.OrderID)
			}
		}
	}
	return nil
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}
