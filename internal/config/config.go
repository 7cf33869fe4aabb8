// Package config
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/amirphl/book-algo/internal/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:
strategy: "iceberg-vwap"
symbol: "TEST"
scenario: "scenarios/dip.yaml"
decisions_csv: "replay_decisions.csv"
max_actions_per_tick: 16
log_file: "logs/book-algo.log"
log_level: "info"
db_conn_str: "postgres://..."
scalper:
  ladder_cap: 8
  deviation_threshold: 0.05
  price_factor: 0.95
  stop_loss: 0.02
  take_profit: 0.02
iceberg:
  initial_capital: 100000
  max_active_orders: 21
  transaction_cost: 0.001
  total_quantity: 100
  visible_quantity: 20
  sma_period: 5
  stop_loss: 0.03
  take_profit: 0.05
  consume_lots: false
*/

const (
	StrategyScalper     = "scalper"
	StrategyIcebergVWAP = "iceberg-vwap"
)

var ErrInvalid = errors.New("invalid config")

// ScalperParams tune the ladder scalper. Percentages are fractions.
type ScalperParams struct {
	LadderCap          int     `yaml:"ladder_cap"`
	DeviationThreshold float64 `yaml:"deviation_threshold"`
	PriceFactor        float64 `yaml:"price_factor"`
	StopLoss           float64 `yaml:"stop_loss"`
	TakeProfit         float64 `yaml:"take_profit"`
}

// IcebergParams tune the iceberg/VWAP engine. Percentages are fractions.
type IcebergParams struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	MaxActiveOrders int     `yaml:"max_active_orders"`
	TransactionCost float64 `yaml:"transaction_cost"`
	TotalQuantity   int64   `yaml:"total_quantity"`
	VisibleQuantity int64   `yaml:"visible_quantity"`
	SMAPeriod       int     `yaml:"sma_period"`
	StopLoss        float64 `yaml:"stop_loss"`
	TakeProfit      float64 `yaml:"take_profit"`
	ConsumeLots     bool    `yaml:"consume_lots"`
}

type Config struct {
	Strategy          string        `yaml:"strategy"`
	Symbol            string        `yaml:"symbol"`
	Scenario          string        `yaml:"scenario"`
	DecisionsCSV      string        `yaml:"decisions_csv"`
	MaxActionsPerTick int           `yaml:"max_actions_per_tick"`
	LogFile           string        `yaml:"log_file"`
	LogLevel          string        `yaml:"log_level"`
	DBConnStr         string        `yaml:"db_conn_str"`
	Scalper           ScalperParams `yaml:"scalper"`
	Iceberg           IcebergParams `yaml:"iceberg"`
}

// Default returns the reference parameters of both engines.
func Default() Config {
	return Config{
		Strategy:          StrategyScalper,
		Symbol:            "TEST",
		MaxActionsPerTick: 16,
		LogLevel:          "info",
		Scalper:           DefaultScalper(),
		Iceberg:           DefaultIceberg(),
	}
}

func DefaultScalper() ScalperParams {
	return ScalperParams{
		LadderCap:          8,
		DeviationThreshold: 0.05,
		PriceFactor:        0.95,
		StopLoss:           0.02,
		TakeProfit:         0.02,
	}
}

func DefaultIceberg() IcebergParams {
	return IcebergParams{
		InitialCapital:  100000,
		MaxActiveOrders: 21,
		TransactionCost: 0.001,
		TotalQuantity:   100,
		VisibleQuantity: 20,
		SMAPeriod:       5,
		StopLoss:        0.03,
		TakeProfit:      0.05,
	}
}

// Validate checks ranges; the returned error wraps ErrInvalid.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyScalper, StrategyIcebergVWAP:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalid, c.Strategy)
	}
	if c.MaxActionsPerTick <= 0 {
		return fmt.Errorf("%w: max_actions_per_tick must be positive, got %d", ErrInvalid, c.MaxActionsPerTick)
	}
	if err := c.Scalper.Validate(); err != nil {
		return err
	}
	return c.Iceberg.Validate()
}

func (p ScalperParams) Validate() error {
	if p.LadderCap <= 0 {
		return fmt.Errorf("%w: scalper.ladder_cap must be positive, got %d", ErrInvalid, p.LadderCap)
	}
	if p.DeviationThreshold < 0 {
		return fmt.Errorf("%w: scalper.deviation_threshold must not be negative", ErrInvalid)
	}
	if p.PriceFactor <= 0 || p.PriceFactor > 1 {
		return fmt.Errorf("%w: scalper.price_factor must be in (0, 1], got %v", ErrInvalid, p.PriceFactor)
	}
	if err := validatePercent("scalper.stop_loss", p.StopLoss); err != nil {
		return err
	}
	return validatePercent("scalper.take_profit", p.TakeProfit)
}

func (p IcebergParams) Validate() error {
	if p.InitialCapital < 0 {
		return fmt.Errorf("%w: iceberg.initial_capital must not be negative", ErrInvalid)
	}
	if p.MaxActiveOrders <= 0 {
		return fmt.Errorf("%w: iceberg.max_active_orders must be positive, got %d", ErrInvalid, p.MaxActiveOrders)
	}
	if p.TransactionCost < 0 {
		return fmt.Errorf("%w: iceberg.transaction_cost must not be negative", ErrInvalid)
	}
	if p.TotalQuantity <= 0 || p.VisibleQuantity <= 0 {
		return fmt.Errorf("%w: iceberg quantities must be positive (total %d, visible %d)", ErrInvalid, p.TotalQuantity, p.VisibleQuantity)
	}
	if p.SMAPeriod <= 0 {
		return fmt.Errorf("%w: iceberg.sma_period must be positive, got %d", ErrInvalid, p.SMAPeriod)
	}
	if err := validatePercent("iceberg.stop_loss", p.StopLoss); err != nil {
		return err
	}
	return validatePercent("iceberg.take_profit", p.TakeProfit)
}

func validatePercent(name string, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("%w: %s must be in [0, 1), got %v", ErrInvalid, name, v)
	}
	return nil
}

// LoadFile overlays a YAML file on top of Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load builds a Config from, in increasing priority: defaults, the YAML file
// named by -config, environment (the -env-file dotenv is read if present) and
// explicit flags.
func Load(args []string) (Config, error) {
	fset := flag.NewFlagSet("book-algo", flag.ContinueOnError)
	configFile := fset.String("config", "", "Path to YAML config file")
	strategyName := fset.String("strategy", "", "Strategy: scalper or iceberg-vwap")
	symbol := fset.String("symbol", "", "Instrument symbol")
	scenario := fset.String("scenario", "", "Path to YAML tick scenario to replay")
	decisionsCSV := fset.String("decisions-csv", "", "Write replay decisions to this CSV file")
	maxActions := fset.Int("max-actions", 0, "Maximum evaluations per tick")
	logFile := fset.String("log-file", "", "Also write JSON logs to this file")
	logLevel := fset.String("log-level", "", "Log level: debug, info, warn, error")
	dbConnStr := fset.String("db", "", "Postgres connection string for the decision journal")
	envFile := fset.String("env-file", ".env", "Optional dotenv file")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	cfg := Default()
	if *configFile != "" {
		var err error
		if cfg, err = LoadFile(*configFile); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if *strategyName != "" {
		cfg.Strategy = *strategyName
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *scenario != "" {
		cfg.Scenario = *scenario
	}
	if *decisionsCSV != "" {
		cfg.DecisionsCSV = *decisionsCSV
	}
	if *maxActions > 0 {
		cfg.MaxActionsPerTick = *maxActions
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dbConnStr != "" {
		cfg.DBConnStr = *dbConnStr
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOOK_ALGO_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("BOOK_ALGO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		cfg.DBConnStr = v
	}
	if v := os.Getenv("BOOK_ALGO_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Iceberg.InitialCapital = f
		} else {
			utils.GetLogger().Warnf("config | ignoring BOOK_ALGO_INITIAL_CAPITAL=%q: %v", v, err)
		}
	}
}

// MustLoadConfig loads the process configuration or exits.
func MustLoadConfig() Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		utils.GetLogger().Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
