package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8, cfg.Scalper.LadderCap)
	assert.Equal(t, 0.05, cfg.Scalper.DeviationThreshold)
	assert.Equal(t, 0.95, cfg.Scalper.PriceFactor)
	assert.Equal(t, 21, cfg.Iceberg.MaxActiveOrders)
	assert.Equal(t, int64(100), cfg.Iceberg.TotalQuantity)
	assert.Equal(t, int64(20), cfg.Iceberg.VisibleQuantity)
	assert.Equal(t, 5, cfg.Iceberg.SMAPeriod)
	assert.Equal(t, 100000.0, cfg.Iceberg.InitialCapital)
	assert.False(t, cfg.Iceberg.ConsumeLots)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "martingale" }},
		{"zero actions per tick", func(c *Config) { c.MaxActionsPerTick = 0 }},
		{"zero ladder cap", func(c *Config) { c.Scalper.LadderCap = 0 }},
		{"negative deviation", func(c *Config) { c.Scalper.DeviationThreshold = -0.1 }},
		{"price factor above one", func(c *Config) { c.Scalper.PriceFactor = 1.5 }},
		{"scalper stop-loss of 100%", func(c *Config) { c.Scalper.StopLoss = 1 }},
		{"negative capital", func(c *Config) { c.Iceberg.InitialCapital = -1 }},
		{"zero max active orders", func(c *Config) { c.Iceberg.MaxActiveOrders = 0 }},
		{"negative transaction cost", func(c *Config) { c.Iceberg.TransactionCost = -0.001 }},
		{"zero visible quantity", func(c *Config) { c.Iceberg.VisibleQuantity = 0 }},
		{"zero sma period", func(c *Config) { c.Iceberg.SMAPeriod = 0 }},
		{"negative take-profit", func(c *Config) { c.Iceberg.TakeProfit = -0.05 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
strategy: iceberg-vwap
symbol: VOD.L
iceberg:
  max_active_orders: 10
  visible_quantity: 25
  consume_lots: true
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, StrategyIcebergVWAP, cfg.Strategy)
	assert.Equal(t, "VOD.L", cfg.Symbol)
	assert.Equal(t, 10, cfg.Iceberg.MaxActiveOrders)
	assert.Equal(t, int64(25), cfg.Iceberg.VisibleQuantity)
	assert.True(t, cfg.Iceberg.ConsumeLots)
	// untouched keys keep their defaults
	assert.Equal(t, int64(100), cfg.Iceberg.TotalQuantity)
	assert.Equal(t, 8, cfg.Scalper.LadderCap)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeFile(t, "bad.yaml", "scalper: [1, 2"))
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	unsetEnv(t, "BOOK_ALGO_STRATEGY")
	unsetEnv(t, "BOOK_ALGO_LOG_FILE")
	unsetEnv(t, "BOOK_ALGO_INITIAL_CAPITAL")
	unsetEnv(t, "DB_CONN_STR")

	cfgPath := writeFile(t, "config.yaml", "strategy: scalper\nsymbol: FILE\n")
	envPath := writeFile(t, "test.env", "BOOK_ALGO_STRATEGY=iceberg-vwap\nDB_CONN_STR=postgres://env\nBOOK_ALGO_INITIAL_CAPITAL=5000\n")

	cfg, err := Load([]string{
		"-config", cfgPath,
		"-env-file", envPath,
		"-symbol", "FLAG",
		"-max-actions", "4",
		"-decisions-csv", "out.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, StrategyIcebergVWAP, cfg.Strategy) // env beats file
	assert.Equal(t, "FLAG", cfg.Symbol)                // flag beats file
	assert.Equal(t, "postgres://env", cfg.DBConnStr)
	assert.Equal(t, 5000.0, cfg.Iceberg.InitialCapital)
	assert.Equal(t, 4, cfg.MaxActionsPerTick)
	assert.Equal(t, "out.csv", cfg.DecisionsCSV)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	unsetEnv(t, "BOOK_ALGO_STRATEGY")

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "none.env"), "-strategy", "scalper"})
	require.NoError(t, err)
	assert.Equal(t, StrategyScalper, cfg.Strategy)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	unsetEnv(t, "BOOK_ALGO_STRATEGY")

	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "none.env"), "-strategy", "grid"})
	assert.ErrorIs(t, err, ErrInvalid)
}
