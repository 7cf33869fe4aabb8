package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/book-algo/internal/backtest"
	"github.com/amirphl/book-algo/internal/config"
	"github.com/amirphl/book-algo/internal/journal"
	"github.com/amirphl/book-algo/internal/strategy"
	"github.com/amirphl/book-algo/internal/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoadConfig()

	log := utils.GetLogger()
	if cfg.LogFile != "" {
		l, err := utils.InitFileLogger(cfg.LogFile, utils.ParseLevel(cfg.LogLevel))
		if err != nil {
			log.Fatalf("Failed to initialize file logger: %v", err)
		}
		log = l
	}
	defer log.Sync()

	log.Infof("Starting book-algo replay with strategy %s", cfg.Strategy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Infof("Received signal %v, stopping replay...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Scenario == "" {
		log.Fatalf("No scenario configured, pass -scenario or set scenario in the config file")
	}
	sc, err := backtest.LoadScenario(cfg.Scenario)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	symbol := cfg.Symbol
	if sc.Symbol != "" {
		symbol = sc.Symbol
	}
	cfg.Symbol = symbol

	strat, err := strategy.New(cfg, strategy.WithLogger(log))
	if err != nil {
		log.Fatalf("Failed to create strategy: %v", err)
	}

	j, closeJournal := openJournal(ctx, cfg, log)
	defer closeJournal()

	replayer := backtest.NewReplayer(strat, symbol, cfg.MaxActionsPerTick, j)
	replayer.SetLogger(log)

	start := time.Now()
	res, err := replayer.Run(ctx, sc)
	if err != nil {
		log.Errorf("Replay stopped: %v", err)
	}
	backtest.PrintResult(log, res)
	log.Infof("Replay finished in %s", time.Since(start))

	if cfg.DecisionsCSV != "" {
		if err := backtest.SaveDecisions(cfg.DecisionsCSV, res); err != nil {
			log.Errorf("Failed to save decisions: %v", err)
		} else {
			log.Infof("Saved decisions to %s", cfg.DecisionsCSV)
		}
	}
}

// openJournal connects the Postgres journal when a connection string is
// configured and falls back to the in-memory journal otherwise.
func openJournal(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (journal.Journaler, func()) {
	if cfg.DBConnStr == "" {
		log.Info("Journaling decisions in memory")
		return journal.NewMemory(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pg, err := journal.OpenPostgres(connectCtx, cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to open decision journal: %v", err)
	}
	log.Info("Journaling decisions to Postgres")
	return pg, func() {
		if err := pg.Close(); err != nil {
			log.Warnf("Failed to close decision journal: %v", err)
		}
	}
}
