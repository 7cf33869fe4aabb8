package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/amirphl/book-algo/internal/action"
	"go.uber.org/zap"
)

// PrintResult logs a replay summary followed by the strategy metrics in key
// order.
func PrintResult(log *zap.SugaredLogger, res Result) {
	log.Infof("Replay Results (%s, run %s):", res.Strategy, res.RunID)
	log.Infof("  Ticks=%d, Decisions=%d", res.Ticks, len(res.Decisions))
	log.Infof("  Creates=%d, Cancels=%d, NoActions=%d, Rejected=%d, Fills=%d",
		res.Creates, res.Cancels, res.NoActions, res.Rejected, res.Fills)

	if len(res.Metrics) == 0 {
		return
	}
	keys := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	log.Info("  Strategy Metrics:")
	for _, k := range keys {
		log.Infof("    %s: %.4f", k, res.Metrics[k])
	}
}

// SaveDecisions writes every decision of res to a CSV file.
func SaveDecisions(filename string, res Result) error {
	rows := [][]string{{"Tick", "Seq", "Kind", "Side", "Quantity", "Price", "OrderID", "Rejected"}}
	for _, d := range res.Decisions {
		row := []string{fmt.Sprintf("%d", d.Tick), fmt.Sprintf("%d", d.Seq), d.Action.Kind().String(), "", "", "", "", ""}
		switch v := d.Action.(type) {
		case action.CreateChildOrder:
			row[3] = v.Side.String()
			row[4] = fmt.Sprintf("%d", v.Quantity)
			row[5] = fmt.Sprintf("%d", v.Price)
		case action.CancelChildOrder:
			if v.Order != nil {
				row[6] = fmt.Sprintf("%d", v.Order.ID)
			}
		}
		if d.Rejected != nil {
			row[7] = d.Rejected.Error()
		}
		rows = append(rows, row)
	}
	return saveCSV(filename, rows)
}

func saveCSV(filename string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV file %s: %w", filename, err)
	}
	return nil
}
