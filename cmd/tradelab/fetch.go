package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/newthinker/tradelab/internal/collector"
	"github.com/newthinker/tradelab/internal/collector/binance"
	"github.com/newthinker/tradelab/internal/collector/yahoo"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fetchSource string
	fetchFrom   string
	fetchTo     string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <symbol>",
	Short: "Download daily history from a market data provider",
	Long: `Download daily OHLCV bars for one symbol and store them. Bars that fail
validation are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSource, "source", "yahoo", "data provider (binance, yahoo)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date YYYY-MM-DD (default one year ago)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date YYYY-MM-DD (default now)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	symbol := strings.TrimSpace(args[0])

	end := time.Now().UTC()
	if fetchTo != "" {
		t, err := core.ParseTimestamp(fetchTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}
	start := end.AddDate(-1, 0, 0)
	if fetchFrom != "" {
		t, err := core.ParseTimestamp(fetchFrom)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}

	collectors := collector.NewRegistry(yahoo.New(), binance.New())
	c, err := collectors.Get(fetchSource)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(collectors.Names(), ", "))
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		bars, err := c.FetchHistory(ctx, symbol, start, end)
		if err != nil {
			return err
		}

		valid := bars[:0]
		for _, b := range bars {
			if err := b.Validate(); err != nil {
				log.Warn("skipping invalid bar",
					zap.Time("datetime", b.Datetime),
					zap.Error(err),
				)
				continue
			}
			valid = append(valid, b)
		}

		stored, err := a.Ingest().CreateMany(ctx, ingest.SourceFetch, valid)
		if err != nil {
			return err
		}

		fmt.Printf("Stored %d %s bars from %s (%d skipped)\n",
			len(stored), symbol, c.Name(), len(bars)-len(valid))
		return nil
	})
}
