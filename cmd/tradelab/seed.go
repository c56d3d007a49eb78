package main

import (
	"context"
	"fmt"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedDays  int
	seedStart string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a generated sample price series",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", ingest.DefaultSampleDays, "number of daily records")
	seedCmd.Flags().StringVar(&seedStart, "start", "", "first timestamp (default 2023-01-01T09:30:00)")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	start := ingest.SampleStart
	if seedStart != "" {
		t, err := core.ParseTimestamp(seedStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		start = t
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		stored, err := a.Ingest().CreateMany(ctx, ingest.SourceSeed, ingest.SampleSeries(start, seedDays))
		if err != nil {
			return err
		}

		fmt.Printf("Inserted %d sample records\n", len(stored))
		log.Debug("sample data seeded", zap.Time("start", start))
		return nil
	})
}
