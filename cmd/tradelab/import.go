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

var importCmd = &cobra.Command{
	Use:   "import <glob>...",
	Short: "Import records from JSON or YAML files",
	Long: `Import ticker records from JSON or YAML files. Patterns support ** globs,
e.g. "data/**/*.yaml". All matched records are validated before any is stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	files, err := ingest.Expand(args)
	if err != nil {
		return err
	}

	var records []core.TickerInput
	for _, f := range files {
		recs, err := ingest.LoadFile(f)
		if err != nil {
			return err
		}
		records = append(records, recs...)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		stored, err := a.Ingest().CreateMany(ctx, ingest.SourceImport, records)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d records from %d files\n", len(stored), len(files))
		log.Info("records imported", zap.Int("count", len(stored)), zap.Strings("files", files))
		return nil
	})
}
