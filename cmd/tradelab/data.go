package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Stored data operations",
	Long:  `Commands for inspecting and clearing the stored ticker records.`,
}

var dataCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored records",
	RunE:  runDataCount,
}

var dataListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
	RunE:  runDataList,
}

var dataPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored record",
	RunE:  runDataPurge,
}

var (
	listSkip  int
	listLimit int
	listFrom  string
	listTo    string
	purgeYes  bool
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataCountCmd)
	dataCmd.AddCommand(dataListCmd)
	dataCmd.AddCommand(dataPurgeCmd)

	dataListCmd.Flags().IntVar(&listSkip, "skip", 0, "records to skip")
	dataListCmd.Flags().IntVar(&listLimit, "limit", 100, "maximum records to show")
	dataListCmd.Flags().StringVar(&listFrom, "from", "", "first datetime (inclusive)")
	dataListCmd.Flags().StringVar(&listTo, "to", "", "last datetime (inclusive)")

	dataPurgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "confirm deletion")
}

func runDataCount(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		n, err := a.Store().Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	})
}

func runDataList(cmd *cobra.Command, args []string) error {
	filter := ticker.ListFilter{Skip: listSkip, Limit: listLimit}
	var err error
	if listFrom != "" {
		if filter.From, err = core.ParseTimestamp(listFrom); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}
	if listTo != "" {
		if filter.To, err = core.ParseTimestamp(listTo); err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		recs, err := a.Store().List(ctx, filter)
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATETIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME\t")
		fmt.Fprintln(w, "--\t--------\t----\t----\t---\t-----\t------\t")

		for _, r := range recs {
			fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\t\n",
				r.ID, r.Datetime.Format("2006-01-02 15:04"), r.Open, r.High, r.Low, r.Close, r.Volume)
		}
		w.Flush()

		log.Debug("records listed", zap.Int("count", len(recs)))
		return nil
	})
}

func runDataPurge(cmd *cobra.Command, args []string) error {
	if !purgeYes {
		return fmt.Errorf("refusing to delete all records without --yes")
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		n, err := a.Ingest().DeleteAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d records\n", n)
		return nil
	})
}
