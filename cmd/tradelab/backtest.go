package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backtestShort   int
	backtestLong    int
	backtestSignals bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy over stored data",
	Long:  "Generate crossover signals over the stored records and show performance statistics",
	Args:  cobra.NoArgs,
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().IntVar(&backtestShort, "short", 0, "short moving average window (default from config)")
	backtestCmd.Flags().IntVar(&backtestLong, "long", 0, "long moving average window (default from config)")
	backtestCmd.Flags().BoolVar(&backtestSignals, "signals", false, "list BUY and SELL signals")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		overrides := map[string]any{}
		if cmd.Flags().Changed("short") {
			overrides["short_window"] = backtestShort
		}
		if cmd.Flags().Changed("long") {
			overrides["long_window"] = backtestLong
		}

		strat, err := a.NewStrategy(overrides)
		if err != nil {
			return err
		}

		result, err := a.Backtester().Run(ctx, strat)
		if err != nil {
			return err
		}

		printResult(result)
		if backtestSignals {
			printSignals(result.Performance.Signals)
		}

		log.Debug("backtest complete", zap.String("strategy", result.Description))
		return nil
	})
}

func printResult(r *backtest.Result) {
	perf := r.Performance

	fmt.Println("=== TradeLab Backtest ===")
	fmt.Printf("Strategy: %s\n", r.Description)
	fmt.Printf("Period:   %s to %s (%d points)\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.Points)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total Returns:\t%.2f%%\t\n", perf.TotalReturns)
	fmt.Fprintf(w, "Total Trades:\t%d\t\n", perf.TotalTrades)
	fmt.Fprintf(w, "Win Rate:\t%.2f%%\t\n", perf.WinRate)
	fmt.Fprintf(w, "Max Drawdown:\t%.2f%%\t\n", perf.MaxDrawdown)
	fmt.Fprintf(w, "Sharpe Ratio:\t%.4f\t\n", perf.SharpeRatio)
	w.Flush()

	if open := r.Simulation.Open; open != nil {
		fmt.Printf("\nOpen position since %s at %.4f (not counted)\n",
			open.EntrySignal.Datetime.Format("2006-01-02"), open.EntryPrice)
	}
}

func printSignals(signals []core.Signal) {
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSIGNAL\tPRICE\tSHORT MA\tLONG MA\t")
	fmt.Fprintln(w, "----\t------\t-----\t--------\t-------\t")

	for _, s := range signals {
		if s.Action == core.ActionHold {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%s\t%s\t\n",
			s.Datetime.Format("2006-01-02"), s.Action, s.Price, s.ShortMA, s.LongMA)
	}
	w.Flush()
}
