package main

import (
	"context"
	"fmt"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Archive snapshot operations",
	Long:  `Commands for exporting stored records to the archive and restoring them.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all stored records to a new snapshot",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotExport,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Load a snapshot back into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotKeep int

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotListCmd)

	snapshotExportCmd.Flags().IntVar(&snapshotKeep, "keep", 0, "prune to this many snapshots after export (0 keeps all)")
}

func runSnapshotExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		exp, err := a.Exporter()
		if err != nil {
			return err
		}

		snap, err := exp.Export(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d records to %s\n", snap.Count, snap.Path)

		if snapshotKeep > 0 {
			n, err := exp.Prune(ctx, snapshotKeep)
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Printf("Pruned %d old snapshots\n", n)
			}
		}
		return nil
	})
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		exp, err := a.Exporter()
		if err != nil {
			return err
		}

		n, err := exp.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d records from %s\n", n, args[0])
		return nil
	})
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.Logger) error {
		exp, err := a.Exporter()
		if err != nil {
			return err
		}

		paths, err := exp.List(ctx)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	})
}
