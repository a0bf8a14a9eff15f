package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/report"
	"github.com/pable/uniqorn/internal/storage"
	"github.com/pable/uniqorn/pkg/logger"
)

var deltaDryRun bool

var deltaCmd = &cobra.Command{
	Use:   "delta",
	Short: "Report Uniqorns gained and lost since the last snapshot",
	Long: `Compare the current all-time Uniqorns with the saved snapshot. Writes the
changes JSON ({"new": [...], "broken": [...]}) and replaces the snapshot
unless --dry-run is given.`,
	Args: cobra.NoArgs,
	RunE: runDelta,
}

func init() {
	deltaCmd.Flags().BoolVar(&deltaDryRun, "dry-run", false, "print the delta without writing files")
}

func runDelta(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	x, err := loadIndex(ctx)
	if err != nil {
		return err
	}
	previous, err := rarity.LoadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	current := rarity.TakeSnapshot(x)
	d := rarity.Diff(current, previous)

	report.PrintDelta(os.Stdout, d)
	logger.Named("delta").Info(ctx, "uniqorn delta",
		logger.String("run_id", runID), logger.Int("new", len(d.New)), logger.Int("broken", len(d.Broken)))
	if deltaDryRun {
		return nil
	}

	if err := storage.WriteJSON(cfg.ChangesPath, d); err != nil {
		return fmt.Errorf("write changes: %w", err)
	}
	if err := rarity.SaveSnapshot(cfg.SnapshotPath, current); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
