package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/storage"
)

var dropForce bool

// dropCmd deletes the index and its summary.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the bucket index",
	Long:  "Permanently delete the bucket index, its summary file, and SQLite sidecar files. Run rebuild afterwards to recreate them.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s, %s\n", cfg.IndexPath, cfg.SummaryPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	paths := []string{cfg.IndexPath, cfg.SummaryPath}
	if strings.EqualFold(cfg.Backend, storage.BackendSQLite) {
		paths = append(paths, cfg.IndexPath+"-wal", cfg.IndexPath+"-shm")
	}
	removed := 0
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
		fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	}
	if removed == 0 {
		fmt.Fprintln(os.Stdout, "Index does not exist, nothing to drop.")
	}
	return nil
}
