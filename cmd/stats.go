package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/report"
	"github.com/pable/uniqorn/internal/storage"
)

var statsFresh bool

// statsCmd prints the index summary.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the index summary",
	Long:  "Print totals, the bucket distribution, and per-season game counts. Reads the saved summary unless --fresh is given.",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsFresh, "fresh", false, "recompute the summary from the index")
}

func runStats(cmd *cobra.Command, args []string) error {
	if !statsFresh {
		if sum, err := storage.ReadSummary(cfg.SummaryPath); err == nil {
			report.PrintSummary(os.Stdout, sum)
			return nil
		}
	}
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	report.PrintSummary(os.Stdout, x.Summary(time.Now(), runID))
	return nil
}
