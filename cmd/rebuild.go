package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/aggregator"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/normalize"
	"github.com/pable/uniqorn/internal/parser"
	"github.com/pable/uniqorn/internal/report"
	"github.com/pable/uniqorn/pkg/logger"
)

var (
	rebuildInput   string
	rebuildMinDate string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Build the bucket index from scratch from a box-score CSV",
	Long: `Read every row of the box-score CSV, normalize it, and fold it into a new
index oldest game first. The stored index and summary are replaced.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().StringVarP(&rebuildInput, "input", "i", "", "box-score CSV (.csv or .csv.zst); default from config")
	rebuildCmd.Flags().StringVar(&rebuildMinDate, "min-date", "", "drop games before this date (YYYY-MM-DD)")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := rebuildInput
	if input == "" {
		input = cfg.InputPath
	}
	opts, err := normalizeOptions("--min-date", rebuildMinDate)
	if err != nil {
		return err
	}

	log := logger.Named("rebuild")
	log.Info(ctx, "reading box scores", logger.String("input", input), logger.String("run_id", runID))
	rows, err := parser.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	games, res := normalize.Normalize(rows, opts)
	x, rep := aggregator.Rebuild(games)
	rep.AddNormalize(res)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := aggregator.Save(ctx, store, x, aggregatorOptions())
	if err != nil {
		return err
	}
	recordRun(ctx, "rebuild", rep, x)

	report.PrintMergeReport(os.Stdout, rep)
	report.PrintSummary(os.Stdout, sum)
	return nil
}

// normalizeOptions builds normalizer options from the date given with flag,
// falling back to the configured min_date.
func normalizeOptions(flag, minDate string) (normalize.Options, error) {
	if minDate == "" {
		minDate = cfg.MinDate
		flag = "min_date"
	}
	var opts normalize.Options
	if minDate == "" {
		return opts, nil
	}
	t, err := time.Parse(model.DateLayout, minDate)
	if err != nil {
		return opts, fmt.Errorf("invalid %s %q: %w", flag, minDate, err)
	}
	opts.MinDate = t
	return opts, nil
}
