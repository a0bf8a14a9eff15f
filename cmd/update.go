package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/aggregator"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/nbastats"
	"github.com/pable/uniqorn/internal/normalize"
	"github.com/pable/uniqorn/internal/parser"
	"github.com/pable/uniqorn/internal/report"
	"github.com/pable/uniqorn/internal/storage"
	"github.com/pable/uniqorn/pkg/logger"
)

// updateLookbackDays is how far before the newest stored game an update
// starts reading. Dedup absorbs the overlap.
const updateLookbackDays = 3

var (
	updateInput  string
	updateAPI    bool
	updateSeason string
	updateSince  string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Merge new games into the existing bucket index",
	Long: `Fetch recent games from a CSV file or the stats API and merge them into
the stored index. Games already present in their bucket (same player and date)
are skipped. Fails when no index exists yet: run rebuild first.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateInput, "input", "i", "", "box-score CSV to merge; default from config")
	updateCmd.Flags().BoolVar(&updateAPI, "api", false, "fetch games from the stats API instead of a file")
	updateCmd.Flags().StringVar(&updateSeason, "season", "", "season to fetch with --api (default current season)")
	updateCmd.Flags().StringVar(&updateSince, "since", "", "only merge games on or after this date (default: newest indexed game minus 3 days)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Named("update").With(logger.String("run_id", runID))

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	x, err := aggregator.Load(ctx, store)
	if err != nil {
		if isNoIndex(err) {
			log.Error(ctx, "no index to update", logger.String("index", cfg.IndexPath))
			return fmt.Errorf("%s: %w", cfg.IndexPath, err)
		}
		return err
	}

	since := updateSince
	if since == "" {
		since = defaultSince(x)
	}
	opts, err := normalizeOptions("--since", since)
	if err != nil {
		return err
	}

	var rows []model.RawRow
	if updateAPI {
		seasonLabel, err := resolveSeason(updateSeason)
		if err != nil {
			return err
		}
		client := nbastats.NewClient(cfg.APIBaseURL,
			nbastats.WithTimeout(cfg.APITimeout()),
			nbastats.WithMaxRetries(cfg.APIMaxRetries),
			nbastats.WithLogger(logger.Named("nbastats")))
		log.Info(ctx, "fetching game log", logger.String("season", seasonLabel), logger.String("since", since))
		rows, err = client.FetchSeasons(ctx, []string{seasonLabel})
		if err != nil {
			return err
		}
	} else {
		input := updateInput
		if input == "" {
			input = cfg.InputPath
		}
		log.Info(ctx, "reading box scores", logger.String("input", input), logger.String("since", since))
		rows, err = parser.ReadFile(input)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	games, res := normalize.Normalize(rows, opts)
	rep := aggregator.Merge(x, games)
	if _, err := aggregator.Save(ctx, store, x, aggregatorOptions()); err != nil {
		return err
	}
	rep.AddNormalize(res)
	recordRun(ctx, "update", rep, x)

	report.PrintMergeReport(os.Stdout, rep)
	return nil
}

// defaultSince starts the update window a few days before the newest stored
// game. An empty index falls back to the summary's end date; without either
// there is no window and dedup alone decides.
func defaultSince(x *index.Index) string {
	end, ok := x.LatestDate()
	if !ok {
		sum, err := storage.ReadSummary(cfg.SummaryPath)
		if err != nil || sum.DateRange.End == "" {
			return ""
		}
		if end, err = normalize.ParseDate(sum.DateRange.End); err != nil {
			return ""
		}
	}
	return end.AddDate(0, 0, -updateLookbackDays).Format(model.DateLayout)
}
