package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/aggregator"
	"github.com/pable/uniqorn/internal/config"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/season"
	"github.com/pable/uniqorn/internal/storage"
	"github.com/pable/uniqorn/pkg/logger"
	"github.com/pable/uniqorn/pkg/metrics"
)

var (
	cfgPath      string
	backendFlag  string
	indexFlag    string
	summaryFlag  string
	logLevelFlag string

	cfg       *config.Config
	runID     string
	startedAt time.Time
	runMetrics  *metrics.Manager
)

var rootCmd = &cobra.Command{
	Use:   "uniqorn",
	Short: "Bucket index of unique basketball statlines",
	Long: `Discretize box-score statlines (points, assists, rebounds, blocks, steals)
into buckets, keep a persistent index of the games in each bucket, and report
on the rarest ones. A Uniqorn is a game whose bucket has exactly one occurrence.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to YAML config file (default $UNIQORN_CONFIG)")
	pf.StringVar(&backendFlag, "backend", "", "index store backend: json or sqlite")
	pf.StringVar(&indexFlag, "index", "", "path to the bucket index (.json, .json.zst or .db)")
	pf.StringVar(&summaryFlag, "summary", "", "path to the summary JSON file")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(bucketCmd)
	rootCmd.AddCommand(uniqornsCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(seasonCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(rarestCmd)
	rootCmd.AddCommand(leadersCmd)
	rootCmd.AddCommand(deltaCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
}

// setup loads the layered config, applies flag overrides, and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cmd.Context(), cfgPath)
	if err != nil {
		return err
	}
	if backendFlag != "" {
		loaded.Backend = backendFlag
	}
	if indexFlag != "" {
		loaded.IndexPath = indexFlag
	}
	if summaryFlag != "" {
		loaded.SummaryPath = summaryFlag
	}
	if logLevelFlag != "" {
		loaded.LogLevel = logLevelFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger.Init(os.Stderr)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	runID = uuid.NewString()
	startedAt = time.Now()
	runMetrics = metrics.NewManager()
	logger.Get().Debug(cmd.Context(), "run started",
		logger.String("command", cmd.Name()), logger.String("run_id", runID),
		logger.String("backend", cfg.Backend), logger.String("index", cfg.IndexPath))
	return nil
}

// teardown exports run metrics when a textfile path is configured.
func teardown(cmd *cobra.Command, args []string) error {
	if cfg == nil || cfg.MetricsTextfile == "" {
		return nil
	}
	runMetrics.ObserveRun(cmd.Name(), time.Since(startedAt), time.Now())
	if err := runMetrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Get().Warn(cmd.Context(), "metrics export failed", logger.Error(err))
	}
	return nil
}

// openStore opens the configured backend, creating the index directory.
func openStore() (storage.Store, error) {
	if dir := filepath.Dir(cfg.IndexPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}
	store, err := storage.OpenStore(cfg.Backend, cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return store, nil
}

// loadIndex loads the stored index. A missing index is an error for every
// reader: there is nothing to report on before the first rebuild.
func loadIndex(ctx context.Context) (*index.Index, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	exists, err := store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", cfg.IndexPath, aggregator.ErrNoIndex)
	}
	x, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return x, nil
}

func aggregatorOptions() aggregator.Options {
	return aggregator.Options{SummaryPath: cfg.SummaryPath, RunID: runID}
}

// recordRun logs a finished batch and feeds the run metrics.
func recordRun(ctx context.Context, name string, rep aggregator.Report, x *index.Index) {
	runMetrics.RecordBatch(metrics.Batch{
		RowsRead:       rep.RowsRead,
		Skipped:        rep.Skipped,
		GamesAdded:     rep.GamesAdded,
		Duplicates:     rep.Duplicates,
		BucketsTouched: rep.BucketsTouched,
		BucketsCreated: rep.BucketsCreated,
	})
	if x != nil {
		runMetrics.SetIndexSize(x.Len(), x.TotalGames())
	}
	logger.Named(name).Info(ctx, "batch merged",
		logger.String("run_id", runID),
		logger.Int("rows_read", rep.RowsRead),
		logger.Int("rows_skipped", rep.TotalSkipped()),
		logger.Int("games_added", rep.GamesAdded),
		logger.Int("duplicates", rep.Duplicates),
		logger.Int("buckets_touched", rep.BucketsTouched),
		logger.Int("buckets_created", rep.BucketsCreated))
}

// resolveSeason returns label, or the configured current season when empty.
func resolveSeason(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return cfg.CurrentSeason, nil
	}
	if !season.Known(label) {
		return "", fmt.Errorf("unknown season %q (expected e.g. %s)", label, season.Latest().Label)
	}
	return label, nil
}

// isNoIndex reports whether err means no index has been built yet.
func isNoIndex(err error) bool {
	return errors.Is(err, aggregator.ErrNoIndex)
}
