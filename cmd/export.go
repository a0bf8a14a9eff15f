package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/cache"
	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/storage"
	"github.com/pable/uniqorn/pkg/logger"
)

var (
	exportOut     string
	exportSeason  string
	exportPublish bool
)

// exportCmd writes the season-trimmed index used by the web frontend.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the season-trimmed index for the frontend",
	Long: `Write every bucket with its season count and at most frontend_max_games of
the season's games. With --publish the payload is also stored in Redis
under <redis_key>:<season> with redis_ttl_seconds expiry.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default frontend_<season>.json next to the index)")
	exportCmd.Flags().StringVar(&exportSeason, "season", "", "season label (default current season)")
	exportCmd.Flags().BoolVar(&exportPublish, "publish", false, "publish the payload to Redis")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	label, err := resolveSeason(exportSeason)
	if err != nil {
		return err
	}
	x, err := loadIndex(ctx)
	if err != nil {
		return err
	}
	payload := rarity.FrontendTrim(x, label, cfg.FrontendMaxGames)

	out := exportOut
	if out == "" {
		out = filepath.Join(filepath.Dir(cfg.IndexPath), "frontend_"+label+".json")
	}
	if err := storage.WriteJSON(out, payload); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d buckets for %s to %s\n", len(payload), label, out)

	if !exportPublish {
		return nil
	}
	if cfg.RedisAddr == "" {
		return fmt.Errorf("--publish needs redis_addr (UNIQORN_REDIS_ADDR)")
	}
	pub, err := cache.NewPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	defer pub.Close()

	key := cfg.RedisKey + ":" + label
	if err := pub.Publish(ctx, key, payload, cfg.RedisTTL()); err != nil {
		return err
	}
	logger.Named("export").Info(ctx, "frontend payload published",
		logger.String("run_id", runID), logger.String("key", key), logger.Int("buckets", len(payload)))
	fmt.Fprintf(os.Stdout, "Published to redis key %s\n", key)
	return nil
}
