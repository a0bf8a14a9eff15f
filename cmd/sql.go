package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/report"
	"github.com/pable/uniqorn/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the SQLite index",
	Long: `Run an arbitrary SQL query against the index and print results as a table.
Only available with --backend sqlite.

Schema overview:
  buckets(bucket_key, count, seasons JSON, players JSON)
  games(bucket_key, position, player, game_date, stats, team, opponent, season, person_id)
  meta(key, value)

position 0 is the newest game of a bucket. Example:
  SELECT season, COUNT(*) FROM games g JOIN buckets b USING (bucket_key)
  WHERE b.count = 1 GROUP BY season`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	if !strings.EqualFold(cfg.Backend, storage.BackendSQLite) {
		return fmt.Errorf("sql needs the sqlite backend (got %q)", cfg.Backend)
	}
	query := strings.Join(args, " ")
	db, err := storage.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRawContext(cmd.Context(), query)
	if err != nil {
		return err
	}
	report.PrintRows(os.Stdout, cols, rows)
	return nil
}
