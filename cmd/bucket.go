package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/report"
)

var (
	bucketStats string
	bucketLimit int
)

var bucketCmd = &cobra.Command{
	Use:   "bucket [<key>]",
	Short: "Show one bucket and its games",
	Long: `Show a bucket by key, e.g. "(3, 1, 2, 0, 0)" or 3,1,2,0,0, or by statline
with --stats 20/5/10/1/1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBucket,
}

func init() {
	bucketCmd.Flags().StringVar(&bucketStats, "stats", "", "statline pts/ast/reb/blk/stl to discretize")
	bucketCmd.Flags().IntVarP(&bucketLimit, "limit", "n", 25, "max games to list (0 = all)")
}

func runBucket(cmd *cobra.Command, args []string) error {
	var key bucket.Key
	switch {
	case bucketStats != "":
		s, err := model.ParseStatString(bucketStats)
		if err != nil {
			return err
		}
		key = bucket.KeyOf(s)
	case len(args) == 1:
		k, err := bucket.ParseKey(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if !k.Valid() {
			return fmt.Errorf("%w: %s is out of range", bucket.ErrInvalidKey, k)
		}
		key = k
	default:
		return fmt.Errorf("give a bucket key or --stats")
	}

	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	e, ok := x.Lookup(key)
	if !ok {
		fmt.Fprintf(os.Stdout, "Bucket %s  |  %s\nNo games: this statline would be a Uniqorn.\n", key, bucket.Describe(key))
		return nil
	}
	report.PrintBucket(os.Stdout, key.String(), e, bucketLimit)
	return nil
}
