package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// checkCmd verifies the stored index against its entry invariants.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the stored index",
	Long:  "Check that every bucket's count, games, seasons, and players agree and that every game discretizes to its own bucket.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	if err := x.Validate(); err != nil {
		return fmt.Errorf("index %s is inconsistent:\n%w", cfg.IndexPath, err)
	}
	fmt.Fprintf(os.Stdout, "OK: %d buckets, %d games\n", x.Len(), x.TotalGames())
	return nil
}
