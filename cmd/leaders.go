package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/report"
)

var (
	leadersSeason   string
	leadersCareer   bool
	leadersUltimate bool
	leadersRecent   bool
	leadersLimit    int
)

// leadersCmd ranks players by average weighted uniqueness.
var leadersCmd = &cobra.Command{
	Use:   "leaders",
	Short: "Rank players by how unique their statlines are",
	Long: `Rank players of a season by average weighted uniqueness, where a game in a
bucket shared with n other season games scores exp(-alpha*n). Only players
with more than min_games games rank.

  --career    mean of each player's qualifying season scores
  --ultimate  all-time Uniqorn count per player
  --recent    games from the newest date of the season, scored by bucket`,
	Args: cobra.NoArgs,
	RunE: runLeaders,
}

func init() {
	leadersCmd.Flags().StringVar(&leadersSeason, "season", "", "season label (default current season)")
	leadersCmd.Flags().BoolVar(&leadersCareer, "career", false, "career leaderboard")
	leadersCmd.Flags().BoolVar(&leadersUltimate, "ultimate", false, "all-time Uniqorn counts")
	leadersCmd.Flags().BoolVar(&leadersRecent, "recent", false, "score the newest night of the season")
	leadersCmd.Flags().IntVarP(&leadersLimit, "limit", "n", 25, "max rows (0 = all)")
	leadersCmd.MarkFlagsMutuallyExclusive("career", "ultimate", "recent")
}

func runLeaders(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	opts := cfg.Rarity()

	switch {
	case leadersCareer:
		limit := leadersLimit
		if limit <= 0 || limit > rarity.CareerLimit {
			limit = rarity.CareerLimit
		}
		report.PrintCareerLeaders(os.Stdout, rarity.CareerLeaders(x, opts, limit))
		return nil
	case leadersUltimate:
		report.PrintUltimate(os.Stdout, rarity.UltimateLeaderboard(x), leadersLimit)
		return nil
	}

	label, err := resolveSeason(leadersSeason)
	if err != nil {
		return err
	}
	if leadersRecent {
		report.PrintGameScores(os.Stdout, rarity.RecentGameScores(x, label, opts.Alpha))
		return nil
	}
	report.PrintLeaders(os.Stdout, rarity.Leaders(x, label, opts), leadersLimit)
	return nil
}
