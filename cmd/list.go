package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/report"
)

var (
	listLimit      int
	uniqornsSeason string
	uniqornsAll    bool
	uniqornsTwo    bool
	uniqornsWithin bool
	recentDays     int
	rarestLimit    int
)

// uniqornsCmd lists games whose bucket has a single occurrence.
var uniqornsCmd = &cobra.Command{
	Use:   "uniqorns",
	Short: "List Uniqorns (games whose bucket occurs exactly once)",
	Long: `List all-time Uniqorns from the given season (default current season).
--all lists every season, --two lists buckets with exactly two games, and
--within-season counts occurrences inside the season only.`,
	Args: cobra.NoArgs,
	RunE: runUniqorns,
}

var playerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "List every indexed game of a player",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlayer,
}

var seasonCmd = &cobra.Command{
	Use:   "season [<label>]",
	Short: "List the games of a season",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSeason,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List games from the last days of the index",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

var rarestCmd = &cobra.Command{
	Use:   "rarest",
	Short: "List the rarest buckets (five occurrences or fewer)",
	Args:  cobra.NoArgs,
	RunE:  runRarest,
}

func init() {
	for _, c := range []*cobra.Command{uniqornsCmd, playerCmd, seasonCmd, recentCmd} {
		c.Flags().IntVarP(&listLimit, "limit", "n", 50, "max games to list (0 = all)")
	}
	uniqornsCmd.Flags().StringVar(&uniqornsSeason, "season", "", "season label, e.g. 2024-25")
	uniqornsCmd.Flags().BoolVar(&uniqornsAll, "all", false, "list Uniqorns from every season")
	uniqornsCmd.Flags().BoolVar(&uniqornsTwo, "two", false, "list two-occurrence buckets instead")
	uniqornsCmd.Flags().BoolVar(&uniqornsWithin, "within-season", false, "count occurrences within the season only")
	recentCmd.Flags().IntVar(&recentDays, "days", 7, "days back from the newest indexed game")
	rarestCmd.Flags().IntVarP(&rarestLimit, "limit", "n", 25, "max buckets to list (0 = all)")
}

func runUniqorns(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	label := ""
	if !uniqornsAll {
		if label, err = resolveSeason(uniqornsSeason); err != nil {
			return err
		}
	}

	var occ []index.Occurrence
	switch {
	case uniqornsWithin:
		if label == "" {
			return fmt.Errorf("--within-season needs a season")
		}
		occ = rarity.SeasonUniqorns(x, label)
	case uniqornsTwo:
		occ = x.TwoOccurrence(label)
	default:
		occ = x.Uniqorns(label)
	}
	report.PrintOccurrences(os.Stdout, occ, listLimit)
	return nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	name := strings.Join(args, " ")
	occ := x.PlayerGames(name)
	if len(occ) == 0 {
		fmt.Fprintf(os.Stderr, "No games found for %q\n", name)
		return nil
	}
	uniq := 0
	for _, o := range occ {
		if o.Count == 1 {
			uniq++
		}
	}
	fmt.Fprintf(os.Stdout, "\n%s  |  Games: %d  |  Uniqorns: %d\n\n", occ[0].Game.Player, len(occ), uniq)
	report.PrintOccurrences(os.Stdout, occ, listLimit)
	return nil
}

func runSeason(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	label, err := resolveSeason(arg)
	if err != nil {
		return err
	}
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	report.PrintOccurrences(os.Stdout, x.SeasonGames(label), listLimit)
	return nil
}

func runRecent(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	latest, ok := x.LatestDate()
	if !ok {
		fmt.Fprintln(os.Stdout, "(no games)")
		return nil
	}
	since := latest.AddDate(0, 0, -recentDays)
	report.PrintOccurrences(os.Stdout, x.RecentGames(since), listLimit)
	return nil
}

func runRarest(cmd *cobra.Command, args []string) error {
	x, err := loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	report.PrintRarest(os.Stdout, x.Rarest(rarestLimit))
	return nil
}
