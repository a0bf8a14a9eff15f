package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/uniqorn/internal/aggregator"
	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/rarity"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// describeKey renders a canonical key string with its bin labels.
func describeKey(key string) string {
	k, err := bucket.ParseKey(key)
	if err != nil {
		return key
	}
	return bucket.Describe(k)
}

// PrintSummary prints the index overview and per-season game counts.
func PrintSummary(w io.Writer, s index.Summary) {
	fmt.Fprintf(w, "\n=== Bucket Index ===\n\n")
	fmt.Fprintf(w, "  Games          : %d\n", s.TotalGames)
	fmt.Fprintf(w, "  Buckets        : %d\n", s.TotalBuckets)
	fmt.Fprintf(w, "  Seasons        : %d\n", s.TotalSeasons)
	fmt.Fprintf(w, "  Date range     : %s → %s\n", s.DateRange.Start, s.DateRange.End)
	fmt.Fprintf(w, "  Uniqorns       : %d (%.2f%%)\n", s.UniqornCount, s.UniqornPercentage)
	fmt.Fprintf(w, "  Two-occurrence : %d\n", s.TwoOccurrenceCount)
	fmt.Fprintf(w, "  Last updated   : %s\n", s.LastUpdated)

	fmt.Fprintf(w, "\n--- Bucket Distribution ---\n\n")
	dt := newTable(w)
	dt.Header("OCCURRENCES", "BUCKETS")
	d := s.BucketDistribution
	dt.Append("1", strconv.Itoa(d.One))
	dt.Append("2", strconv.Itoa(d.Two))
	dt.Append("3-5", strconv.Itoa(d.ThreeTo5))
	dt.Append("6-10", strconv.Itoa(d.SixTo10))
	dt.Append("11+", strconv.Itoa(d.Over10))
	dt.Render()

	if len(s.SeasonCounts) == 0 {
		return
	}
	seasons := make([]string, 0, len(s.SeasonCounts))
	for season := range s.SeasonCounts {
		seasons = append(seasons, season)
	}
	sort.Strings(seasons)

	fmt.Fprintf(w, "\n--- Seasons ---\n\n")
	st := newTable(w)
	st.Header("SEASON", "GAMES")
	for _, season := range seasons {
		st.Append(season, strconv.Itoa(s.SeasonCounts[season]))
	}
	st.Render()
}

// PrintBucket prints one bucket and up to limit of its games.
func PrintBucket(w io.Writer, key string, e *index.Entry, limit int) {
	fmt.Fprintf(w, "\nBucket %s  |  %s\n", key, describeKey(key))
	fmt.Fprintf(w, "Count: %d  |  Seasons: %d  |  Players: %d\n\n", e.Count, len(e.Seasons), len(e.Players))

	table := newTable(w)
	table.Header("DATE", "PLAYER", "TEAM", "OPP", "SEASON", "PTS/AST/REB/BLK/STL")
	for i, g := range e.Games {
		if limit > 0 && i >= limit {
			break
		}
		table.Append(g.Date, g.Player, g.Team, g.Opponent, g.Season, g.Stats)
	}
	table.Render()
	if limit > 0 && len(e.Games) > limit {
		fmt.Fprintf(w, "(%d more)\n", len(e.Games)-limit)
	}
}

// PrintOccurrences prints a game listing with each game's bucket count.
func PrintOccurrences(w io.Writer, occ []index.Occurrence, limit int) {
	if len(occ) == 0 {
		fmt.Fprintln(w, "(no games)")
		return
	}
	table := newTable(w)
	table.Header("DATE", "PLAYER", "TEAM", "OPP", "SEASON", "PTS/AST/REB/BLK/STL", "BUCKET", "COUNT")
	for i, o := range occ {
		if limit > 0 && i >= limit {
			break
		}
		g := o.Game
		table.Append(g.Date, g.Player, g.Team, g.Opponent, g.Season, g.Stats, o.Key, strconv.Itoa(o.Count))
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d games)\n", len(occ))
}

// PrintRarest prints low-count buckets with their preview games.
func PrintRarest(w io.Writer, buckets []index.RareBucket) {
	table := newTable(w)
	table.Header("BUCKET", "RANGES", "COUNT", "GAMES")
	for _, b := range buckets {
		preview := ""
		for i, g := range b.Games {
			if i > 0 {
				preview += "; "
			}
			preview += g.Player + " " + g.Date
		}
		table.Append(b.Key, describeKey(b.Key), strconv.Itoa(b.Count), preview)
	}
	table.Render()
}

// PrintLeaders prints a season leaderboard.
func PrintLeaders(w io.Writer, leaders []rarity.Leader, limit int) {
	table := newTable(w)
	table.Header("#", "PLAYER", "SEASON", "GAMES", "AVG_UNIQ")
	for i, l := range leaders {
		if limit > 0 && i >= limit {
			break
		}
		table.Append(
			strconv.Itoa(i+1),
			l.FirstName+" "+l.LastName,
			l.Season,
			strconv.Itoa(l.Games),
			fmt.Sprintf("%.4f", l.Score),
		)
	}
	table.Render()
}

// PrintCareerLeaders prints the all-time leaderboard.
func PrintCareerLeaders(w io.Writer, leaders []rarity.CareerLeader) {
	table := newTable(w)
	table.Header("#", "PLAYER", "SEASONS", "GAMES", "AVG_UNIQ")
	for i, l := range leaders {
		table.Append(
			strconv.Itoa(i+1),
			l.FirstName+" "+l.LastName,
			strconv.Itoa(l.Seasons),
			strconv.Itoa(l.Games),
			fmt.Sprintf("%.4f", l.Score),
		)
	}
	table.Render()
}

// PrintGameScores prints the latest night's games by uniqueness.
func PrintGameScores(w io.Writer, scores []rarity.GameScore) {
	if len(scores) == 0 {
		fmt.Fprintln(w, "(no games)")
		return
	}
	fmt.Fprintf(w, "\nGames on %s\n\n", scores[0].Date)
	table := newTable(w)
	table.Header("PLAYER", "TEAM", "OPP", "PTS/AST/REB/BLK/STL", "RANGES", "COUNT", "SCORE")
	for _, s := range scores {
		table.Append(s.Player, s.Team, s.Opponent, s.Stats, s.BucketDesc, strconv.Itoa(s.BucketCount), fmt.Sprintf("%.4f", s.Score))
	}
	table.Render()
}

// PrintUltimate prints all-time uniqorn counts per player.
func PrintUltimate(w io.Writer, board []rarity.PlayerCount, limit int) {
	table := newTable(w)
	table.Header("#", "PLAYER", "UNIQORNS")
	for i, p := range board {
		if limit > 0 && i >= limit {
			break
		}
		table.Append(strconv.Itoa(i+1), p.FirstName+" "+p.LastName, strconv.Itoa(p.UniqornGames))
	}
	table.Render()
}

// PrintDelta prints new and broken uniqorns.
func PrintDelta(w io.Writer, d rarity.Delta) {
	section := func(title string, changes []rarity.Change) {
		fmt.Fprintf(w, "\n--- %s (%d) ---\n\n", title, len(changes))
		if len(changes) == 0 {
			return
		}
		table := newTable(w)
		table.Header("DATE", "PLAYER", "PTS", "AST", "REB", "BLK", "STL")
		for _, c := range changes {
			table.Append(c.GameDate, c.FirstName+" "+c.LastName,
				strconv.Itoa(c.Points), strconv.Itoa(c.Assists), strconv.Itoa(c.Rebounds),
				strconv.Itoa(c.Blocks), strconv.Itoa(c.Steals))
		}
		table.Render()
	}
	section("New uniqorns", d.New)
	section("No longer unique", d.Broken)
}

// PrintMergeReport prints the counts of a rebuild or update run.
func PrintMergeReport(w io.Writer, r aggregator.Report) {
	fmt.Fprintf(w, "  Rows read       : %d\n", r.RowsRead)
	fmt.Fprintf(w, "  Rows skipped    : %d\n", r.TotalSkipped())
	reasons := make([]string, 0, len(r.Skipped))
	for reason := range r.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "    %-16s: %d\n", reason, r.Skipped[reason])
	}
	fmt.Fprintf(w, "  Games added     : %d\n", r.GamesAdded)
	fmt.Fprintf(w, "  Duplicates      : %d\n", r.Duplicates)
	fmt.Fprintf(w, "  Buckets touched : %d\n", r.BucketsTouched)
	fmt.Fprintf(w, "  Buckets created : %d\n", r.BucketsCreated)
}

// PrintRows prints an ad-hoc query result.
func PrintRows(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
