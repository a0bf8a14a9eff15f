// Package normalize turns raw provider rows into validated games.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/season"
)

// Skip reasons, also used as metric label values.
const (
	ReasonMissingStat   = "missing_stat"
	ReasonBadDate       = "bad_date"
	ReasonBadPersonID   = "bad_person_id"
	ReasonDuplicate     = "duplicate"
	ReasonBeforeMinDate = "before_min_date"
	ReasonOtherSeason   = "other_season"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

// Options filters the normalized output. Zero values disable a filter.
type Options struct {
	MinDate time.Time // rows strictly before this day are dropped
	Season  string    // keep only rows assigned to this season
}

// Result counts what happened to the input.
type Result struct {
	Read    int
	Kept    int
	Skipped map[string]int
}

// TotalSkipped sums every skip reason.
func (r Result) TotalSkipped() int {
	n := 0
	for _, v := range r.Skipped {
		n += v
	}
	return n
}

type dedupKey struct {
	personID int64
	day      string
	team     string
	stats    model.StatVector
}

// Normalize coerces, validates, filters and deduplicates rows. Row defects
// never fail the batch; they are dropped and counted in the Result.
func Normalize(rows []model.RawRow, opts Options) ([]model.Game, Result) {
	res := Result{Read: len(rows), Skipped: make(map[string]int)}
	seen := make(map[dedupKey]struct{}, len(rows))
	minDay := time.Time{}
	if !opts.MinDate.IsZero() {
		minDay = truncateDay(opts.MinDate)
	}

	games := make([]model.Game, 0, len(rows))
	for _, row := range rows {
		g, reason := convert(row)
		if reason != "" {
			res.Skipped[reason]++
			continue
		}
		if !minDay.IsZero() && g.Date.Before(minDay) {
			res.Skipped[ReasonBeforeMinDate]++
			continue
		}
		if opts.Season != "" && g.Season != opts.Season {
			res.Skipped[ReasonOtherSeason]++
			continue
		}
		k := dedupKey{g.PersonID, g.Date.Format(model.DateLayout), g.Team, g.Stats}
		if _, dup := seen[k]; dup {
			res.Skipped[ReasonDuplicate]++
			continue
		}
		seen[k] = struct{}{}
		games = append(games, g)
	}
	res.Kept = len(games)
	return games, res
}

func convert(row model.RawRow) (model.Game, string) {
	pts, ok1 := parseStat(row.Points)
	ast, ok2 := parseStat(row.Assists)
	rebText := row.ReboundsTotal
	if strings.TrimSpace(rebText) == "" {
		rebText = row.Rebounds
	}
	reb, ok3 := parseStat(rebText)
	if !ok1 || !ok2 || !ok3 {
		return model.Game{}, ReasonMissingStat
	}
	blk, ok := parseStat(row.Blocks)
	if !ok {
		blk = 0
	}
	stl, ok := parseStat(row.Steals)
	if !ok {
		stl = 0
	}

	date, err := ParseDate(row.GameDate)
	if err != nil {
		return model.Game{}, ReasonBadDate
	}
	pid, ok := parseID(row.PersonID)
	if !ok {
		return model.Game{}, ReasonBadPersonID
	}

	return model.Game{
		PersonID:  pid,
		FirstName: FoldASCII(row.FirstName),
		LastName:  FoldASCII(row.LastName),
		Date:      date,
		Team:      strings.TrimSpace(row.Team),
		Opponent:  strings.TrimSpace(row.Opponent),
		Season:    season.Assign(date),
		Stats: model.StatVector{
			Points:   pts,
			Assists:  ast,
			Rebounds: reb,
			Blocks:   blk,
			Steals:   stl,
		},
	}, ""
}

// parseStat accepts integer or float text ("12", "12.0"). Blank, NaN and
// negative values are reported as missing.
func parseStat(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return int(f), true
}

func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// ParseDate accepts the provider timestamp and date formats and returns the
// UTC day with the time of day discarded.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return truncateDay(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FoldASCII strips diacritics and drops any remaining non-ASCII rune, so
// "Nikola Jokić" becomes "Nikola Jokic".
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
