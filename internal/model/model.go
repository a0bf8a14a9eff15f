package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-granularity layout used for every stored game date.
const DateLayout = "2006-01-02"

// StatVector is the five-category per-game statline.
type StatVector struct {
	Points   int
	Assists  int
	Rebounds int
	Blocks   int
	Steals   int
}

// String renders the statline as "pts/ast/reb/blk/stl".
func (s StatVector) String() string {
	return fmt.Sprintf("%d/%d/%d/%d/%d", s.Points, s.Assists, s.Rebounds, s.Blocks, s.Steals)
}

// ParseStatString parses a "pts/ast/reb/blk/stl" string produced by StatVector.String.
func ParseStatString(s string) (StatVector, error) {
	var v StatVector
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%d/%d/%d/%d/%d",
		&v.Points, &v.Assists, &v.Rebounds, &v.Blocks, &v.Steals)
	if err != nil || n != 5 {
		return StatVector{}, fmt.Errorf("parse stat string %q: %v", s, err)
	}
	return v, nil
}

// ---- Raw provider rows ----

// RawRow is one box-score row as delivered by a provider. Every field is kept
// as text; coercion happens in the normalizer.
type RawRow struct {
	PersonID      string
	FirstName     string
	LastName      string
	GameDate      string // timestamp or date, provider format
	Team          string
	Opponent      string
	Points        string
	Assists       string
	ReboundsTotal string
	Rebounds      string // secondary field, used when ReboundsTotal is blank
	Blocks        string
	Steals        string
}

// ---- Normalized games ----

// Game is a validated, normalized row ready for discretization.
type Game struct {
	PersonID  int64
	FirstName string // ASCII-folded
	LastName  string // ASCII-folded
	Date      time.Time
	Team      string
	Opponent  string
	Season    string // empty when the date falls outside every known season
	Stats     StatVector
}

// PlayerName returns the display name used for bucket membership and dedup.
func (g *Game) PlayerName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// Record converts the game into its immutable index representation.
func (g *Game) Record() GameRecord {
	return GameRecord{
		Player:   g.PlayerName(),
		Date:     g.Date.Format(DateLayout),
		Stats:    g.Stats.String(),
		Team:     g.Team,
		Opponent: g.Opponent,
		Season:   g.Season,
		PersonID: g.PersonID,
	}
}

// GameRecord is one stored occurrence inside a bucket. The JSON shape is the
// persisted index contract; renaming a tag breaks existing index files.
type GameRecord struct {
	Player   string `json:"player"`
	Date     string `json:"date"`  // YYYY-MM-DD
	Stats    string `json:"stats"` // pts/ast/reb/blk/stl
	Team     string `json:"team"`
	Opponent string `json:"opponent"`
	Season   string `json:"season"`
	PersonID int64  `json:"personId"`
}

// StatVector parses the record's stat string.
func (r *GameRecord) StatVector() (StatVector, error) {
	return ParseStatString(r.Stats)
}

// SplitName splits a display name into first and last name on the first space.
func SplitName(player string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(player), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
