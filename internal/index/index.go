// Package index holds the bucket index: every discretized statline key and
// the games that produced it.
package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/model"
)

// Entry is one bucket. Games are kept newest first; Seasons and Players list
// distinct values in first-seen order.
type Entry struct {
	Count   int                `json:"count"`
	Games   []model.GameRecord `json:"games"`
	Seasons []string           `json:"seasons"`
	Players []string           `json:"players"`
}

// NewEntry starts a bucket from its first record.
func NewEntry(rec model.GameRecord) *Entry {
	return &Entry{
		Count:   1,
		Games:   []model.GameRecord{rec},
		Seasons: []string{rec.Season},
		Players: []string{rec.Player},
	}
}

// Find returns the position of the record for player on date, or -1.
func (e *Entry) Find(player, date string) int {
	for i := range e.Games {
		if e.Games[i].Player == player && e.Games[i].Date == date {
			return i
		}
	}
	return -1
}

// Prepend inserts rec as the newest game and keeps the distinct lists current.
func (e *Entry) Prepend(rec model.GameRecord) {
	e.Games = append(e.Games, model.GameRecord{})
	copy(e.Games[1:], e.Games)
	e.Games[0] = rec
	e.Count++
	if !contains(e.Seasons, rec.Season) {
		e.Seasons = append(e.Seasons, rec.Season)
	}
	if !contains(e.Players, rec.Player) {
		e.Players = append(e.Players, rec.Player)
	}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// Index maps canonical key strings to bucket entries. It is not safe for
// concurrent mutation.
type Index struct {
	entries map[string]*Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

// Len returns the number of buckets.
func (x *Index) Len() int { return len(x.entries) }

// Get returns the entry stored under a canonical key string.
func (x *Index) Get(key string) (*Entry, bool) {
	e, ok := x.entries[key]
	return e, ok
}

// Put stores e under key, replacing any previous entry.
func (x *Index) Put(key string, e *Entry) {
	x.entries[key] = e
}

// Lookup returns the entry for k.
func (x *Index) Lookup(k bucket.Key) (*Entry, bool) {
	return x.Get(k.String())
}

// Count returns the occurrence count for k, 0 when absent.
func (x *Index) Count(k bucket.Key) int {
	if e, ok := x.Lookup(k); ok {
		return e.Count
	}
	return 0
}

// Keys returns every key string in sorted order.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.entries))
	for k := range x.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every bucket in key order.
func (x *Index) Each(fn func(key string, e *Entry)) {
	for _, k := range x.Keys() {
		fn(k, x.entries[k])
	}
}

// TotalGames sums the bucket counts.
func (x *Index) TotalGames() int {
	n := 0
	for _, e := range x.entries {
		n += e.Count
	}
	return n
}

// Seasons returns every season label present, sorted.
func (x *Index) Seasons() []string {
	set := make(map[string]struct{})
	for _, e := range x.entries {
		for _, s := range e.Seasons {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON writes the persisted shape: a single object keyed by the
// canonical bucket key.
func (x *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.entries)
}

// persistedEntry distinguishes absent fields from zero values on load.
type persistedEntry struct {
	Count   *int                `json:"count"`
	Games   *[]model.GameRecord `json:"games"`
	Seasons []string            `json:"seasons"`
	Players []string            `json:"players"`
}

// UnmarshalJSON reads the persisted shape. Unknown fields are ignored; a null
// entry or one without count or games is rejected with ErrMalformed.
func (x *Index) UnmarshalJSON(b []byte) error {
	var raw map[string]*persistedEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m := make(map[string]*Entry, len(raw))
	for k, p := range raw {
		switch {
		case p == nil:
			return fmt.Errorf("%w: bucket %s is null", ErrMalformed, k)
		case p.Count == nil:
			return fmt.Errorf("%w: bucket %s has no count", ErrMalformed, k)
		case p.Games == nil:
			return fmt.Errorf("%w: bucket %s has no games", ErrMalformed, k)
		}
		m[k] = &Entry{Count: *p.Count, Games: *p.Games, Seasons: p.Seasons, Players: p.Players}
	}
	x.entries = m
	return nil
}

// ---- Queries ----

// Occurrence is one stored game together with its bucket.
type Occurrence struct {
	Key   string
	Count int
	Game  model.GameRecord
}

// Uniqorns returns the sole game of every count-1 bucket, newest first. A
// non-empty season keeps only buckets whose game belongs to that season.
func (x *Index) Uniqorns(season string) []Occurrence {
	return x.byCount(1, season)
}

// TwoOccurrence returns both games of every count-2 bucket whose newest game
// belongs to season (any season when empty), newest first.
func (x *Index) TwoOccurrence(season string) []Occurrence {
	return x.byCount(2, season)
}

func (x *Index) byCount(count int, season string) []Occurrence {
	var out []Occurrence
	for k, e := range x.entries {
		if e.Count != count || len(e.Games) == 0 {
			continue
		}
		if season != "" && e.Games[0].Season != season {
			continue
		}
		for _, g := range e.Games {
			out = append(out, Occurrence{Key: k, Count: e.Count, Game: g})
		}
	}
	sortNewestFirst(out)
	return out
}

// SeasonGames returns every game of season, newest first.
func (x *Index) SeasonGames(season string) []Occurrence {
	return x.filter(func(g *model.GameRecord) bool { return g.Season == season })
}

// PlayerGames returns every game for a player, matched case-insensitively.
func (x *Index) PlayerGames(name string) []Occurrence {
	name = strings.TrimSpace(name)
	return x.filter(func(g *model.GameRecord) bool { return strings.EqualFold(g.Player, name) })
}

// RecentGames returns games on or after since, newest first.
func (x *Index) RecentGames(since time.Time) []Occurrence {
	cutoff := since.Format(model.DateLayout)
	return x.filter(func(g *model.GameRecord) bool { return g.Date >= cutoff })
}

func (x *Index) filter(keep func(*model.GameRecord) bool) []Occurrence {
	var out []Occurrence
	for k, e := range x.entries {
		for i := range e.Games {
			if keep(&e.Games[i]) {
				out = append(out, Occurrence{Key: k, Count: e.Count, Game: e.Games[i]})
			}
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(out []Occurrence) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Game.Date != out[j].Game.Date {
			return out[i].Game.Date > out[j].Game.Date
		}
		if out[i].Game.Player != out[j].Game.Player {
			return out[i].Game.Player < out[j].Game.Player
		}
		return out[i].Key < out[j].Key
	})
}

// RareBucket is a low-count bucket with a preview of its games.
type RareBucket struct {
	Key   string
	Count int
	Games []model.GameRecord
}

// rareMaxCount bounds which buckets Rarest considers.
const rareMaxCount = 5

// Rarest returns buckets with at most five occurrences, ascending by count,
// each with its three newest games. limit <= 0 returns all of them.
func (x *Index) Rarest(limit int) []RareBucket {
	var out []RareBucket
	for k, e := range x.entries {
		if e.Count > rareMaxCount {
			continue
		}
		n := len(e.Games)
		if n > 3 {
			n = 3
		}
		preview := make([]model.GameRecord, n)
		copy(preview, e.Games[:n])
		out = append(out, RareBucket{Key: k, Count: e.Count, Games: preview})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LatestDate returns the most recent game date in the index.
func (x *Index) LatestDate() (time.Time, bool) {
	latest := ""
	for _, e := range x.entries {
		for i := range e.Games {
			if e.Games[i].Date > latest {
				latest = e.Games[i].Date
			}
		}
	}
	if latest == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(model.DateLayout, latest)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
