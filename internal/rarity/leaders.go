// Package rarity derives leaderboards and uniqueness reports from the index.
package rarity

import (
	"math"
	"sort"

	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
)

// Default scoring parameters.
const (
	DefaultAlpha    = 0.10
	DefaultMinGames = 15
	CareerLimit     = 50
)

// Options tune the weighted-uniqueness score.
type Options struct {
	Alpha    float64 // decay per competing occurrence
	MinGames int     // players need strictly more games than this to rank
}

// DefaultOptions returns the standard scoring parameters.
func DefaultOptions() Options {
	return Options{Alpha: DefaultAlpha, MinGames: DefaultMinGames}
}

// Leader is one player's average weighted uniqueness for a season.
type Leader struct {
	PersonID  int64   `json:"personId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Season    string  `json:"season"`
	Games     int     `json:"games"`
	Score     float64 `json:"avg_weighted_uniqueness"`
}

type seasonGame struct {
	key  string
	game model.GameRecord
}

type pidKey struct {
	pid int64
	key string
}

type seasonView struct {
	games       []seasonGame
	bucketCount map[string]int
	playerCount map[pidKey]int
	names       map[int64][2]string
}

// collect gathers a season's games and its season-scoped counts.
func collect(x *index.Index, season string) seasonView {
	v := seasonView{
		bucketCount: make(map[string]int),
		playerCount: make(map[pidKey]int),
		names:       make(map[int64][2]string),
	}
	x.Each(func(key string, e *index.Entry) {
		for _, g := range e.Games {
			if g.Season != season {
				continue
			}
			v.games = append(v.games, seasonGame{key: key, game: g})
			v.bucketCount[key]++
			v.playerCount[pidKey{g.PersonID, key}]++
			if _, ok := v.names[g.PersonID]; !ok {
				first, last := model.SplitName(g.Player)
				v.names[g.PersonID] = [2]string{first, last}
			}
		}
	})
	return v
}

// weight scores one game: exp(-alpha * max(total-self, 1)). A player's own
// repeats of a bucket do not count against them.
func weight(alpha float64, total, self int) float64 {
	effective := total - self
	if effective < 1 {
		effective = 1
	}
	return math.Exp(-alpha * float64(effective))
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}

// Leaders ranks the players of one season by average weighted uniqueness.
func Leaders(x *index.Index, season string, opts Options) []Leader {
	v := collect(x, season)
	sum := make(map[int64]float64)
	games := make(map[int64]int)
	for _, sg := range v.games {
		pid := sg.game.PersonID
		sum[pid] += weight(opts.Alpha, v.bucketCount[sg.key], v.playerCount[pidKey{pid, sg.key}])
		games[pid]++
	}

	out := make([]Leader, 0, len(games))
	for pid, n := range games {
		if n <= opts.MinGames {
			continue
		}
		name := v.names[pid]
		out = append(out, Leader{
			PersonID:  pid,
			FirstName: name[0],
			LastName:  name[1],
			Season:    season,
			Games:     n,
			Score:     round4(sum[pid] / float64(n)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out
}

// CareerLeader averages a player's qualified season scores.
type CareerLeader struct {
	PersonID  int64   `json:"personId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Seasons   int     `json:"seasons"`
	Games     int     `json:"games"`
	Score     float64 `json:"avg_weighted_uniqueness"`
}

// CareerLeaders returns the top limit players by the mean of their season
// averages across every season in which they qualified.
func CareerLeaders(x *index.Index, opts Options, limit int) []CareerLeader {
	byPID := make(map[int64]*CareerLeader)
	sums := make(map[int64]float64)
	for _, s := range x.Seasons() {
		for _, l := range Leaders(x, s, opts) {
			c, ok := byPID[l.PersonID]
			if !ok {
				c = &CareerLeader{PersonID: l.PersonID, FirstName: l.FirstName, LastName: l.LastName}
				byPID[l.PersonID] = c
			}
			c.Seasons++
			c.Games += l.Games
			sums[l.PersonID] += l.Score
		}
	}
	out := make([]CareerLeader, 0, len(byPID))
	for pid, c := range byPID {
		c.Score = round4(sums[pid] / float64(c.Seasons))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PersonID < out[j].PersonID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GameScore rates one game from the latest date of a season.
type GameScore struct {
	Player      string  `json:"player"`
	Date        string  `json:"date"`
	Team        string  `json:"team"`
	Opponent    string  `json:"opponent"`
	Season      string  `json:"season"`
	Stats       string  `json:"stats"`
	BucketDesc  string  `json:"bucket_desc"`
	BucketCount int     `json:"bucket_count"`
	Score       float64 `json:"uniqueness_score"`
}

// RecentGameScores scores every game on the most recent date of season as
// exp(-alpha*(seasonTotal-1)), so a bucket seen once scores 1.
func RecentGameScores(x *index.Index, season string, alpha float64) []GameScore {
	v := collect(x, season)
	latest := ""
	for _, sg := range v.games {
		if sg.game.Date > latest {
			latest = sg.game.Date
		}
	}
	var out []GameScore
	for _, sg := range v.games {
		if sg.game.Date != latest {
			continue
		}
		total := v.bucketCount[sg.key]
		desc := sg.key
		if k, err := bucket.ParseKey(sg.key); err == nil {
			desc = bucket.Describe(k)
		}
		out = append(out, GameScore{
			Player:      sg.game.Player,
			Date:        sg.game.Date,
			Team:        sg.game.Team,
			Opponent:    sg.game.Opponent,
			Season:      season,
			Stats:       sg.game.Stats,
			BucketDesc:  desc,
			BucketCount: total,
			Score:       round4(math.Exp(-alpha * float64(total-1))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Player < out[j].Player
	})
	return out
}
