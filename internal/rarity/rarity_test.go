package rarity_test

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/uniqorn/internal/aggregator"
	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/rarity"
	"github.com/pable/uniqorn/internal/season"
)

func game(pid int64, first, last string, d time.Time, s model.StatVector) model.Game {
	return model.Game{
		PersonID: pid, FirstName: first, LastName: last, Date: d,
		Team: "Team", Opponent: "Opp", Season: season.Assign(d), Stats: s,
	}
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	pointsByBin  = []int{0, 6, 11, 16, 21, 26, 31, 41, 51}
	assistsByBin = []int{0, 3}
	shared       = model.StatVector{Points: 12, Rebounds: 21}
	fringe       = model.StatVector{Points: 12, Rebounds: 16}
)

// leaderIndex: player 1 has 16 games in buckets of their own, players 2 and 3
// split one bucket 16/16, player 4 has only 15 games. In 2020-21 players 1
// and 2 split a bucket 16/16.
func leaderIndex(t *testing.T) *index.Index {
	t.Helper()
	var games []model.Game
	start := day("2019-11-01")
	n := 0
	for _, a := range assistsByBin {
		for _, p := range pointsByBin {
			if n == 16 {
				break
			}
			games = append(games, game(1, "Solo", "Artist", start.AddDate(0, 0, n), model.StatVector{Points: p, Assists: a}))
			n++
		}
	}
	for i := 0; i < 16; i++ {
		d := start.AddDate(0, 0, i)
		games = append(games,
			game(2, "Pair", "One", d, shared),
			game(3, "Pair", "Two", d, shared),
		)
	}
	for i := 0; i < 15; i++ {
		games = append(games, game(4, "Short", "Stint", start.AddDate(0, 0, i), fringe))
	}
	next := day("2021-01-01")
	for i := 0; i < 16; i++ {
		d := next.AddDate(0, 0, i)
		games = append(games,
			game(1, "Solo", "Artist", d, shared),
			game(2, "Pair", "One", d, shared),
		)
	}
	x, rep := aggregator.Rebuild(games)
	require.Equal(t, len(games), rep.GamesAdded)
	return x
}

func TestLeaders(t *testing.T) {
	x := leaderIndex(t)
	leaders := rarity.Leaders(x, "2019-20", rarity.DefaultOptions())
	require.Len(t, leaders, 3, "player with 15 games must not rank")

	assert.Equal(t, int64(1), leaders[0].PersonID)
	assert.Equal(t, "Solo", leaders[0].FirstName)
	assert.Equal(t, "Artist", leaders[0].LastName)
	assert.Equal(t, 16, leaders[0].Games)
	assert.Equal(t, 0.9048, leaders[0].Score)

	assert.Equal(t, 0.2019, leaders[1].Score)
	assert.Equal(t, 0.2019, leaders[2].Score)
	assert.Equal(t, int64(2), leaders[1].PersonID, "ties break on person id")

	assert.Empty(t, rarity.Leaders(x, "1999-00", rarity.DefaultOptions()))
}

func TestCareerLeaders(t *testing.T) {
	x := leaderIndex(t)
	career := rarity.CareerLeaders(x, rarity.DefaultOptions(), rarity.CareerLimit)
	require.Len(t, career, 3)

	assert.Equal(t, int64(1), career[0].PersonID)
	assert.Equal(t, 2, career[0].Seasons)
	assert.Equal(t, 32, career[0].Games)
	assert.InDelta(t, (0.9048+0.2019)/2, career[0].Score, 1e-4)

	assert.Equal(t, int64(2), career[1].PersonID)
	assert.Equal(t, 0.2019, career[1].Score)

	assert.Len(t, rarity.CareerLeaders(x, rarity.DefaultOptions(), 1), 1)
}

func smallIndex() *index.Index {
	k1a := model.StatVector{Points: 20, Assists: 5, Rebounds: 10, Blocks: 1, Steals: 1}
	k1b := model.StatVector{Points: 18, Assists: 4, Rebounds: 9}
	k2 := model.StatVector{Points: 55, Assists: 14, Rebounds: 16, Blocks: 2, Steals: 5}
	x, _ := aggregator.Rebuild([]model.Game{
		game(1, "Ann", "Alpha", day("2019-12-01"), k1a),
		game(2, "Ben", "Beta", day("2019-12-05"), k1b),
		game(3, "Cal", "Gamma", day("2019-12-05"), k2),
	})
	return x
}

func TestRecentGameScores(t *testing.T) {
	scores := rarity.RecentGameScores(smallIndex(), "2019-20", rarity.DefaultAlpha)
	require.Len(t, scores, 2)

	assert.Equal(t, "Cal Gamma", scores[0].Player)
	assert.Equal(t, 1.0, scores[0].Score)
	assert.Equal(t, 1, scores[0].BucketCount)
	assert.Equal(t, "PTS 51+ | AST 13-20 | REB 16-20 | BLK 2-3 | STL 4-5", scores[0].BucketDesc)

	assert.Equal(t, "Ben Beta", scores[1].Player)
	assert.Equal(t, round4(math.Exp(-0.1)), scores[1].Score)
	assert.Equal(t, 2, scores[1].BucketCount)
}

func round4(f float64) float64 { return math.Round(f*1e4) / 1e4 }

func TestSeasonUniqornsAndUltimate(t *testing.T) {
	x := smallIndex()
	k2 := model.StatVector{Points: 55, Assists: 14, Rebounds: 16, Blocks: 2, Steals: 5}
	aggregator.Merge(x, []model.Game{game(4, "Dee", "Delta", day("2021-01-02"), k2)})

	su := rarity.SeasonUniqorns(x, "2019-20")
	require.Len(t, su, 1)
	assert.Equal(t, "Cal Gamma", su[0].Game.Player)
	assert.Empty(t, x.Uniqorns(""), "the bucket is shared across seasons")

	y := smallIndex()
	board := rarity.UltimateLeaderboard(y)
	require.Len(t, board, 1)
	assert.Equal(t, rarity.PlayerCount{FirstName: "Cal", LastName: "Gamma", UniqornGames: 1}, board[0])
}

func TestScenarioCBrokenUniqorn(t *testing.T) {
	x := smallIndex()
	before := rarity.TakeSnapshot(x)
	require.Len(t, before, 1)

	k2 := model.StatVector{Points: 52, Assists: 13, Rebounds: 17, Blocks: 3, Steals: 4}
	require.Equal(t, bucket.Key{8, 4, 4, 1, 2}, bucket.KeyOf(k2))
	aggregator.Merge(x, []model.Game{game(5, "Eve", "Epsilon", day("2020-01-10"), k2)})

	delta := rarity.Diff(rarity.TakeSnapshot(x), before)
	assert.Empty(t, delta.New)
	require.Len(t, delta.Broken, 1)
	assert.Equal(t, "Cal_Gamma_2019-12-05_55_14_16_2_5", delta.Broken[0].Key)
	assert.Equal(t, 55, delta.Broken[0].Points)

	b, err := json.Marshal(delta)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"new":[]`)
	assert.Contains(t, string(b), `"game_date":"2019-12-05"`)
}

func TestDiffNewUniqorn(t *testing.T) {
	x := smallIndex()
	before := rarity.TakeSnapshot(x)
	aggregator.Merge(x, []model.Game{game(6, "Fay", "Zeta", day("2020-02-01"), model.StatVector{Points: 70, Assists: 25, Rebounds: 25, Blocks: 9, Steals: 9})})
	delta := rarity.Diff(rarity.TakeSnapshot(x), before)
	require.Len(t, delta.New, 1)
	assert.Equal(t, "Fay", delta.New[0].FirstName)
	assert.Empty(t, delta.Broken)
}

func TestSnapshotPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_uniqorns.json")
	empty, err := rarity.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Empty(t, empty)

	snap := rarity.TakeSnapshot(smallIndex())
	require.NoError(t, rarity.SaveSnapshot(path, snap))
	loaded, err := rarity.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestFrontendTrim(t *testing.T) {
	var games []model.Game
	s := model.StatVector{Points: 8, Assists: 1, Rebounds: 1}
	for i := 0; i < 12; i++ {
		games = append(games, game(int64(i), "P", "Q", day("2019-11-01").AddDate(0, 0, i), s))
	}
	games = append(games, game(99, "Old", "Timer", day("2018-11-01"), model.StatVector{Points: 45}))
	x, _ := aggregator.Rebuild(games)

	trimmed := rarity.FrontendTrim(x, "2019-20", rarity.DefaultFrontendGames)
	require.Len(t, trimmed, 2, "every bucket is emitted")

	hot := trimmed[bucket.KeyOf(s).String()]
	assert.Equal(t, 12, hot.Count)
	assert.Len(t, hot.Games, 10)
	assert.Equal(t, "2019-11-12", hot.Games[0].Date)

	cold := trimmed[bucket.KeyOf(model.StatVector{Points: 45}).String()]
	assert.Equal(t, 0, cold.Count)
	assert.NotNil(t, cold.Games)
}
