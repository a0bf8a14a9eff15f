package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/normalize"
)

func raw(id, date, pts, ast, reb, blk, stl string) model.RawRow {
	return model.RawRow{
		PersonID: id, FirstName: "Test", LastName: "Player" + id,
		GameDate: date, Team: "Lakers", Opponent: "Jazz",
		Points: pts, Assists: ast, ReboundsTotal: reb, Blocks: blk, Steals: stl,
	}
}

func TestNormalizeCoercion(t *testing.T) {
	rows := []model.RawRow{
		raw("1", "2019-12-01 19:30:00", "20", "5", "10", "", "x"),
		raw("2", "2019-12-01", "", "5", "10", "1", "1"),
		raw("3", "not-a-date", "20", "5", "10", "1", "1"),
		raw("4", "2019-12-01", "18.0", "3", "-2", "1", "1"),
	}
	games, res := normalize.Normalize(rows, normalize.Options{})

	require.Len(t, games, 1)
	assert.Equal(t, model.StatVector{Points: 20, Assists: 5, Rebounds: 10}, games[0].Stats)
	assert.Equal(t, "2019-20", games[0].Season)
	assert.Equal(t, time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC), games[0].Date)

	assert.Equal(t, 4, res.Read)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 2, res.Skipped[normalize.ReasonMissingStat])
	assert.Equal(t, 1, res.Skipped[normalize.ReasonBadDate])
	assert.Equal(t, 3, res.TotalSkipped())
}

func TestNormalizeReboundsFallback(t *testing.T) {
	r := raw("1", "2019-12-01", "20", "5", "", "0", "0")
	r.Rebounds = "12"
	games, _ := normalize.Normalize([]model.RawRow{r}, normalize.Options{})
	require.Len(t, games, 1)
	assert.Equal(t, 12, games[0].Stats.Rebounds)
}

func TestNormalizeDedupKeepsFirst(t *testing.T) {
	a := raw("1", "2019-12-01 19:30:00", "20", "5", "10", "1", "1")
	a.Opponent = "first"
	b := raw("1", "2019-12-01 22:00:00", "20", "5", "10", "1", "1")
	b.Opponent = "second"
	c := raw("1", "2019-12-01", "21", "5", "10", "1", "1")

	games, res := normalize.Normalize([]model.RawRow{a, b, c}, normalize.Options{})
	require.Len(t, games, 2)
	assert.Equal(t, "first", games[0].Opponent)
	assert.Equal(t, 1, res.Skipped[normalize.ReasonDuplicate])
}

func TestNormalizeFilters(t *testing.T) {
	rows := []model.RawRow{
		raw("1", "2019-12-01", "20", "5", "10", "1", "1"),
		raw("2", "2020-12-23", "20", "5", "10", "1", "1"),
		raw("3", "2020-08-01", "20", "5", "10", "1", "1"),
	}

	games, res := normalize.Normalize(rows, normalize.Options{MinDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.Len(t, games, 2)
	assert.Equal(t, 1, res.Skipped[normalize.ReasonBeforeMinDate])
	assert.Equal(t, "", games[1].Season, "bubble-era date is outside every regular season")

	games, res = normalize.Normalize(rows, normalize.Options{Season: "2020-21"})
	require.Len(t, games, 1)
	assert.Equal(t, int64(2), games[0].PersonID)
	assert.Equal(t, 2, res.Skipped[normalize.ReasonOtherSeason])
}

func TestNormalizeBadPersonID(t *testing.T) {
	games, res := normalize.Normalize([]model.RawRow{raw("abc", "2019-12-01", "1", "1", "1", "0", "0")}, normalize.Options{})
	assert.Empty(t, games)
	assert.Equal(t, 1, res.Skipped[normalize.ReasonBadPersonID])
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-05 19:00:00",
		"2024-03-05T19:00:00",
		"2024-03-05T19:00:00Z",
		"2024-03-05",
		"03/05/2024",
	} {
		got, err := normalize.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := normalize.ParseDate("yesterday")
	assert.Error(t, err)
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "Nikola Jokic", normalize.FoldASCII("Nikola Jokić"))
	assert.Equal(t, "Luka Doncic", normalize.FoldASCII("Luka Dončić"))
	assert.Equal(t, "Kristaps Porzingis", normalize.FoldASCII("Kristaps Porziņģis"))
	assert.Equal(t, "Plain", normalize.FoldASCII(" Plain "))
}
