package rarity

import (
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
)

// DefaultFrontendGames caps the games shipped per bucket.
const DefaultFrontendGames = 10

// FrontendBucket is the season-scoped view of one bucket.
type FrontendBucket struct {
	Count int                `json:"count"`
	Games []model.GameRecord `json:"games"`
}

// FrontendTrim reduces x to one season for the web frontend. Every bucket is
// emitted, with Count the season's occurrences and at most maxGames games.
func FrontendTrim(x *index.Index, season string, maxGames int) map[string]FrontendBucket {
	if maxGames <= 0 {
		maxGames = DefaultFrontendGames
	}
	out := make(map[string]FrontendBucket, x.Len())
	x.Each(func(key string, e *index.Entry) {
		games := make([]model.GameRecord, 0)
		n := 0
		for _, g := range e.Games {
			if g.Season != season {
				continue
			}
			n++
			if len(games) < maxGames {
				games = append(games, g)
			}
		}
		out[key] = FrontendBucket{Count: n, Games: games}
	})
	return out
}
