package rarity

import (
	"sort"

	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
)

// SeasonUniqorns returns the games whose bucket occurs exactly once within
// season, newest first. A season uniqorn need not be an all-time one.
func SeasonUniqorns(x *index.Index, season string) []index.Occurrence {
	v := collect(x, season)
	var out []index.Occurrence
	for _, sg := range v.games {
		if v.bucketCount[sg.key] == 1 {
			out = append(out, index.Occurrence{Key: sg.key, Count: 1, Game: sg.game})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Game.Date != out[j].Game.Date {
			return out[i].Game.Date > out[j].Game.Date
		}
		return out[i].Game.Player < out[j].Game.Player
	})
	return out
}

// PlayerCount is a player's number of all-time uniqorn games.
type PlayerCount struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	UniqornGames int    `json:"uniqorn_games"`
}

// UltimateLeaderboard counts all-time uniqorns per player, most first.
func UltimateLeaderboard(x *index.Index) []PlayerCount {
	counts := make(map[[2]string]int)
	for _, u := range x.Uniqorns("") {
		first, last := model.SplitName(u.Game.Player)
		counts[[2]string{first, last}]++
	}
	out := make([]PlayerCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, PlayerCount{FirstName: name[0], LastName: name[1], UniqornGames: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UniqornGames != out[j].UniqornGames {
			return out[i].UniqornGames > out[j].UniqornGames
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out
}
