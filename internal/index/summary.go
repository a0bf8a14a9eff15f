package index

import (
	"math"
	"time"
)

// DateRange is the inclusive span of game dates in the index.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Distribution counts buckets by occurrence band.
type Distribution struct {
	One      int `json:"1"`
	Two      int `json:"2"`
	ThreeTo5 int `json:"3-5"`
	SixTo10  int `json:"6-10"`
	Over10   int `json:"11+"`
}

// Summary is the derived overview written next to the index after every run.
type Summary struct {
	TotalGames         int            `json:"total_games"`
	TotalBuckets       int            `json:"total_buckets"`
	TotalSeasons       int            `json:"total_seasons"`
	SeasonCounts       map[string]int `json:"season_counts"`
	DateRange          DateRange      `json:"date_range"`
	UniqornCount       int            `json:"uniqorn_count"`
	TwoOccurrenceCount int            `json:"two_occurrence_count"`
	UniqornPercentage  float64        `json:"uniqorn_percentage"`
	LastUpdated        string         `json:"last_updated"`
	RunID              string         `json:"run_id,omitempty"`
	BucketDistribution Distribution   `json:"bucket_distribution"`
}

// Summary computes the overview. UniqornPercentage is count-1 buckets as a
// share of all games, rounded to two decimals.
func (x *Index) Summary(now time.Time, runID string) Summary {
	s := Summary{
		TotalBuckets: len(x.entries),
		SeasonCounts: make(map[string]int),
		LastUpdated:  now.UTC().Format(time.RFC3339),
		RunID:        runID,
	}
	seasons := make(map[string]struct{})
	for _, e := range x.entries {
		s.TotalGames += e.Count
		switch {
		case e.Count == 1:
			s.UniqornCount++
			s.BucketDistribution.One++
		case e.Count == 2:
			s.TwoOccurrenceCount++
			s.BucketDistribution.Two++
		case e.Count <= 5:
			s.BucketDistribution.ThreeTo5++
		case e.Count <= 10:
			s.BucketDistribution.SixTo10++
		default:
			s.BucketDistribution.Over10++
		}
		for _, season := range e.Seasons {
			seasons[season] = struct{}{}
		}
		for i := range e.Games {
			g := &e.Games[i]
			s.SeasonCounts[g.Season]++
			if s.DateRange.Start == "" || g.Date < s.DateRange.Start {
				s.DateRange.Start = g.Date
			}
			if g.Date > s.DateRange.End {
				s.DateRange.End = g.Date
			}
		}
	}
	s.TotalSeasons = len(seasons)
	if s.TotalGames > 0 {
		pct := float64(s.UniqornCount) / float64(s.TotalGames) * 100
		s.UniqornPercentage = math.Round(pct*100) / 100
	}
	return s
}
