// Package aggregator folds normalized games into the bucket index, either
// incrementally (Merge, Update) or from scratch (Rebuild).
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/normalize"
	"github.com/pable/uniqorn/internal/storage"
)

// ReasonNoSeason counts games dated outside every regular season.
const ReasonNoSeason = "no_season"

// Report summarizes one merge or rebuild batch.
type Report struct {
	RowsRead       int
	Skipped        map[string]int
	GamesAdded     int
	Duplicates     int
	BucketsTouched int
	BucketsCreated int
}

func newReport() Report {
	return Report{Skipped: make(map[string]int)}
}

// AddNormalize folds the normalizer's counts into the report.
func (r *Report) AddNormalize(res normalize.Result) {
	r.RowsRead += res.Read
	for reason, n := range res.Skipped {
		r.Skipped[reason] += n
	}
}

// TotalSkipped sums every skip reason.
func (r Report) TotalSkipped() int {
	n := 0
	for _, v := range r.Skipped {
		n += v
	}
	return n
}

// Merger applies games to an index. The bloom filter only answers "definitely
// new"; a positive is always confirmed by scanning the bucket.
type Merger struct {
	idx  *index.Index
	seen *bloom.BloomFilter
}

// NewMerger prepares x for merging, sized for expected additional games.
func NewMerger(x *index.Index, expected int) *Merger {
	n := uint(x.TotalGames() + expected)
	if n < 1000 {
		n = 1000
	}
	m := &Merger{idx: x, seen: bloom.NewWithEstimates(n, 0.001)}
	x.Each(func(key string, e *index.Entry) {
		for i := range e.Games {
			m.seen.AddString(memberKey(key, e.Games[i].Player, e.Games[i].Date))
		}
	})
	return m
}

func memberKey(key, player, date string) string {
	return key + "|" + player + "|" + date
}

// Apply merges every game in order and returns the batch report.
func (m *Merger) Apply(games []model.Game) Report {
	rep := newReport()
	touched := make(map[string]struct{})
	for i := range games {
		g := &games[i]
		if g.Season == "" {
			rep.Skipped[ReasonNoSeason]++
			continue
		}
		rec := g.Record()
		key := bucket.KeyOf(g.Stats).String()
		member := memberKey(key, rec.Player, rec.Date)

		e, ok := m.idx.Get(key)
		if !ok {
			m.idx.Put(key, index.NewEntry(rec))
			m.seen.AddString(member)
			rep.GamesAdded++
			rep.BucketsCreated++
			touched[key] = struct{}{}
			continue
		}
		if m.seen.TestString(member) && e.Find(rec.Player, rec.Date) >= 0 {
			rep.Duplicates++
			continue
		}
		e.Prepend(rec)
		m.seen.AddString(member)
		rep.GamesAdded++
		touched[key] = struct{}{}
	}
	rep.BucketsTouched = len(touched)
	return rep
}

// Merge applies games to x in batch order.
func Merge(x *index.Index, games []model.Game) Report {
	return NewMerger(x, len(games)).Apply(games)
}

// Rebuild builds a fresh index from games. Games are applied oldest first so
// that every bucket lists its games newest first, the same shape incremental
// merges produce.
func Rebuild(games []model.Game) (*index.Index, Report) {
	ordered := make([]model.Game, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})
	x := index.New()
	rep := Merge(x, ordered)
	return x, rep
}

// Options control what Update and Save write besides the index.
type Options struct {
	SummaryPath string // empty skips the summary file
	RunID       string
	Now         func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Load returns the stored index, or ErrNoIndex when the store holds none.
func Load(ctx context.Context, store storage.Store) (*index.Index, error) {
	exists, err := store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if !exists {
		return nil, ErrNoIndex
	}
	x, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return x, nil
}

// Update merges games into the stored index and saves the result. It fails
// with ErrNoIndex, writing nothing, when the store holds no index yet.
func Update(ctx context.Context, store storage.Store, games []model.Game, opts Options) (*index.Index, Report, error) {
	x, err := Load(ctx, store)
	if err != nil {
		return nil, Report{}, err
	}
	rep := Merge(x, games)
	if _, err := Save(ctx, store, x, opts); err != nil {
		return nil, rep, err
	}
	return x, rep, nil
}

// Save persists x and, when configured, its freshly computed summary.
func Save(ctx context.Context, store storage.Store, x *index.Index, opts Options) (index.Summary, error) {
	if err := store.Save(ctx, x); err != nil {
		return index.Summary{}, fmt.Errorf("save index: %w", err)
	}
	sum := x.Summary(opts.now(), opts.RunID)
	if opts.SummaryPath != "" {
		if err := storage.WriteSummary(opts.SummaryPath, sum); err != nil {
			return sum, fmt.Errorf("save summary: %w", err)
		}
	}
	return sum, nil
}
