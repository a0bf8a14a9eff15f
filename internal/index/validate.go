package index

import (
	"errors"
	"fmt"

	"github.com/pable/uniqorn/internal/bucket"
)

// Validate checks every bucket against the index invariants and returns all
// violations joined. A nil result means the index is consistent.
func (x *Index) Validate() error {
	var errs []error
	for _, key := range x.Keys() {
		e := x.entries[key]
		k, err := bucket.ParseKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !k.Valid() {
			errs = append(errs, fmt.Errorf("%w: %s bin out of range", ErrInvariant, key))
		}
		if e.Count != len(e.Games) {
			errs = append(errs, fmt.Errorf("%w: %s count %d != %d games", ErrInvariant, key, e.Count, len(e.Games)))
		}
		if e.Count < 1 {
			errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvariant, key))
		}

		seasons := make(map[string]struct{})
		players := make(map[string]struct{})
		seen := make(map[[2]string]struct{})
		for i := range e.Games {
			g := &e.Games[i]
			seasons[g.Season] = struct{}{}
			players[g.Player] = struct{}{}
			id := [2]string{g.Player, g.Date}
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("%w: %s has %s on %s twice", ErrInvariant, key, g.Player, g.Date))
			}
			seen[id] = struct{}{}
			sv, err := g.StatVector()
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvariant, key, err))
			} else if bucket.KeyOf(sv) != k {
				errs = append(errs, fmt.Errorf("%w: %s holds %s which discretizes to %s", ErrInvariant, key, g.Stats, bucket.KeyOf(sv)))
			}
		}
		if !sameSet(e.Seasons, seasons) {
			errs = append(errs, fmt.Errorf("%w: %s seasons %v disagree with games", ErrInvariant, key, e.Seasons))
		}
		if !sameSet(e.Players, players) {
			errs = append(errs, fmt.Errorf("%w: %s players %v disagree with games", ErrInvariant, key, e.Players))
		}
	}
	return errors.Join(errs...)
}

func sameSet(list []string, set map[string]struct{}) bool {
	distinct := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := set[s]; !ok {
			return false
		}
		distinct[s] = struct{}{}
	}
	return len(distinct) == len(set) && len(distinct) == len(list)
}
