package rarity

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/internal/storage"
)

// UniqornKey identifies a uniqorn game across snapshots.
type UniqornKey struct {
	First    string
	Last     string
	Date     string
	Points   int
	Assists  int
	Rebounds int
	Blocks   int
	Steals   int
}

// String renders First_Last_date_p_a_r_b_s.
func (k UniqornKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%d_%d_%d_%d_%d",
		k.First, k.Last, k.Date, k.Points, k.Assists, k.Rebounds, k.Blocks, k.Steals)
}

func (k UniqornKey) less(o UniqornKey) bool {
	switch {
	case k.First != o.First:
		return k.First < o.First
	case k.Last != o.Last:
		return k.Last < o.Last
	case k.Date != o.Date:
		return k.Date < o.Date
	case k.Points != o.Points:
		return k.Points < o.Points
	case k.Assists != o.Assists:
		return k.Assists < o.Assists
	case k.Rebounds != o.Rebounds:
		return k.Rebounds < o.Rebounds
	case k.Blocks != o.Blocks:
		return k.Blocks < o.Blocks
	}
	return k.Steals < o.Steals
}

// Snapshot is the set of all-time uniqorns at one point in time.
type Snapshot map[UniqornKey]struct{}

// TakeSnapshot collects the current all-time uniqorns of x.
func TakeSnapshot(x *index.Index) Snapshot {
	s := make(Snapshot)
	for _, u := range x.Uniqorns("") {
		sv, err := u.Game.StatVector()
		if err != nil {
			continue
		}
		first, last := model.SplitName(u.Game.Player)
		s[UniqornKey{
			First: first, Last: last, Date: u.Game.Date,
			Points: sv.Points, Assists: sv.Assists, Rebounds: sv.Rebounds,
			Blocks: sv.Blocks, Steals: sv.Steals,
		}] = struct{}{}
	}
	return s
}

// Sorted returns the snapshot's keys in canonical order.
func (s Snapshot) Sorted() []UniqornKey {
	out := make([]UniqornKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Change is one entry of the delta report.
type Change struct {
	Key       string `json:"key"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	GameDate  string `json:"game_date"`
	Points    int    `json:"points"`
	Assists   int    `json:"assists"`
	Rebounds  int    `json:"rebounds"`
	Blocks    int    `json:"blocks"`
	Steals    int    `json:"steals"`
}

func changeOf(k UniqornKey) Change {
	return Change{
		Key: k.String(), FirstName: k.First, LastName: k.Last, GameDate: k.Date,
		Points: k.Points, Assists: k.Assists, Rebounds: k.Rebounds, Blocks: k.Blocks, Steals: k.Steals,
	}
}

func (c Change) uniqornKey() UniqornKey {
	return UniqornKey{
		First: c.FirstName, Last: c.LastName, Date: c.GameDate,
		Points: c.Points, Assists: c.Assists, Rebounds: c.Rebounds, Blocks: c.Blocks, Steals: c.Steals,
	}
}

// Delta lists uniqorns that appeared and those that stopped being unique.
type Delta struct {
	New    []Change `json:"new"`
	Broken []Change `json:"broken"`
}

// Diff compares two snapshots: New = current - previous, Broken = previous - current.
func Diff(current, previous Snapshot) Delta {
	d := Delta{New: []Change{}, Broken: []Change{}}
	for _, k := range current.Sorted() {
		if _, ok := previous[k]; !ok {
			d.New = append(d.New, changeOf(k))
		}
	}
	for _, k := range previous.Sorted() {
		if _, ok := current[k]; !ok {
			d.Broken = append(d.Broken, changeOf(k))
		}
	}
	return d
}

// SaveSnapshot writes s to path as a sorted list.
func SaveSnapshot(path string, s Snapshot) error {
	keys := s.Sorted()
	list := make([]Change, len(keys))
	for i, k := range keys {
		list[i] = changeOf(k)
	}
	return storage.WriteJSON(path, list)
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. A missing file is an
// empty snapshot, so the first run reports every uniqorn as new.
func LoadSnapshot(path string) (Snapshot, error) {
	var list []Change
	err := storage.ReadJSON(path, &list)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	s := make(Snapshot, len(list))
	for _, c := range list {
		s[c.uniqornKey()] = struct{}{}
	}
	return s, nil
}
