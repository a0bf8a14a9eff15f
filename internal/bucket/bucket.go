// Package bucket discretizes five-category statlines into bucket keys.
//
// Each category uses fixed bin edges. Bins are right-closed with the first bin
// including the floor, matching the range labels: points bin 0 is 0-5, bin 1
// is 6-10, and the last bin (51+) is open-ended.
package bucket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pable/uniqorn/internal/model"
)

// Category indexes the five stat dimensions of a Key.
type Category int

const (
	Points Category = iota
	Assists
	Rebounds
	Blocks
	Steals
)

// NumCategories is the arity of a Key.
const NumCategories = 5

var categoryNames = [NumCategories]string{"PTS", "AST", "REB", "BLK", "STL"}

func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return "?"
	}
	return categoryNames[c]
}

// Finite upper edges per category; the implicit last edge is +inf.
var edges = [NumCategories][]int{
	Points:   {5, 10, 15, 20, 25, 30, 40, 50},
	Assists:  {2, 5, 8, 12, 20},
	Rebounds: {2, 5, 10, 15, 20},
	Blocks:   {1, 3, 5, 7},
	Steals:   {1, 3, 5, 7},
}

var labels = [NumCategories][]string{
	Points:   {"0-5", "6-10", "11-15", "16-20", "21-25", "26-30", "31-40", "41-50", "51+"},
	Assists:  {"0-2", "3-5", "6-8", "9-12", "13-20", "21+"},
	Rebounds: {"0-2", "3-5", "6-10", "11-15", "16-20", "21+"},
	Blocks:   {"0-1", "2-3", "4-5", "6-7", "8+"},
	Steals:   {"0-1", "2-3", "4-5", "6-7", "8+"},
}

// Key is the discretized signature of a statline.
type Key [NumCategories]int

// KeyOf maps a statline to its bucket key.
func KeyOf(s model.StatVector) Key {
	return Key{
		Bin(Points, s.Points),
		Bin(Assists, s.Assists),
		Bin(Rebounds, s.Rebounds),
		Bin(Blocks, s.Blocks),
		Bin(Steals, s.Steals),
	}
}

// Bin returns the bin index of value v in category c. Values at or below
// zero land in bin 0; values above the last finite edge land in the top bin.
func Bin(c Category, v int) int {
	for i, upper := range edges[c] {
		if v <= upper {
			return i
		}
	}
	return len(edges[c])
}

// NumBins returns the number of bins for category c.
func NumBins(c Category) int {
	return len(edges[c]) + 1
}

// Labels returns the human-readable range labels for category c.
func Labels(c Category) []string {
	out := make([]string, len(labels[c]))
	copy(out, labels[c])
	return out
}

// Label returns the range label for bin i of category c, clamping indices
// outside the table to the nearest end.
func Label(c Category, i int) string {
	ls := labels[c]
	switch {
	case i < 0:
		return ls[0]
	case i >= len(ls):
		return ls[len(ls)-1]
	}
	return ls[i]
}

// Describe renders a key as "PTS 16-20 | AST 3-5 | REB 6-10 | BLK 0-1 | STL 0-1".
func Describe(k Key) string {
	parts := make([]string, NumCategories)
	for c := Category(0); c < NumCategories; c++ {
		parts[c] = c.String() + " " + Label(c, k[c])
	}
	return strings.Join(parts, " | ")
}

// String renders the canonical persisted form "(i1, i2, i3, i4, i5)".
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range k {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(')')
	return b.String()
}

// Valid reports whether every component is a bin index of its category.
func (k Key) Valid() bool {
	for c := Category(0); c < NumCategories; c++ {
		if k[c] < 0 || k[c] >= NumBins(c) {
			return false
		}
	}
	return true
}

// ParseKey parses the canonical form produced by Key.String. Whitespace
// around components is tolerated, and so are the bare "1,2,3,4,5" and
// "1/2/3/4/5" forms typed on a command line.
func ParseKey(s string) (Key, error) {
	var k Key
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")
	sep := ","
	if !strings.Contains(trimmed, ",") {
		sep = "/"
	}
	parts := strings.Split(trimmed, sep)
	if len(parts) != NumCategories {
		return k, fmt.Errorf("%w: %q has %d components", ErrInvalidKey, s, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q component %d: %v", ErrInvalidKey, s, i, err)
		}
		k[i] = v
	}
	return k, nil
}
