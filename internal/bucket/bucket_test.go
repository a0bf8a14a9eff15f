package bucket

import (
	"errors"
	"testing"

	"github.com/pable/uniqorn/internal/model"
)

func TestKeyOfBoundaries(t *testing.T) {
	cases := []struct {
		stats model.StatVector
		want  Key
	}{
		{model.StatVector{Points: 20, Assists: 5, Rebounds: 10, Blocks: 1, Steals: 1}, Key{3, 1, 2, 0, 0}},
		{model.StatVector{}, Key{0, 0, 0, 0, 0}},
		{model.StatVector{Points: 5, Assists: 2, Rebounds: 2, Blocks: 1, Steals: 1}, Key{0, 0, 0, 0, 0}},
		{model.StatVector{Points: 6, Assists: 3, Rebounds: 3, Blocks: 2, Steals: 2}, Key{1, 1, 1, 1, 1}},
		{model.StatVector{Points: 51, Assists: 21, Rebounds: 21, Blocks: 8, Steals: 8}, Key{8, 5, 5, 4, 4}},
		{model.StatVector{Points: 81, Assists: 30, Rebounds: 55, Blocks: 17, Steals: 11}, Key{8, 5, 5, 4, 4}},
		{model.StatVector{Points: 50, Assists: 20, Rebounds: 20, Blocks: 7, Steals: 7}, Key{7, 4, 4, 3, 3}},
		{model.StatVector{Points: -3, Assists: -1}, Key{0, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		if got := KeyOf(c.stats); got != c.want {
			t.Errorf("KeyOf(%s) = %v, want %v", c.stats, got, c.want)
		}
	}
}

func TestBinMonotonic(t *testing.T) {
	for c := Category(0); c < NumCategories; c++ {
		prev := Bin(c, 0)
		for v := 1; v <= 120; v++ {
			b := Bin(c, v)
			if b < prev {
				t.Fatalf("%s: Bin(%d)=%d < Bin(%d)=%d", c, v, b, v-1, prev)
			}
			if b < 0 || b >= NumBins(c) {
				t.Fatalf("%s: Bin(%d)=%d out of range", c, v, b)
			}
			prev = b
		}
		if prev != NumBins(c)-1 {
			t.Errorf("%s: large values should reach the top bin, got %d", c, prev)
		}
	}
}

func TestLabelsMatchBins(t *testing.T) {
	for c := Category(0); c < NumCategories; c++ {
		if got := len(Labels(c)); got != NumBins(c) {
			t.Errorf("%s: %d labels for %d bins", c, got, NumBins(c))
		}
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(Key{3, 1, 2, 0, 0})
	want := "PTS 16-20 | AST 3-5 | REB 6-10 | BLK 0-1 | STL 0-1"
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}

	// Out-of-range indices clamp rather than fail.
	got = Describe(Key{-1, 99, 6, 5, -7})
	want = "PTS 0-5 | AST 21+ | REB 21+ | BLK 8+ | STL 0-1"
	if got != want {
		t.Errorf("Describe clamped = %q, want %q", got, want)
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	k := Key{8, 5, 5, 4, 4}
	if s := k.String(); s != "(8, 5, 5, 4, 4)" {
		t.Fatalf("String = %q", s)
	}
	back, err := ParseKey(k.String())
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if back != k {
		t.Errorf("round trip = %v, want %v", back, k)
	}

	for _, in := range []string{"3,1,2,0,0", "3/1/2/0/0", " (3,1, 2 ,0,0) "} {
		got, err := ParseKey(in)
		if err != nil {
			t.Errorf("ParseKey(%q): %v", in, err)
			continue
		}
		if got != (Key{3, 1, 2, 0, 0}) {
			t.Errorf("ParseKey(%q) = %v", in, got)
		}
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "(1, 2, 3)", "(a, b, c, d, e)", "1,2,3,4,5,6"} {
		if _, err := ParseKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParseKey(%q) err = %v, want ErrInvalidKey", in, err)
		}
	}
}

func TestKeyValid(t *testing.T) {
	if !(Key{8, 5, 5, 4, 4}).Valid() {
		t.Error("top bins should be valid")
	}
	if (Key{9, 0, 0, 0, 0}).Valid() {
		t.Error("points bin 9 should be invalid")
	}
	if (Key{0, 0, 0, 0, -1}).Valid() {
		t.Error("negative bin should be invalid")
	}
}
