package season

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAssign(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2019-10-22", "2019-20"},
		{"2020-03-11", "2019-20"},
		{"2020-03-12", ""},
		{"2020-08-01", ""},
		{"2020-12-22", "2020-21"},
		{"2011-12-24", ""},
		{"2011-12-25", "2011-12"},
		{"1973-10-09", "1973-74"},
		{"1960-01-01", ""},
		{"2026-04-12", "2025-26"},
		{"2026-04-13", ""},
	}
	for _, c := range cases {
		if got := Assign(date(c.in)); got != c.want {
			t.Errorf("Assign(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAssignIgnoresTimeOfDay(t *testing.T) {
	ts := time.Date(2020, 3, 11, 22, 30, 0, 0, time.UTC)
	if got := Assign(ts); got != "2019-20" {
		t.Errorf("Assign(%v) = %q, want 2019-20", ts, got)
	}
}

func TestLabelsOrdered(t *testing.T) {
	ls := Labels()
	if len(ls) != 53 {
		t.Fatalf("expected 53 seasons, got %d", len(ls))
	}
	if ls[0] != "1973-74" || ls[len(ls)-1] != "2025-26" {
		t.Errorf("unexpected ends %s..%s", ls[0], ls[len(ls)-1])
	}
	for i := 1; i < len(ranges); i++ {
		if !ranges[i].Start.After(ranges[i-1].End) {
			t.Errorf("season %s overlaps %s", ranges[i].Label, ranges[i-1].Label)
		}
	}
	if Latest().Label != "2025-26" {
		t.Errorf("Latest = %s", Latest().Label)
	}
	if !Known("1999-00") || Known("1999-2000") {
		t.Error("Known mismatch")
	}
}
