// Package season maps game dates onto NBA regular-season labels.
package season

import (
	"sort"
	"time"

	"github.com/pable/uniqorn/internal/model"
)

// Range is one regular season, inclusive on both ends.
type Range struct {
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether t (day granularity) falls inside the season.
func (r Range) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

var table = [...]struct{ label, start, end string }{
	{"1973-74", "1973-10-09", "1974-03-27"},
	{"1974-75", "1974-10-17", "1975-04-06"},
	{"1975-76", "1975-10-23", "1976-04-11"},
	{"1976-77", "1976-10-21", "1977-04-10"},
	{"1977-78", "1977-10-18", "1978-04-09"},
	{"1978-79", "1978-10-12", "1979-04-07"},
	{"1979-80", "1979-10-12", "1980-04-06"},
	{"1980-81", "1980-10-10", "1981-04-05"},
	{"1981-82", "1981-10-09", "1982-04-03"},
	{"1982-83", "1982-10-08", "1983-04-06"},
	{"1983-84", "1983-10-11", "1984-04-08"},
	{"1984-85", "1984-10-12", "1985-04-07"},
	{"1985-86", "1985-10-25", "1986-04-06"},
	{"1986-87", "1986-10-31", "1987-04-04"},
	{"1987-88", "1987-11-06", "1988-04-09"},
	{"1988-89", "1988-11-04", "1989-04-23"},
	{"1989-90", "1989-11-03", "1990-04-22"},
	{"1990-91", "1990-11-02", "1991-04-21"},
	{"1991-92", "1991-11-01", "1992-04-19"},
	{"1992-93", "1992-11-06", "1993-04-25"},
	{"1993-94", "1993-11-05", "1994-04-24"},
	{"1994-95", "1994-11-04", "1995-04-23"},
	{"1995-96", "1995-11-03", "1996-04-21"},
	{"1996-97", "1996-11-01", "1997-04-20"},
	{"1997-98", "1997-10-31", "1998-04-19"},
	{"1998-99", "1998-10-30", "1999-04-18"},
	{"1999-00", "1999-11-02", "2000-04-16"},
	{"2000-01", "2000-10-31", "2001-04-15"},
	{"2001-02", "2001-10-30", "2002-04-14"},
	{"2002-03", "2002-10-29", "2003-04-16"},
	{"2003-04", "2003-10-28", "2004-04-14"},
	{"2004-05", "2004-11-02", "2005-04-20"},
	{"2005-06", "2005-11-01", "2006-04-19"},
	{"2006-07", "2006-10-31", "2007-04-18"},
	{"2007-08", "2007-10-30", "2008-04-16"},
	{"2008-09", "2008-10-28", "2009-04-15"},
	{"2009-10", "2009-10-27", "2010-04-14"},
	{"2010-11", "2010-10-26", "2011-04-13"},
	{"2011-12", "2011-12-25", "2012-04-26"},
	{"2012-13", "2012-10-30", "2013-04-17"},
	{"2013-14", "2013-10-29", "2014-04-16"},
	{"2014-15", "2014-10-28", "2015-04-15"},
	{"2015-16", "2015-10-27", "2016-04-13"},
	{"2016-17", "2016-10-25", "2017-04-12"},
	{"2017-18", "2017-10-17", "2018-04-11"},
	{"2018-19", "2018-10-16", "2019-04-10"},
	{"2019-20", "2019-10-22", "2020-03-11"},
	{"2020-21", "2020-12-22", "2021-05-16"},
	{"2021-22", "2021-10-19", "2022-04-10"},
	{"2022-23", "2022-10-18", "2023-04-09"},
	{"2023-24", "2023-10-24", "2024-04-14"},
	{"2024-25", "2024-10-22", "2025-04-13"},
	{"2025-26", "2025-10-21", "2026-04-12"},
}

var ranges []Range

func init() {
	ranges = make([]Range, 0, len(table))
	for _, s := range table {
		ranges = append(ranges, Range{
			Label: s.label,
			Start: mustDate(s.start),
			End:   mustDate(s.end),
		})
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic("season: bad table date " + s)
	}
	return t
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Assign returns the season label containing t, or "" when t falls in an
// offseason or outside the table.
func Assign(t time.Time) string {
	d := day(t)
	i := sort.Search(len(ranges), func(i int) bool { return !ranges[i].End.Before(d) })
	if i < len(ranges) && ranges[i].Contains(d) {
		return ranges[i].Label
	}
	return ""
}

// Lookup returns the range for a season label.
func Lookup(label string) (Range, bool) {
	for _, r := range ranges {
		if r.Label == label {
			return r, true
		}
	}
	return Range{}, false
}

// Labels returns every known season label, oldest first.
func Labels() []string {
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.Label
	}
	return out
}

// Latest returns the most recent season in the table.
func Latest() Range {
	return ranges[len(ranges)-1]
}

// Known reports whether label names a season in the table.
func Known(label string) bool {
	_, ok := Lookup(label)
	return ok
}
