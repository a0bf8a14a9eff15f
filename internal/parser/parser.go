// Package parser reads raw box-score rows from provider CSV exports.
package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/uniqorn/internal/model"
)

// Column aliases, first match wins. Providers disagree on names for the date
// and team columns.
var columns = map[string][]string{
	"personId":      {"personId", "PLAYER_ID"},
	"firstName":     {"firstName"},
	"lastName":      {"lastName"},
	"gameDate":      {"gameDateTimeEst", "gameDate", "GAME_DATE"},
	"team":          {"playerteamName", "teamName"},
	"opponent":      {"opponentteamName", "opponentTeamName"},
	"points":        {"points", "PTS"},
	"assists":       {"assists", "AST"},
	"reboundsTotal": {"reboundsTotal", "REB"},
	"rebounds":      {"rebounds"},
	"blocks":        {"blocks", "BLK"},
	"steals":        {"steals", "STL"},
}

var required = []string{"personId", "gameDate", "points", "assists"}

// ReadFile opens path and reads every row. Files ending in .zst are
// decompressed on the fly.
func ReadFile(path string) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return Read(r)
}

// Read parses a header-led CSV stream. Columns may appear in any order and
// unknown columns are ignored. Short records are padded with blanks so that a
// ragged row becomes a normalizer skip instead of a read failure.
func Read(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	pos := resolve(header)
	for _, name := range required {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	_, hasReb := pos["reboundsTotal"]
	_, hasRebAlt := pos["rebounds"]
	if !hasReb && !hasRebAlt {
		return nil, fmt.Errorf("%w: reboundsTotal", ErrMissingColumn)
	}

	var rows []model.RawRow
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := pos[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, model.RawRow{
			PersonID:      get("personId"),
			FirstName:     get("firstName"),
			LastName:      get("lastName"),
			GameDate:      get("gameDate"),
			Team:          get("team"),
			Opponent:      get("opponent"),
			Points:        get("points"),
			Assists:       get("assists"),
			ReboundsTotal: get("reboundsTotal"),
			Rebounds:      get("rebounds"),
			Blocks:        get("blocks"),
			Steals:        get("steals"),
		})
	}
	return rows, nil
}

func resolve(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	pos := make(map[string]int, len(columns))
	for name, aliases := range columns {
		for _, a := range aliases {
			if i, ok := idx[a]; ok {
				pos[name] = i
				break
			}
		}
	}
	return pos
}
