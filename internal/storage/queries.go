package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SeasonCount is the number of stored games in one season.
type SeasonCount struct {
	Season string
	Games  int
}

// GetSeasonCounts returns per-season game counts straight from the games table.
func (db *DB) GetSeasonCounts(ctx context.Context) ([]SeasonCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT season, COUNT(*) FROM games
		GROUP BY season ORDER BY season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonCount
	for rows.Next() {
		var sc SeasonCount
		if err := rows.Scan(&sc.Season, &sc.Games); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// QueryRaw executes an arbitrary SQL query and returns column names and all
// rows as formatted strings. NULL values are rendered as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	return db.QueryRawContext(context.Background(), query)
}

// QueryRawContext is QueryRaw with a caller-supplied context.
func (db *DB) QueryRawContext(ctx context.Context, query string) ([]string, [][]string, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
