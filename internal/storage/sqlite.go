package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// DB is the SQLite index store. Each Save replaces the whole snapshot in a
// single transaction.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Exists reports whether a snapshot has been saved.
func (db *DB) Exists(ctx context.Context) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(1) FROM meta WHERE key = 'saved_at'").Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SavedAt returns the time of the last Save, zero if never saved.
func (db *DB) SavedAt(ctx context.Context) (time.Time, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'saved_at'").Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// Load reads the snapshot. An empty database yields an empty index.
func (db *DB) Load(ctx context.Context) (*index.Index, error) {
	x := index.New()

	rows, err := db.conn.QueryContext(ctx, "SELECT bucket_key, count, seasons, players FROM buckets")
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key, seasons, players string
			e                     index.Entry
		)
		if err := rows.Scan(&key, &e.Count, &seasons, &players); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(seasons), &e.Seasons); err != nil {
			return nil, fmt.Errorf("%w: %s seasons: %v", ErrCorrupt, key, err)
		}
		if err := json.Unmarshal([]byte(players), &e.Players); err != nil {
			return nil, fmt.Errorf("%w: %s players: %v", ErrCorrupt, key, err)
		}
		x.Put(key, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grows, err := db.conn.QueryContext(ctx, `
		SELECT bucket_key, player, game_date, stats, team, opponent, season, person_id
		FROM games ORDER BY bucket_key, position`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer grows.Close()
	for grows.Next() {
		var (
			key string
			g   model.GameRecord
		)
		if err := grows.Scan(&key, &g.Player, &g.Date, &g.Stats, &g.Team, &g.Opponent, &g.Season, &g.PersonID); err != nil {
			return nil, err
		}
		e, ok := x.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: game for unknown bucket %s", ErrCorrupt, key)
		}
		e.Games = append(e.Games, g)
	}
	return x, grows.Err()
}

// Save replaces the stored snapshot with x inside one transaction.
func (db *DB) Save(ctx context.Context, x *index.Index) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM games"); err != nil {
		return fmt.Errorf("clear games: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM buckets"); err != nil {
		return fmt.Errorf("clear buckets: %w", err)
	}

	bstmt, err := tx.PrepareContext(ctx, "INSERT INTO buckets(bucket_key, count, seasons, players) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer bstmt.Close()
	gstmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games(bucket_key, position, player, game_date, stats, team, opponent, season, person_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer gstmt.Close()

	for _, key := range x.Keys() {
		e, _ := x.Get(key)
		seasons, _ := json.Marshal(nonNil(e.Seasons))
		players, _ := json.Marshal(nonNil(e.Players))
		if _, err := bstmt.ExecContext(ctx, key, e.Count, string(seasons), string(players)); err != nil {
			return fmt.Errorf("insert bucket %s: %w", key, err)
		}
		for i, g := range e.Games {
			_, err := gstmt.ExecContext(ctx, key, i, g.Player, g.Date, g.Stats, g.Team, g.Opponent, g.Season, g.PersonID)
			if err != nil {
				return fmt.Errorf("insert game %s %s: %w", g.Player, g.Date, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta(key, value) VALUES ('saved_at', ?)",
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}
	return tx.Commit()
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
