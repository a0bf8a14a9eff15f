package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pable/uniqorn/internal/bucket"
	"github.com/pable/uniqorn/internal/index"
	"github.com/pable/uniqorn/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleIndex() *index.Index {
	x := index.New()
	games := []model.GameRecord{
		{Player: "LeBron James", Date: "2019-12-01", Stats: "20/5/10/1/1", Team: "Lakers", Opponent: "Jazz", Season: "2019-20", PersonID: 2544},
		{Player: "Stephen Curry", Date: "2019-12-02", Stats: "31/7/5/0/2", Team: "Warriors", Opponent: "Kings", Season: "2019-20", PersonID: 201939},
		{Player: "Nikola Jokic", Date: "2020-12-23", Stats: "18/4/9/1/0", Team: "Nuggets", Opponent: "Kings", Season: "2020-21", PersonID: 203999},
	}
	for _, g := range games {
		sv, _ := g.StatVector()
		k := bucket.KeyOf(sv).String()
		if e, ok := x.Get(k); ok {
			e.Prepend(g)
			continue
		}
		x.Put(k, index.NewEntry(g))
	}
	return x
}

func assertSameIndex(t *testing.T, got, want *index.Index) {
	t.Helper()
	if !reflect.DeepEqual(got.Keys(), want.Keys()) {
		t.Fatalf("keys %v, want %v", got.Keys(), want.Keys())
	}
	for _, k := range want.Keys() {
		g, _ := got.Get(k)
		w, _ := want.Get(k)
		if !reflect.DeepEqual(g, w) {
			t.Errorf("bucket %s:\n got %+v\nwant %+v", k, g, w)
		}
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openMemDB(t)

	exists, err := db.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("fresh database should have no snapshot")
	}
	empty, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("expected empty index, got %d buckets", empty.Len())
	}

	want := sampleIndex()
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameIndex(t, got, want)

	if exists, _ := db.Exists(ctx); !exists {
		t.Error("expected snapshot after Save")
	}
	at, err := db.SavedAt(ctx)
	if err != nil || time.Since(at) > time.Minute {
		t.Errorf("SavedAt = %v, %v", at, err)
	}
}

func TestSQLiteSaveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	db := openMemDB(t)

	if err := db.Save(ctx, sampleIndex()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	smaller := index.New()
	smaller.Put("(0, 0, 0, 0, 0)", index.NewEntry(model.GameRecord{Player: "A B", Date: "2020-01-01", Stats: "0/0/0/0/0", Season: "2019-20"}))
	if err := db.Save(ctx, smaller); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameIndex(t, got, smaller)

	counts, err := db.GetSeasonCounts(ctx)
	if err != nil {
		t.Fatalf("GetSeasonCounts: %v", err)
	}
	if len(counts) != 1 || counts[0].Games != 1 {
		t.Errorf("season counts = %+v", counts)
	}
}

func TestQueryRaw(t *testing.T) {
	ctx := context.Background()
	db := openMemDB(t)
	if err := db.Save(ctx, sampleIndex()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cols, rows, err := db.QueryRaw("SELECT player, NULL AS empty_col FROM games WHERE season = '2020-21'")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "player" {
		t.Errorf("cols = %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "Nikola Jokic" || rows[0][1] != "NULL" {
		t.Errorf("rows = %v", rows)
	}
	if _, _, err := db.QueryRaw("SELECT * FROM nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for pragma, want := range map[string]string{
		"PRAGMA journal_mode": "wal",
		"PRAGMA foreign_keys": "1",
	} {
		_, rows, err := db.QueryRaw(pragma)
		if err != nil {
			t.Fatalf("%s: %v", pragma, err)
		}
		if len(rows) != 1 || rows[0][0] != want {
			t.Errorf("%s = %v, want %s", pragma, rows, want)
		}
	}

	ctx := context.Background()
	if err := db.Save(ctx, sampleIndex()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := db.conn.Exec("DELETE FROM buckets"); err != nil {
		t.Fatalf("delete buckets: %v", err)
	}
	_, rows, err := db.QueryRaw("SELECT COUNT(*) FROM games")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "0" {
		t.Errorf("games left after bucket delete: %s (cascade not enforced)", rows[0][0])
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"index.json", "index.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := NewJSONStore(path)

			if ok, err := s.Exists(ctx); err != nil || ok {
				t.Fatalf("Exists before save = %v, %v", ok, err)
			}
			x, err := s.Load(ctx)
			if err != nil || x.Len() != 0 {
				t.Fatalf("Load absent = %d buckets, %v", x.Len(), err)
			}

			want := sampleIndex()
			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			assertSameIndex(t, got, want)

			entries, _ := os.ReadDir(filepath.Dir(path))
			if len(entries) != 1 {
				t.Errorf("temp files left behind: %v", entries)
			}
		})
	}
}

func TestJSONStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewJSONStore(path).Load(context.Background())
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestJSONStoreRejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"null entry":    `{"(3, 1, 2, 0, 0)": null}`,
		"missing count": `{"(3, 1, 2, 0, 0)": {"games": [], "seasons": [], "players": []}}`,
		"missing games": `{"(3, 1, 2, 0, 0)": {"count": 1, "seasons": [], "players": []}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "index.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			x, err := NewJSONStore(path).Load(context.Background())
			if !errors.Is(err, ErrCorrupt) || !errors.Is(err, index.ErrMalformed) {
				t.Fatalf("expected ErrCorrupt wrapping ErrMalformed, got %v", err)
			}
			if x != nil {
				t.Error("expected no index on error")
			}
		})
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	want := sampleIndex().Summary(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "abc")
	if err := WriteSummary(path, want); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	got, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore("json", filepath.Join(dir, "i.json"))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	s.Close()

	s, err = OpenStore("sqlite", filepath.Join(dir, "i.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	s.Close()

	if _, err := OpenStore("mongo", "x"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
