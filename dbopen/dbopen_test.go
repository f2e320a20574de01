package dbopen_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/surveypipe/dbopen"
)

func TestOpenDefaults(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	// :memory: may report "memory" instead of "wal"; the PRAGMA still ran.
	if journalMode != "wal" && journalMode != "memory" {
		t.Fatalf("journal_mode = %q, want wal or memory", journalMode)
	}

	checks := []struct {
		pragma string
		want   int
	}{
		{"foreign_keys", 1},
		{"synchronous", 1}, // NORMAL
		{"busy_timeout", 10_000},
	}
	for _, c := range checks {
		var got int
		if err := db.QueryRow("PRAGMA " + c.pragma).Scan(&got); err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("%s = %d, want %d", c.pragma, got, c.want)
		}
	}
}

func TestPragmaOptions(t *testing.T) {
	tests := []struct {
		name   string
		opt    dbopen.Option
		pragma string
		want   int
	}{
		{"busy timeout", dbopen.WithBusyTimeout(5000), "busy_timeout", 5000},
		{"foreign keys off", dbopen.WithoutForeignKeys(), "foreign_keys", 0},
		{"cache size", dbopen.WithCacheSize(-64000), "cache_size", -64000},
		{"synchronous full", dbopen.WithSynchronous("FULL"), "synchronous", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbopen.OpenMemory(t, tt.opt)
			var got int
			if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%s = %d, want %d", tt.pragma, got, tt.want)
			}
		})
	}
}

func TestWithSchema(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(
		`CREATE TABLE snapshots (id TEXT PRIMARY KEY, payload TEXT);`))

	if _, err := db.Exec(`INSERT INTO snapshots (id, payload) VALUES ('a', 'x')`); err != nil {
		t.Fatalf("insert into schema-created table: %v", err)
	}

	var payload string
	if err := db.QueryRow(`SELECT payload FROM snapshots WHERE id = 'a'`).Scan(&payload); err != nil {
		t.Fatal(err)
	}
	if payload != "x" {
		t.Fatalf("payload = %q, want x", payload)
	}
}

func TestWithSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte(`CREATE TABLE from_file (id TEXT PRIMARY KEY);`), 0o644); err != nil {
		t.Fatal(err)
	}

	db := dbopen.OpenMemory(t, dbopen.WithSchemaFile(path))
	if _, err := db.Exec(`INSERT INTO from_file (id) VALUES ('a')`); err != nil {
		t.Fatalf("insert into schema-file table: %v", err)
	}
}

func TestWithMkdirAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "sessions.db")

	db, err := dbopen.Open(path, dbopen.WithMkdirAll())
	if err != nil {
		t.Fatalf("open with mkdirall: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("constraint failed"), false},
		{errors.New("SQLITE_BUSY"), true},
		{errors.New("stmt: SQLITE_BUSY (5)"), true},
		{errors.New("database is locked"), true},
		{errors.New("database table is locked"), true},
	}
	for _, tt := range tests {
		if got := dbopen.IsBusy(tt.err); got != tt.want {
			t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestExec(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(`CREATE TABLE writes (id TEXT PRIMARY KEY)`))

	res, err := dbopen.Exec(context.Background(), db, `INSERT INTO writes (id) VALUES (?)`, "a")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("rows affected = %d, want 1", n)
	}
}

func TestExecCancelledContext(t *testing.T) {
	db := dbopen.OpenMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := dbopen.Exec(ctx, db, `SELECT 1`); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
