package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/duckdb/duckdb-go/v2"
)

const embeddedVersions = 2

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, table := range []string{"products", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if _, err := db.Exec("INSERT INTO products (name, price, reference) VALUES ('Bolt', 0.10, 'B-1')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec("INSERT INTO products (name, price, reference) VALUES ('Other', 1, 'B-1')"); err == nil {
		t.Error("duplicate reference accepted")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db)
	ctx := context.Background()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != embeddedVersions || pending != 0 {
		t.Errorf("expected version=%d pending=0, got version=%d pending=%d", embeddedVersions, cur, pending)
	}
}

func TestStatusReportsCorrectly(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db)
	ctx := context.Background()

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 0 || pending != embeddedVersions {
		t.Errorf("before run: expected version=0 pending=%d, got version=%d pending=%d", embeddedVersions, cur, pending)
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cur, pending, err = r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != embeddedVersions || pending != 0 {
		t.Errorf("after run: expected version=%d pending=0, got version=%d pending=%d", embeddedVersions, cur, pending)
	}
}

func TestRunRollsBackFailedMigration(t *testing.T) {
	db := openTestDB(t)
	r := &Runner{db: db, files: fstest.MapFS{
		"migrations/001_ok.sql":     {Data: []byte("CREATE TABLE widgets (id INTEGER);")},
		"migrations/002_broken.sql": {Data: []byte("CREATE TABLE ;")},
	}}
	ctx := context.Background()

	if err := r.Run(ctx); err == nil {
		t.Fatal("expected error from broken migration")
	}
	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 1 || pending != 1 {
		t.Errorf("expected version=1 pending=1, got version=%d pending=%d", cur, pending)
	}
}

func TestLoadMigrationsRejectsDuplicateVersions(t *testing.T) {
	r := &Runner{files: fstest.MapFS{
		"migrations/001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_b.sql": {Data: []byte("SELECT 2;")},
	}}
	if _, err := r.loadMigrations(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}
