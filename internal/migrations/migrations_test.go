package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/reveal/internal/database"
	"github.com/playperu/reveal/internal/migrations"
)

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	n, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	if n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}

	for _, table := range []string{"viewers", "preferences"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	n, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
	if n != 0 {
		t.Errorf("second run applied = %d, want 0", n)
	}
}

func TestViewerCascade(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO viewers (id, slug, token, created_at) VALUES ('v1', 'lima', 't1', 'now')`); err != nil {
		t.Fatalf("insert viewer: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO preferences (viewer_id, theme, updated_at) VALUES ('v1', 'rose', 'now')`); err != nil {
		t.Fatalf("insert preference: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM viewers WHERE id = 'v1'`); err != nil {
		t.Fatalf("delete viewer: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("preferences left = %d, want 0", n)
	}
}
