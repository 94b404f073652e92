package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_SortedByVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_add_indexes.up.sql":      {Data: []byte("CREATE INDEX x ON t (a);")},
		"sql/migrations/0001_bookstore_schema.up.sql": {Data: []byte("CREATE TABLE t (a INT);")},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("expected versions 1,2 got %d,%d", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "bookstore_schema" {
		t.Fatalf("unexpected migration name %q", migrations[0].Name)
	}
}

func TestLoadMigrationsFromFS_RejectsDuplicateVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_first.up.sql":  {Data: []byte("SELECT 1;")},
		"sql/migrations/0001_second.up.sql": {Data: []byte("SELECT 2;")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestLoadMigrationsFromFS_RejectsBadName(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/schema.sql": {Data: []byte("SELECT 1;")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil || !strings.Contains(err.Error(), "invalid migration file name") {
		t.Fatalf("expected invalid name error, got %v", err)
	}
}

func TestLoadMigrationsFromFS_RejectsEmptyFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_empty.up.sql": {Data: []byte("   \n")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil || !strings.Contains(err.Error(), "migration file is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestEmbeddedMigrations_AreValid(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations are invalid: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].Version != 1 {
		t.Fatalf("expected first migration version 1, got %d", migrations[0].Version)
	}
}
