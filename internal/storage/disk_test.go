package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabaseDiskUsage(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "records.db")
	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := DatabaseDiskUsage(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("db only: got %d bytes, want 5", got)
	}

	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DatabaseDiskUsage(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("db+wal: got %d bytes, want 8", got)
	}

	got, err = DatabaseDiskUsage(filepath.Join(dir, "missing.db"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("missing: got %d bytes, want 0", got)
	}

	got, err = DatabaseDiskUsage("")
	if err != nil || got != 0 {
		t.Errorf("empty path: got %d, %v", got, err)
	}
}
