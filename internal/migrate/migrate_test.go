package migrate

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/storage"
)

func noEnv(string) (string, bool) { return "", false }

func openTestDB(t *testing.T) (*storage.SQLiteStorage, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store, db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
}

func TestRestoreAutoStrip(t *testing.T) {
	store, db := openTestDB(t)
	ctx := context.Background()

	mustExec(t, db, `INSERT INTO buildings (id, name, city, state) VALUES (1, '', '', ''), (2, 'Hall', 'Dryden', 'NY')`)
	mustExec(t, db, `INSERT INTO census_1920_records (id, first_name, last_name) VALUES (1, '', 'Smith')`)
	mustExec(t, db, `INSERT INTO settings (key, value) VALUES ('city', 'Trumansburg')`)

	settings, err := config.LoadSettings(ctx, store, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	report, err := RestoreAutoStrip(ctx, store, settings, config.PlaceConfig{City: "Ithaca", State: "NY"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Skipped {
		t.Fatal("restore skipped with settings table present")
	}
	if report.City != "Trumansburg" || report.State != "NY" {
		t.Errorf("place = %s, %s; want Trumansburg, NY", report.City, report.State)
	}
	if report.PlaceFilled != 2 {
		t.Errorf("PlaceFilled = %d, want 2", report.PlaceFilled)
	}

	var name sql.NullString
	var city, state string
	if err := db.QueryRow(`SELECT name, city, state FROM buildings WHERE id = 1`).Scan(&name, &city, &state); err != nil {
		t.Fatal(err)
	}
	if name.Valid {
		t.Errorf("blank name should be NULL, got %q", name.String)
	}
	if city != "Trumansburg" || state != "NY" {
		t.Errorf("building 1 place = %s, %s", city, state)
	}
	if err := db.QueryRow(`SELECT city FROM buildings WHERE id = 2`).Scan(&city); err != nil {
		t.Fatal(err)
	}
	if city != "Dryden" {
		t.Errorf("non-blank city rewritten to %s", city)
	}

	var first sql.NullString
	if err := db.QueryRow(`SELECT first_name FROM census_1920_records WHERE id = 1`).Scan(&first); err != nil {
		t.Fatal(err)
	}
	if first.Valid {
		t.Errorf("blank first_name should be NULL, got %q", first.String)
	}
	if report.BlanksNulled["census_1920_records"] != 1 {
		t.Errorf("census_1920 nulled = %d, want 1", report.BlanksNulled["census_1920_records"])
	}

	again, err := RestoreAutoStrip(ctx, store, settings, config.PlaceConfig{City: "Ithaca", State: "NY"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.PlaceFilled != 0 || again.BlanksNulled["buildings"] != 0 {
		t.Errorf("second run changed rows: %+v", again)
	}
}

func TestRestoreAutoStrip_PlaceFallback(t *testing.T) {
	store, db := openTestDB(t)
	ctx := context.Background()
	mustExec(t, db, `INSERT INTO buildings (id, city, state) VALUES (1, '', '')`)
	mustExec(t, db, `INSERT INTO settings (key, value) VALUES ('city', '  ')`)

	settings, err := config.LoadSettings(ctx, store, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	report, err := RestoreAutoStrip(ctx, store, settings, config.PlaceConfig{City: "Lansing", State: "MI"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.City != "Lansing" || report.State != "MI" {
		t.Errorf("place = %s, %s; want Lansing, MI", report.City, report.State)
	}
}

// fakeStore reports a fixed set of existing tables.
type fakeStore struct {
	tables   map[string]bool
	stored   map[string]string
	nulled   []string
	filled   int
	existErr error
}

func (f *fakeStore) TableExists(_ context.Context, table string) (bool, error) {
	return f.tables[table], f.existErr
}

func (f *fakeStore) FillBlankBuildingPlace(context.Context, string, string) (int64, error) {
	f.filled++
	return 0, nil
}

func (f *fakeStore) NullifyBlankText(_ context.Context, table string) (int64, error) {
	f.nulled = append(f.nulled, table)
	return 0, nil
}

func (f *fakeStore) LoadSettings(context.Context) (map[string]string, error) {
	if !f.tables["settings"] {
		return nil, errors.New("no such table: settings")
	}
	return f.stored, nil
}

// Migrate creates the settings table, as the real schema does.
func (f *fakeStore) Migrate(context.Context) error {
	if f.tables == nil {
		f.tables = map[string]bool{}
	}
	f.tables["settings"] = true
	return nil
}

func TestRestoreAutoStrip_SkipsWithoutSettingsTable(t *testing.T) {
	store := &fakeStore{tables: map[string]bool{"buildings": true}}
	report, err := RestoreAutoStrip(context.Background(), store, nil, config.PlaceConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Skipped || store.filled != 0 || len(store.nulled) != 0 {
		t.Errorf("expected no-op, got report %+v, store %+v", report, store)
	}
}

func TestRestoreAutoStrip_SkipsMissingTables(t *testing.T) {
	store := &fakeStore{tables: map[string]bool{"settings": true, "census_1930_records": true}}
	report, err := RestoreAutoStrip(context.Background(), store, config.NewSettings(nil, noEnv), config.PlaceConfig{City: "Ithaca", State: "NY"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.filled != 0 {
		t.Error("buildings filled although table missing")
	}
	if len(store.nulled) != 1 || store.nulled[0] != "census_1930_records" {
		t.Errorf("nulled = %v", store.nulled)
	}
	if len(report.TablesSkipped) != 4 {
		t.Errorf("TablesSkipped = %v, want 4 tables", report.TablesSkipped)
	}
}

func TestRestoreAutoStrip_TableCheckError(t *testing.T) {
	boom := errors.New("boom")
	store := &fakeStore{existErr: boom}
	if _, err := RestoreAutoStrip(context.Background(), store, nil, config.PlaceConfig{}, nil); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

func TestRun_CreatesSchema(t *testing.T) {
	store, _ := openTestDB(t)
	report, err := Run(context.Background(), store, noEnv, config.PlaceConfig{City: "Ithaca", State: "NY"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Skipped {
		t.Error("settings table should exist after schema migration")
	}
}

func TestRun_LoadsSettingsAfterSchema(t *testing.T) {
	store := &fakeStore{
		tables: map[string]bool{"buildings": true},
		stored: map[string]string{"city": "Dryden", "state": " "},
	}
	lookup := func(key string) (string, bool) {
		if key == "STATE" {
			return "PA", true
		}
		return "", false
	}

	report, err := Run(context.Background(), store, lookup, config.PlaceConfig{City: "Ithaca", State: "NY"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Skipped {
		t.Fatal("restore skipped after schema migration")
	}
	if report.City != "Dryden" || report.State != "PA" {
		t.Errorf("place = %s, %s; want Dryden, PA", report.City, report.State)
	}
	if store.filled != 1 {
		t.Errorf("buildings filled %d times, want 1", store.filled)
	}
}
