package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const (
	// sqliteFoldDriver is go-sqlite3 with the fold() SQL function registered on
	// every connection.
	sqliteFoldDriver = "sqlite3_fold"
	foldFunc         = "fold"
)

func init() {
	sql.Register(sqliteFoldDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(foldFunc, foldValue, true)
		},
	})
}

// foldValue lower-cases text with Unicode case mapping. NULL stays NULL and
// other values pass through.
func foldValue(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// SQLiteStorage implements Storage using SQLite. Substring matching folds case
// through fold(), matching PostgreSQL ILIKE for non-ASCII text.
type SQLiteStorage struct {
	*sqlStore
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open(sqliteFoldDriver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStorage{sqlStore: &sqlStore{db: db, dialect: sqliteDialect}}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Migrate creates any missing tables and indexes.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY,
		name TEXT,
		latitude REAL,
		longitude REAL,
		city TEXT,
		state TEXT
	);

	CREATE TABLE IF NOT EXISTS addresses (
		id INTEGER PRIMARY KEY,
		building_id INTEGER NOT NULL,
		house_number TEXT,
		prefix TEXT,
		name TEXT,
		suffix TEXT,
		city TEXT,
		year INTEGER,
		is_primary BOOLEAN NOT NULL DEFAULT 0,
		searchable_text TEXT,
		FOREIGN KEY (building_id) REFERENCES buildings(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_addresses_building_id ON addresses(building_id);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	for _, table := range censusTables() {
		stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id INTEGER PRIMARY KEY,
			first_name TEXT,
			last_name TEXT,
			building_id INTEGER REFERENCES buildings(id) ON DELETE SET NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_building_id ON %[1]s(building_id);`, table)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// TableExists reports whether table exists in the database.
func (s *SQLiteStorage) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
