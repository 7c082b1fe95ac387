package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hyperjump/chizu/internal/models"
)

const (
	defaultMaxOpenConns = 50
	defaultMaxIdleConns = 25
)

// PostgresStorage implements Storage on PostgreSQL, using ILIKE for substring matching.
type PostgresStorage struct {
	*sqlStore
}

// NewPostgresStorage connects to the database at dsn and verifies the connection.
// The schema is not created; run Migrate for a fresh database.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStorage{sqlStore: &sqlStore{db: db, dialect: postgresDialect}}, nil
}

// Migrate creates any missing tables and indexes.
func (s *PostgresStorage) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS buildings (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			city TEXT,
			state TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id BIGSERIAL PRIMARY KEY,
			building_id BIGINT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
			house_number TEXT,
			prefix TEXT,
			name TEXT,
			suffix TEXT,
			city TEXT,
			year INT,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			searchable_text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_addresses_building_id ON addresses(building_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, table := range censusTables() {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				first_name TEXT,
				last_name TEXT,
				building_id BIGINT REFERENCES buildings(id) ON DELETE SET NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_building_id ON %[1]s(building_id)`, table),
		)
	}
	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

// TableExists reports whether table exists in the current schema.
func (s *PostgresStorage) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`, table,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func censusTables() []string {
	tables := make([]string, 0, len(models.SearchYears))
	for _, y := range models.SearchYears {
		tables = append(tables, y.Table())
	}
	return tables
}
