// Package storage defines read access to the census record store.
package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/chizu/internal/models"
)

// BuildingSearch selects buildings whose name, or any address's city, street name or
// searchable text, contains Term case-insensitively.
type BuildingSearch struct {
	Term               string
	RequireCoordinates bool
	Limit              int
}

// RecordCounts summarizes the store contents.
type RecordCounts struct {
	Buildings int64                       `json:"buildings"`
	Geocoded  int64                       `json:"geocoded_buildings"`
	Addresses int64                       `json:"addresses"`
	People    map[models.CensusYear]int64 `json:"people"`
}

// Storage defines the record store operations. Buildings are returned ordered by id
// with their addresses loaded, ordered by address id.
type Storage interface {
	// Search
	SearchBuildings(ctx context.Context, q BuildingSearch) ([]*models.Building, error)
	GetBuildings(ctx context.Context, ids []int64, requireCoordinates bool) ([]*models.Building, error)
	SearchPeople(ctx context.Context, year models.CensusYear, term string, limit int) ([]*models.Person, error)

	// Settings
	TableExists(ctx context.Context, table string) (bool, error)
	LoadSettings(ctx context.Context) (map[string]string, error)

	// Maintenance
	FillBlankBuildingPlace(ctx context.Context, city, state string) (int64, error)
	NullifyBlankText(ctx context.Context, table string) (int64, error)

	// Stats
	CountRecords(ctx context.Context) (*RecordCounts, error)

	Migrate(ctx context.Context) error
	Close() error
}

// TextColumns lists the free-text columns of each table the maintenance migration
// normalizes. Tables not listed here are never rewritten.
var TextColumns = map[string][]string{
	"buildings":           {"name", "city", "state"},
	"census_1910_records": {"first_name", "last_name"},
	"census_1920_records": {"first_name", "last_name"},
	"census_1930_records": {"first_name", "last_name"},
	"census_1940_records": {"first_name", "last_name"},
}

// Open opens the store for driver ("sqlite3" or "postgres"). source is a file path
// for SQLite and a DSN for PostgreSQL.
func Open(driver, source string) (Storage, error) {
	switch driver {
	case "", DriverSQLite:
		s, err := NewSQLiteStorage(source)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgresStorage(source)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
