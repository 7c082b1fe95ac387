// Package migrate bootstraps the record store schema and runs data fixes.
package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

// Store is the store access the migrations need.
type Store interface {
	config.SettingsSource
	FillBlankBuildingPlace(ctx context.Context, city, state string) (int64, error)
	NullifyBlankText(ctx context.Context, table string) (int64, error)
	Migrate(ctx context.Context) error
}

// Report counts the rows a data fix changed.
type Report struct {
	Skipped       bool             `json:"skipped"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	PlaceFilled   int64            `json:"place_filled"`
	BlanksNulled  map[string]int64 `json:"blanks_nulled"`
	TablesSkipped []string         `json:"tables_skipped,omitempty"`
}

// Run creates any missing tables, loads settings from the migrated store with
// lookup as the environment fallback, then restores stripped text attributes.
func Run(ctx context.Context, store Store, lookup config.LookupFunc, place config.PlaceConfig, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	logger.Info("Schema up to date")
	settings, err := config.LoadSettings(ctx, store, lookup)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return RestoreAutoStrip(ctx, store, settings, place, logger)
}

// RestoreAutoStrip fills blank building cities and states with the configured place
// and turns empty strings in text columns back into NULL. Called on a store that was
// never bootstrapped it does nothing until the settings table exists; Run always
// creates that table first. The city is the stored "city" setting, else place.City
// (APP_PLACE_CITY or Ithaca); the state is resolved the same way.
func RestoreAutoStrip(ctx context.Context, store Store, settings *config.Settings, place config.PlaceConfig, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ok, err := store.TableExists(ctx, config.SettingsTable)
	if err != nil {
		return nil, fmt.Errorf("check settings table: %w", err)
	}
	if !ok {
		logger.Info("Settings table missing, skipping attribute restore")
		return &Report{Skipped: true}, nil
	}
	if settings == nil {
		settings = config.NewSettings(nil, nil)
	}

	report := &Report{
		City:         settings.Get("city", place.City),
		State:        settings.Get("state", place.State),
		BlanksNulled: make(map[string]int64),
	}

	tables := make([]string, 0, len(models.SearchYears)+1)
	tables = append(tables, "buildings")
	for _, year := range models.SearchYears {
		tables = append(tables, year.Table())
	}

	for _, table := range tables {
		exists, err := store.TableExists(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			report.TablesSkipped = append(report.TablesSkipped, table)
			logger.Debug("Table missing, skipping", zap.String("table", table))
			continue
		}
		if table == "buildings" {
			n, err := store.FillBlankBuildingPlace(ctx, report.City, report.State)
			if err != nil {
				return nil, err
			}
			report.PlaceFilled = n
		}
		n, err := store.NullifyBlankText(ctx, table)
		if err != nil {
			return nil, err
		}
		report.BlanksNulled[table] = n
	}

	logger.Info("Restored stripped attributes",
		zap.String("city", report.City),
		zap.String("state", report.State),
		zap.Int64("place_filled", report.PlaceFilled),
		zap.Any("blanks_nulled", report.BlanksNulled),
	)
	return report, nil
}

var _ Store = storage.Storage(nil)
