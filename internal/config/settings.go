package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SettingsTable is the table holding runtime settings.
const SettingsTable = "settings"

// SettingsSource is the store access Settings needs.
type SettingsSource interface {
	TableExists(ctx context.Context, table string) (bool, error)
	LoadSettings(ctx context.Context) (map[string]string, error)
}

// Settings is a snapshot of runtime settings. A lookup prefers the stored value and
// falls back to the environment variable named by the upper-cased key.
type Settings struct {
	stored map[string]string
	lookup LookupFunc
}

// NewSettings returns Settings over stored values and lookup. A nil lookup uses os.LookupEnv.
func NewSettings(stored map[string]string, lookup LookupFunc) *Settings {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if stored == nil {
		stored = map[string]string{}
	}
	return &Settings{stored: stored, lookup: lookup}
}

// LoadSettings reads the settings table once. When the table does not exist yet,
// only the environment is consulted.
func LoadSettings(ctx context.Context, src SettingsSource, lookup LookupFunc) (*Settings, error) {
	ok, err := src.TableExists(ctx, SettingsTable)
	if err != nil {
		return nil, fmt.Errorf("check settings table: %w", err)
	}
	if !ok {
		return NewSettings(nil, lookup), nil
	}
	stored, err := src.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return NewSettings(stored, lookup), nil
}

// Lookup returns the value for key. Blank stored values count as absent.
func (s *Settings) Lookup(key string) (string, bool) {
	if v, ok := s.stored[key]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return s.lookup(strings.ToUpper(key))
}

// Get returns the value for key, or fallback when absent.
func (s *Settings) Get(key, fallback string) string {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return fallback
}
