package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LookupFunc reports the value of an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnvFiles loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set are not overridden.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides cfg fields from environment variables. It runs once at startup,
// before defaults are applied.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if v, ok := lookup("CHIZU_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := lookup("CHIZU_HOST"); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup("CHIZU_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v, ok := lookup("CHIZU_STORAGE_DRIVER"); ok && v != "" {
		cfg.Storage.Driver = v
	}
	if v, ok := lookup("CHIZU_DATABASE_PATH"); ok && v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		cfg.Storage.DSN = v
		if cfg.Storage.Driver == "" {
			cfg.Storage.Driver = "postgres"
		}
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DSN == "" {
		if _, ok := lookup("PG_HOST"); ok {
			cfg.Storage.DSN = PostgresDSNFromEnv(lookup)
		}
	}
	if v, ok := lookup("CHIZU_BUILDING_MATCH"); ok && v != "" {
		cfg.Search.BuildingMatch = strings.ToLower(v)
	}
	if v, ok := lookup("CHIZU_CONFIDENCE"); ok && v != "" {
		cfg.Search.Confidence = strings.ToLower(v)
	}
	if v, ok := lookup("APP_PLACE_CITY"); ok && v != "" {
		cfg.Place.City = v
	}
	if v, ok := lookup("APP_PLACE_STATE"); ok && v != "" {
		cfg.Place.State = v
	}
}

// PostgresDSNFromEnv builds a DSN from PG_HOST, PG_PORT, PG_USER, PG_PASSWORD, PG_DB
// and PG_SSLMODE, with local development defaults.
func PostgresDSNFromEnv(lookup LookupFunc) string {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}
	dsn := "postgres://" + get("PG_USER", "postgres")
	if pass := get("PG_PASSWORD", ""); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + get("PG_HOST", "localhost") + ":" + get("PG_PORT", "5432") + "/" + get("PG_DB", "chizu")
	dsn += "?sslmode=" + get("PG_SSLMODE", "disable")
	return dsn
}
