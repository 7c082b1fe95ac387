// Package main is the chizu CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/cli"
	"github.com/hyperjump/chizu/internal/config"
	"github.com/hyperjump/chizu/internal/migrate"
	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/ranking"
	"github.com/hyperjump/chizu/internal/search"
	"github.com/hyperjump/chizu/internal/server"
	"github.com/hyperjump/chizu/internal/storage"
	"github.com/hyperjump/chizu/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/chizu/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When the default file
// does not exist either, defaults plus environment overrides are used and the
// returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "migrate":
		runMigrate()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("chizu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-request search details)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("building_match", cfg.Search.BuildingMatch),
		zap.String("confidence", cfg.Search.Confidence),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: chizu search [flags] <term>\n\n")
	fmt.Fprintf(fs.Output(), "The term is all remaining arguments joined by spaces. Multi-word terms work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Without --year the result is the map collection: one point per geocoded building, per census year.
With --year the buildings (mapped or not) and residents matched in that census are listed.

Examples:
  chizu search main street
  chizu search --year 1930 smith
  chizu search --server http://localhost:8080 --output json cornell
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word terms
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the term
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	fs.Usage = func() { printSearchUsage(fs) }
	configPath := fs.String("config", defaultConfigPath, "config file path (direct store mode)")
	serverURL := fs.String("server", "", "server URL (empty = query the store directly)")
	year := fs.Int("year", 0, "census year to list (1910, 1920, 1930, 1940); 0 = map search")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	term := buildSearchQuery(fs.Args())
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var censusYear models.CensusYear
	if *year != 0 {
		censusYear = models.CensusYear(*year)
		if !censusYear.Valid() {
			fmt.Fprintf(os.Stderr, "Unknown census year %d; use 1910, 1920, 1930 or 1940\n", *year)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	var searcher server.Searcher
	if *serverURL != "" {
		searcher = &httpSearcher{baseURL: strings.TrimRight(*serverURL, "/"), client: &http.Client{Timeout: 30 * time.Second}}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger := utils.NewNopOnError(cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		searcher = components.Engine
	}

	if censusYear != 0 {
		res, err := searcher.SearchForYear(ctx, &models.SearchQuery{Term: term, Year: censusYear})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteYearResults(os.Stdout, res, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fc, err := searcher.BuildFeatureCollection(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteFeatureCollection(os.Stdout, term, fc, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// httpSearcher runs searches against a running chizu server.
type httpSearcher struct {
	baseURL string
	client  *http.Client
}

func (h *httpSearcher) BuildFeatureCollection(ctx context.Context, term string) (*models.FeatureCollection, error) {
	var fc models.FeatureCollection
	if err := h.get(ctx, "/api/search?search="+url.QueryEscape(term), &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (h *httpSearcher) SearchForYear(ctx context.Context, query *models.SearchQuery) (*models.YearResults, error) {
	var res models.YearResults
	path := "/api/search/" + query.Year.String() + "?search=" + url.QueryEscape(query.Term)
	if err := h.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *httpSearcher) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runMigrate() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Source())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	report, err := migrate.Run(context.Background(), store, os.LookupEnv, cfg.Place, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}
	if report.Skipped {
		fmt.Println("settings table missing; attribute restore skipped")
		return
	}
	fmt.Printf("place:         %s, %s\n", report.City, report.State)
	fmt.Printf("place_filled:  %d   # building city/state values restored\n", report.PlaceFilled)
	for _, table := range append([]string{"buildings"}, censusTableNames()...) {
		if n, ok := report.BlanksNulled[table]; ok {
			fmt.Printf("%-22s %d blank values set to NULL\n", table+":", n)
		}
	}
}

func censusTableNames() []string {
	names := make([]string, 0, len(models.SearchYears))
	for _, y := range models.SearchYears {
		names = append(names, y.Table())
	}
	return names
}

// statusResponse is the shape of GET /api/status.
type statusResponse struct {
	Buildings      int64            `json:"buildings"`
	Geocoded       int64            `json:"geocoded_buildings"`
	Addresses      int64            `json:"addresses"`
	People         map[string]int64 `json:"people"`
	DiskUsageBytes *int64           `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(strings.TrimRight(*serverURL, "/"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Source())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		counts, err := store.CountRecords(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count records failed: %v\n", err)
			os.Exit(1)
		}
		status = statusFromCounts(counts)
		if cfg.Storage.Driver == storage.DriverSQLite {
			if n, err := storage.DatabaseDiskUsage(cfg.Storage.DatabasePath); err == nil {
				status.DiskUsageBytes = &n
			}
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("buildings:           %d\n", status.Buildings)
		fmt.Printf("geocoded_buildings:  %d   # shown on the map\n", status.Geocoded)
		fmt.Printf("addresses:           %d\n", status.Addresses)
		for _, y := range models.SearchYears {
			fmt.Printf("census_%s:         %d\n", y, status.People[y.String()])
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:    %d\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusFromCounts(counts *storage.RecordCounts) statusResponse {
	people := make(map[string]int64, len(counts.People))
	for y, n := range counts.People {
		people[y.String()] = n
	}
	return statusResponse{
		Buildings: counts.Buildings,
		Geocoded:  counts.Geocoded,
		Addresses: counts.Addresses,
		People:    people,
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Engine  *search.Engine
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	resolver := search.NewResolver(store,
		search.WithMatchPolicy(cfg.Search.BuildingMatch),
		search.WithLimit(cfg.Search.ResultLimit),
		search.WithLogger(logger),
	)
	engine := search.NewEngine(resolver, ranking.NewScorer(cfg.Search.Confidence), logger)
	return &Components{Storage: store, Engine: engine}, nil
}

func printUsage() {
	fmt.Println(`chizu - historical census records search and map service

Usage:
  chizu server [flags]           Start the HTTP server
  chizu search [flags] <term>    Search buildings and residents
  chizu migrate [flags]          Create missing tables and restore stripped attributes
  chizu status [flags]           Show record counts
  chizu version                  Show version
  chizu help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/chizu/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (direct store mode)
  --server string    Server URL. Empty (default) queries the store directly.
  --year int         Census year to list (1910, 1920, 1930, 1940). Omit for map search.
  --output string    Output format: text, compact or json (default: text)

Migrate Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL. Empty (default) reads the store directly.
  --output string    Output format: text or json (default: text)

Environment:
  .env in the working directory is loaded first. CHIZU_DEBUG, CHIZU_HOST, CHIZU_PORT,
  CHIZU_STORAGE_DRIVER, CHIZU_DATABASE_PATH, DATABASE_URL, PG_*, CHIZU_BUILDING_MATCH,
  CHIZU_CONFIDENCE, APP_PLACE_CITY and APP_PLACE_STATE override the config file.

Examples:
  chizu server
  chizu search "main street"
  chizu search --year 1930 smith
  chizu search --output json cornell   # GeoJSON, as served by /api/search
  chizu migrate
  chizu status --output json`)
}
