package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/lawref/internal/parser"
)

// Catalog backends.
const (
	BackendAssets = "assets"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port string

	// Statute sources
	LawsDir        string
	CatalogBackend string
	SQLitePath     string

	// Parse cache; empty keeps it in memory only
	CachePath string

	// Auth
	APIKey string

	// Index worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentParse int

	// Document limits
	MaxDocumentBytes int64

	// Job state
	JobTTL time.Duration

	// Stats
	StatsWindow time.Duration

	// Parsing
	LegacyLookahead      bool
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		LawsDir:        envOr("LAWS_DIR", "assets/Laws"),
		CatalogBackend: envOr("CATALOG_BACKEND", BackendAssets),
		SQLitePath:     envOr("SQLITE_PATH", "data/lawref.db"),

		CachePath: os.Getenv("CACHE_PATH"),

		APIKey: os.Getenv("LAWREF_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 2),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 16),
		MaxConcurrentParse: envInt("MAX_CONCURRENT_PARSE", 4),

		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 20971520), // 20MB

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		LegacyLookahead:      envBool("LEGACY_LOOKAHEAD", false),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.MaxConcurrentParse <= 0 {
		cfg.MaxConcurrentParse = 4
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.LawsDir == "" {
		return fmt.Errorf("LAWS_DIR is required")
	}
	switch c.CatalogBackend {
	case BackendAssets:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}
	return nil
}

// ParseOptions returns the parser options selected by the environment.
func (c Config) ParseOptions() parser.Options {
	return parser.Options{
		LegacyLookahead:      c.LegacyLookahead,
		PDFFallbackPdftotext: c.PDFFallbackPdftotext,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
