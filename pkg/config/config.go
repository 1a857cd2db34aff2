// Package config loads the engine's own runtime knobs from environment
// variables, generalized from the teacher's pkg/config/config.go
// (getEnv/getEnvAsInt helpers, validate-on-load convention) to the
// SQL-interface/ontology/FTS concerns of this module instead of the
// teacher's worker-pool/queue settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the engine's runtime configuration.
type Config struct {
	// DatabasePath is the SQLite file path, or a shared-cache key when
	// InMemory is true.
	DatabasePath string
	InMemory     bool
	ReadOnly     bool
	UseMutex     bool

	LogLevel  string
	LogFormat string

	SelectStmtCacheSize int
	UpdateStmtCacheSize int

	FTSEnabled bool

	// TitleArticles is the title-article list, read as a "|"-separated
	// value and defaulting to "the|a|an". The "title" collation registered
	// by sqlengine does not read it; it uses its own fixed list of the same
	// three articles.
	TitleArticles []string

	// OntologyFixturePath, if set, is a YAML fixture file in the format read
	// by ontology.Registry.LoadFixtureFile.
	OntologyFixturePath string
}

// Load reads configuration from the environment, applying the same
// defaults-then-validate shape as the teacher's LoadConfig().
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:        getEnv("ONTOSTORE_DB_PATH", "ontostore.db"),
		InMemory:            getEnvAsBool("ONTOSTORE_IN_MEMORY", false),
		ReadOnly:            getEnvAsBool("ONTOSTORE_READ_ONLY", false),
		UseMutex:            getEnvAsBool("ONTOSTORE_USE_MUTEX", true),
		LogLevel:            getEnv("ONTOSTORE_LOG_LEVEL", "info"),
		LogFormat:           getEnv("ONTOSTORE_LOG_FORMAT", "text"),
		SelectStmtCacheSize: getEnvAsInt("ONTOSTORE_SELECT_CACHE_SIZE", 50),
		UpdateStmtCacheSize: getEnvAsInt("ONTOSTORE_UPDATE_CACHE_SIZE", 50),
		FTSEnabled:          getEnvAsBool("ONTOSTORE_FTS_ENABLED", true),
		TitleArticles:       getEnvAsList("ONTOSTORE_TITLE_ARTICLES", []string{"the", "a", "an"}),
		OntologyFixturePath: getEnv("ONTOSTORE_ONTOLOGY_FIXTURE", ""),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("ONTOSTORE_DB_PATH must not be empty")
	}
	if cfg.SelectStmtCacheSize < 3 {
		return nil, fmt.Errorf("ONTOSTORE_SELECT_CACHE_SIZE must be >= 3, got %d", cfg.SelectStmtCacheSize)
	}
	if cfg.UpdateStmtCacheSize < 3 {
		return nil, fmt.Errorf("ONTOSTORE_UPDATE_CACHE_SIZE must be >= 3, got %d", cfg.UpdateStmtCacheSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvAsList(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
