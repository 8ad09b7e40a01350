// Package config loads pipeline settings from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Batching, shared across C1/C4 loaders.
	PlaceBatchSize  int
	EntityBatchSize int // WikidataPlace / Person / Organization
	LinkerBatchSize int // C7

	// C2 Wikidata streaming filter.
	WikidataOutputBufferSize int
	WikidataProgressEvery    int

	// C5 admin hierarchy builder. The two thresholds are not passed to the
	// builder, which selects its strategy from its own MegaThreshold and
	// UltraThreshold constants.
	AdminBatchSize      int
	AdminMegaThreshold   int // country place count above which admin1 chunking kicks in
	AdminUltraThreshold  int // country place count above which admin2 chunking kicks in
	AdminProgressFile    string

	// C6 spatial resolver.
	ResolverPhaseABatchSize int
	ResolverBatchSize       int // WikidataPlace batch size within a country, §4.6.5
	ResolverRadiusKM        float64
	ResolverCandidateCap    int // k nearest candidates retained after haversine filter
	ResolverLinkThreshold   float64 // τ for linking (SAME_AS/NEAR/LOCATED_IN)
	ResolverEmitThreshold   float64 // τ for unfiltered emission
	ResolverProgressFile    string

	// Shared store write throttling (requests/sec), §5 "shared-resource policy".
	StoreRateLimit float64

	// Per-transaction / per-country timeouts, §5. TransactionTimeout is
	// validated but not applied to store transactions.
	TransactionTimeout time.Duration
	CountryWallClock   time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	txTimeout, err := parseDuration("TRANSACTION_TIMEOUT", "5m")
	if err != nil {
		return nil, err
	}
	countryBudget, err := parseDuration("COUNTRY_WALL_CLOCK_BUDGET", "30m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Neo4jURI:      envOrDefault("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     envOrDefault("NEO4J_USER", "neo4j"),
		Neo4jPassword: envOrDefault("NEO4J_PASSWORD", "password"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PlaceBatchSize:  envIntOrDefault("PLACE_BATCH_SIZE", 10000),
		EntityBatchSize: envIntOrDefault("ENTITY_BATCH_SIZE", 1000),
		LinkerBatchSize: envIntOrDefault("LINKER_BATCH_SIZE", 500),

		WikidataOutputBufferSize: envIntOrDefault("WIKIDATA_OUTPUT_BUFFER_SIZE", 1000),
		WikidataProgressEvery:    envIntOrDefault("WIKIDATA_PROGRESS_EVERY", 100000),

		AdminBatchSize:      envIntOrDefault("ADMIN_BATCH_SIZE", 10000),
		AdminMegaThreshold:  envIntOrDefault("ADMIN_MEGA_THRESHOLD", 50000),
		AdminUltraThreshold: envIntOrDefault("ADMIN_ULTRA_THRESHOLD", 500000),
		AdminProgressFile:   envOrDefault("ADMIN_PROGRESS_FILE", "admin_hierarchy_progress.json"),

		ResolverPhaseABatchSize: envIntOrDefault("RESOLVER_PHASE_A_BATCH_SIZE", 50000),
		ResolverBatchSize:       envIntOrDefault("RESOLVER_BATCH_SIZE", 1000),
		ResolverRadiusKM:        envFloatOrDefault("RESOLVER_RADIUS_KM", 10.0),
		ResolverCandidateCap:    envIntOrDefault("RESOLVER_CANDIDATE_CAP", 5),
		ResolverLinkThreshold:   envFloatOrDefault("RESOLVER_LINK_THRESHOLD", 0.7),
		ResolverEmitThreshold:   envFloatOrDefault("RESOLVER_EMIT_THRESHOLD", 0.5),
		ResolverProgressFile:    envOrDefault("RESOLVER_PROGRESS_FILE", "spatial_resolver_progress.json"),

		StoreRateLimit: envFloatOrDefault("STORE_RATE_LIMIT", 50.0),

		TransactionTimeout: txTimeout,
		CountryWallClock:   countryBudget,
	}

	if cfg.Neo4jURI == "" {
		return nil, errors.New("NEO4J_URI is required")
	}
	if cfg.ResolverLinkThreshold < cfg.ResolverEmitThreshold {
		return nil, errors.New("RESOLVER_LINK_THRESHOLD must be >= RESOLVER_EMIT_THRESHOLD")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloatOrDefault(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
