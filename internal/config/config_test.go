package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "neo4j", cfg.Neo4jUser)
	assert.Equal(t, "password", cfg.Neo4jPassword)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, 10000, cfg.PlaceBatchSize)
	assert.Equal(t, 1000, cfg.EntityBatchSize)
	assert.Equal(t, 500, cfg.LinkerBatchSize)

	assert.Equal(t, 1000, cfg.WikidataOutputBufferSize)
	assert.Equal(t, 100000, cfg.WikidataProgressEvery)

	assert.Equal(t, 10000, cfg.AdminBatchSize)
	assert.Equal(t, 50000, cfg.AdminMegaThreshold)
	assert.Equal(t, 500000, cfg.AdminUltraThreshold)
	assert.Equal(t, "admin_hierarchy_progress.json", cfg.AdminProgressFile)

	assert.Equal(t, 50000, cfg.ResolverPhaseABatchSize)
	assert.Equal(t, 1000, cfg.ResolverBatchSize)
	assert.InDelta(t, 10.0, cfg.ResolverRadiusKM, 1e-9)
	assert.Equal(t, 5, cfg.ResolverCandidateCap)
	assert.InDelta(t, 0.7, cfg.ResolverLinkThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.ResolverEmitThreshold, 1e-9)
	assert.Equal(t, "spatial_resolver_progress.json", cfg.ResolverProgressFile)

	assert.InDelta(t, 50.0, cfg.StoreRateLimit, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.TransactionTimeout)
	assert.Equal(t, 30*time.Minute, cfg.CountryWallClock)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://db.internal:7687")
	t.Setenv("NEO4J_USER", "admin")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("PLACE_BATCH_SIZE", "20000")
	t.Setenv("RESOLVER_RADIUS_KM", "25.5")
	t.Setenv("RESOLVER_LINK_THRESHOLD", "0.8")
	t.Setenv("RESOLVER_EMIT_THRESHOLD", "0.6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://db.internal:7687", cfg.Neo4jURI)
	assert.Equal(t, "admin", cfg.Neo4jUser)
	assert.Equal(t, "secret", cfg.Neo4jPassword)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20000, cfg.PlaceBatchSize)
	assert.InDelta(t, 25.5, cfg.ResolverRadiusKM, 1e-9)
	assert.InDelta(t, 0.8, cfg.ResolverLinkThreshold, 1e-9)
	assert.InDelta(t, 0.6, cfg.ResolverEmitThreshold, 1e-9)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeTransactionTimeout(t *testing.T) {
	t.Setenv("TRANSACTION_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRANSACTION_TIMEOUT")
}

func TestLoad_InvalidCountryWallClock(t *testing.T) {
	t.Setenv("COUNTRY_WALL_CLOCK_BUDGET", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COUNTRY_WALL_CLOCK_BUDGET")
}

func TestLoad_NonPositiveIntFallsBackToDefault(t *testing.T) {
	t.Setenv("PLACE_BATCH_SIZE", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.PlaceBatchSize)
}

func TestLoad_ThresholdOrderingEnforced(t *testing.T) {
	t.Setenv("RESOLVER_LINK_THRESHOLD", "0.4")
	t.Setenv("RESOLVER_EMIT_THRESHOLD", "0.5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOLVER_LINK_THRESHOLD")
}
