// Package store writes domain entities and edges to Neo4j: index
// provisioning, batched bulk/incremental upserts, and the coordinate
// sanity fix applied to every write path.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"
)

// Mode selects the write semantics for an ingest run.
type Mode int

const (
	// ModeBulkLoad uses CREATE and assumes an empty database (fastest, no
	// idempotence guarantee across re-runs).
	ModeBulkLoad Mode = iota
	// ModeIncremental uses MERGE so repeated runs over the same source
	// data converge rather than duplicate.
	ModeIncremental
)

// CoordinateFix counts how many records were corrected or dropped by the
// coordinate sanity check.
type CoordinateFix struct {
	Swapped int64
	Invalid int64
}

// Writer persists batches of domain entities to Neo4j.
type Writer struct {
	driver  neo4j.DriverWithContext
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewWriter wraps driver with a rate limiter throttling write transactions.
func NewWriter(driver neo4j.DriverWithContext, limiter *rate.Limiter, logger *slog.Logger) *Writer {
	return &Writer{driver: driver, limiter: limiter, logger: logger}
}

// runWrite executes fn in a managed write transaction, waiting on the rate
// limiter first.
func (w *Writer) runWrite(ctx context.Context, fn neo4j.ManagedTransactionWork) error {
	_, err := w.runWriteResult(ctx, fn)
	return err
}

// runWriteResult is runWrite but also returns fn's result value, for
// callers that need a count or other scalar back from the transaction.
func (w *Writer) runWriteResult(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, fn)
}

// fixCoordinates applies the coordinate sanity check: when latitude is out
// of [-90,90] but in [-180,180] and longitude is in [-90,90], the pair was
// very likely stored lat/lon-swapped at the source; swap and keep. If both
// values remain out of range after that check, the record cannot be
// salvaged and is dropped.
func fixCoordinates(lat, lon float64) (fixedLat, fixedLon float64, kind string) {
	if lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
		return lat, lon, "ok"
	}
	if lon >= -90 && lon <= 90 && lat >= -180 && lat <= 180 {
		return lon, lat, "swapped"
	}
	return lat, lon, "invalid"
}

func indexStatements() []string {
	return []string{
		"CREATE CONSTRAINT country_code IF NOT EXISTS FOR (c:Country) REQUIRE c.code IS UNIQUE",

		"CREATE CONSTRAINT admin_division_geoname_id IF NOT EXISTS FOR (a:AdminDivision) REQUIRE a.geonameId IS UNIQUE",
		"CREATE INDEX admin_division_country_level IF NOT EXISTS FOR (a:AdminDivision) ON (a.countryCode, a.level)",
		"CREATE INDEX admin_division_country_admin1 IF NOT EXISTS FOR (a:AdminDivision) ON (a.countryCode, a.admin1Code)",
		"CREATE INDEX admin_division_country_admin2 IF NOT EXISTS FOR (a:AdminDivision) ON (a.countryCode, a.admin2Code)",
		"CREATE INDEX admin_division_feature_code IF NOT EXISTS FOR (a:AdminDivision) ON (a.featureCode)",

		"CREATE CONSTRAINT place_geoname_id IF NOT EXISTS FOR (p:Place) REQUIRE p.geonameId IS UNIQUE",
		"CREATE INDEX place_country_admin IF NOT EXISTS FOR (p:Place) ON (p.countryCode, p.admin1Code)",
		"CREATE INDEX place_country_code IF NOT EXISTS FOR (p:Place) ON (p.countryCode)",
		"CREATE INDEX place_country_admin2 IF NOT EXISTS FOR (p:Place) ON (p.countryCode, p.admin2Code)",
		"CREATE INDEX place_feature_code IF NOT EXISTS FOR (p:Place) ON (p.featureCode)",
		"CREATE INDEX place_latitude IF NOT EXISTS FOR (p:Place) ON (p.latitude)",
		"CREATE INDEX place_longitude IF NOT EXISTS FOR (p:Place) ON (p.longitude)",
		"CREATE POINT INDEX place_location IF NOT EXISTS FOR (p:Place) ON (p.location)",

		"CREATE CONSTRAINT wikidata_place_qid IF NOT EXISTS FOR (w:WikidataPlace) REQUIRE w.qid IS UNIQUE",
		"CREATE INDEX wikidata_place_geonames_id IF NOT EXISTS FOR (w:WikidataPlace) ON (w.geonamesId)",
		"CREATE INDEX wikidata_place_country_qid IF NOT EXISTS FOR (w:WikidataPlace) ON (w.countryQid)",
		"CREATE INDEX wikidata_place_latitude IF NOT EXISTS FOR (w:WikidataPlace) ON (w.latitude)",
		"CREATE INDEX wikidata_place_longitude IF NOT EXISTS FOR (w:WikidataPlace) ON (w.longitude)",
		"CREATE POINT INDEX wikidata_place_location IF NOT EXISTS FOR (w:WikidataPlace) ON (w.location)",

		"CREATE CONSTRAINT person_qid IF NOT EXISTS FOR (p:Person) REQUIRE p.qid IS UNIQUE",
		"CREATE CONSTRAINT organization_qid IF NOT EXISTS FOR (o:Organization) REQUIRE o.qid IS UNIQUE",
	}
}

// CreateIndexes provisions every uniqueness constraint and secondary index
// the write paths rely on. Idempotent: every statement is guarded with
// IF NOT EXISTS.
func (w *Writer) CreateIndexes(ctx context.Context) error {
	for _, stmt := range indexStatements() {
		err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, stmt, nil)
		})
		if err != nil {
			return fmt.Errorf("create index/constraint %q: %w", stmt, err)
		}
	}
	return nil
}

func writeVerb(mode Mode) string {
	if mode == ModeBulkLoad {
		return "CREATE"
	}
	return "MERGE"
}
