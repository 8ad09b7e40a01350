package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

const (
	defaultDirectMatchBatchSize = 50000
	defaultCountryBatchSize     = 1000
)

// WriteDirectMatches runs Phase A in place: it repeatedly merges a SAME_AS
// edge from every WikidataPlace with a parseable geonamesId and no existing
// SAME_AS to the Place sharing that id, batched at batchSize, until a pass
// matches nothing. Returns the total number of edges created.
//
// The geonamesId claim is a string property; Place.geonameId is stored as
// an integer. The join must coerce the string to an integer on the match
// key or it silently returns nothing.
func (w *Writer) WriteDirectMatches(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultDirectMatchBatchSize
	}

	const query = `
MATCH (w:WikidataPlace)
WHERE w.geonamesId IS NOT NULL
  AND NOT (w)-[:SAME_AS]->()
WITH w LIMIT $batchSize
MATCH (g:Place {geonameId: toInteger(w.geonamesId)})
MERGE (w)-[r:SAME_AS]->(g)
SET r.confidence = 1.0,
    r.distanceKm = 0.0,
    r.evidence = $evidence,
    r.linkedDate = datetime()
RETURN count(r) AS matched
`

	var total int64
	for {
		result, err := w.runWriteResult(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, map[string]any{
				"batchSize": batchSize,
				"evidence":  domain.EvidenceGeonamesIDMatch,
			})
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			matched, _ := record.Get("matched")
			return matched, nil
		})
		if err != nil {
			return total, fmt.Errorf("direct match batch: %w", err)
		}

		matched, _ := result.(int64)
		total += matched
		if matched == 0 {
			return total, nil
		}
	}
}

// CandidateSource is a WikidataPlace awaiting a Phase B spatial match.
type CandidateSource struct {
	QID             string
	Label           string
	InstanceOfLabel string
	Latitude        float64
	Longitude       float64
}

// CandidateTarget is a Place considered as a Phase B match for a
// CandidateSource.
type CandidateTarget struct {
	GeonameID    int64
	Name         string
	FeatureClass string
	FeatureCode  string
	Latitude     float64
	Longitude    float64
}

// CountriesByUnlinkedCount lists the distinct countryQid values present on
// WikidataPlace nodes that still lack an outgoing SAME_AS edge, ordered
// ascending by how many such nodes remain (smallest first, for fast
// feedback on the resolver run).
func (w *Writer) CountriesByUnlinkedCount(ctx context.Context) ([]string, error) {
	const query = `
MATCH (w:WikidataPlace)
WHERE w.countryQid IS NOT NULL
  AND NOT (w)-[:SAME_AS]->()
RETURN w.countryQid AS countryQid, count(w) AS unlinked
ORDER BY unlinked ASC
`
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var countries []string
	for result.Next(ctx) {
		qid, _ := result.Record().Get("countryQid")
		if s, ok := qid.(string); ok && s != "" {
			countries = append(countries, s)
		}
	}
	return countries, result.Err()
}

// UnlinkedWikidataPlacesForCountry fetches up to batchSize WikidataPlace
// nodes in countryQid that have coordinates and no outgoing SAME_AS edge.
// Each call to this method naturally excludes sources already resolved by
// an earlier call in the same run, since Phase B writes SAME_AS/NEAR/
// LOCATED_IN edges before moving on.
func (w *Writer) UnlinkedWikidataPlacesForCountry(ctx context.Context, countryQid string, batchSize int) ([]CandidateSource, error) {
	if batchSize <= 0 {
		batchSize = defaultCountryBatchSize
	}

	const query = `
MATCH (w:WikidataPlace {countryQid: $countryQid})
WHERE w.latitude IS NOT NULL
  AND w.longitude IS NOT NULL
  AND NOT (w)-[:SAME_AS]->()
  AND NOT (w)-[:NEAR]->()
  AND NOT (w)-[:LOCATED_IN]->()
RETURN w.qid AS qid, w.label AS label, w.instanceOfLabel AS instanceOfLabel,
       w.latitude AS latitude, w.longitude AS longitude
LIMIT $batchSize
`
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]any{"countryQid": countryQid, "batchSize": batchSize})
	if err != nil {
		return nil, err
	}

	var sources []CandidateSource
	for result.Next(ctx) {
		rec := result.Record()
		qid, _ := rec.Get("qid")
		label, _ := rec.Get("label")
		instanceOfLabel, _ := rec.Get("instanceOfLabel")
		lat, _ := rec.Get("latitude")
		lon, _ := rec.Get("longitude")

		src := CandidateSource{QID: asString(qid), Label: asString(label), InstanceOfLabel: asString(instanceOfLabel)}
		src.Latitude, _ = asFloat(lat)
		src.Longitude, _ = asFloat(lon)
		sources = append(sources, src)
	}
	return sources, result.Err()
}

// NearbyPlaces prefilters Place nodes by the given bounding box, then
// returns every candidate within it. The exact haversine filter and
// k-nearest cap are applied by the caller, which is where the resolver's
// candidate cache also lives.
func (w *Writer) NearbyPlaces(ctx context.Context, box domain.BoundingBox) ([]CandidateTarget, error) {
	const query = `
MATCH (g:Place)
WHERE g.latitude >= $minLat AND g.latitude <= $maxLat
  AND g.longitude >= $minLon AND g.longitude <= $maxLon
RETURN g.geonameId AS geonameId, g.name AS name, g.featureClass AS featureClass,
       g.featureCode AS featureCode, g.latitude AS latitude, g.longitude AS longitude
`
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]any{
		"minLat": box.MinLat, "maxLat": box.MaxLat,
		"minLon": box.MinLon, "maxLon": box.MaxLon,
	})
	if err != nil {
		return nil, err
	}

	var targets []CandidateTarget
	for result.Next(ctx) {
		rec := result.Record()
		geonameID, _ := rec.Get("geonameId")
		name, _ := rec.Get("name")
		featureClass, _ := rec.Get("featureClass")
		featureCode, _ := rec.Get("featureCode")
		lat, _ := rec.Get("latitude")
		lon, _ := rec.Get("longitude")

		t := CandidateTarget{
			Name:         asString(name),
			FeatureClass: asString(featureClass),
			FeatureCode:  asString(featureCode),
		}
		t.GeonameID, _ = asInt64(geonameID)
		t.Latitude, _ = asFloat(lat)
		t.Longitude, _ = asFloat(lon)
		targets = append(targets, t)
	}
	return targets, result.Err()
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt64(v any) (int64, bool) {
	i, ok := v.(int64)
	return i, ok
}
