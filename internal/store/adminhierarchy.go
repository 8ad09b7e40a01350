package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

// ListCountries returns every distinct country code present on Place nodes,
// ascending by Place count so the admin builder works through smaller
// countries first.
func (w *Writer) ListCountries(ctx context.Context) ([]string, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
MATCH (p:Place)
WHERE p.countryCode IS NOT NULL AND p.countryCode <> ''
RETURN p.countryCode AS code, count(p) AS n
ORDER BY n ASC
`, nil)
	if err != nil {
		return nil, err
	}

	var codes []string
	for result.Next(ctx) {
		code, _ := result.Record().Get("code")
		codes = append(codes, code.(string))
	}
	return codes, result.Err()
}

// CountPlacesForCountry returns the number of Place nodes for countryCode,
// used to select the admin hierarchy builder's chunking strategy.
func (w *Writer) CountPlacesForCountry(ctx context.Context, countryCode string) (int, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (p:Place {countryCode: $country}) WHERE p.featureClass <> 'A' RETURN count(p) AS n`,
		map[string]any{"country": countryCode})
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := record.Get("n")
	return int(n.(int64)), nil
}

// CreateAdminDivisionsForCountry materializes AdminDivision nodes from
// Place nodes in feature class A with one of {ADM1,ADM2,ADM3,ADM4,ADMD},
// batching the read+write loop at batchSize. Each batch is read back into
// domain.Place, converted via domain.AdminDivisionFromPlace, and written
// with its full attribute set (including point geometry), rather than
// hand-building a truncated field list in Cypher.
func (w *Writer) CreateAdminDivisionsForCountry(ctx context.Context, countryCode string, batchSize int) error {
	skip := 0
	for {
		places, err := w.readAdminPlaceBatch(ctx, countryCode, skip, batchSize)
		if err != nil {
			return fmt.Errorf("read admin place batch for %s (skip=%d): %w", countryCode, skip, err)
		}
		if len(places) == 0 {
			return nil
		}

		divisions := make([]domain.AdminDivision, len(places))
		for i, p := range places {
			divisions[i] = domain.AdminDivisionFromPlace(p)
		}

		if err := w.writeAdminDivisionBatch(ctx, divisions); err != nil {
			return fmt.Errorf("materialize admin divisions for %s (skip=%d): %w", countryCode, skip, err)
		}
		skip += batchSize
	}
}

func (w *Writer) readAdminPlaceBatch(ctx context.Context, countryCode string, skip, limit int) ([]domain.Place, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
MATCH (p:Place {countryCode: $country})
WHERE p.featureClass = 'A' AND p.featureCode IN ['ADM1','ADM2','ADM3','ADM4','ADMD']
WITH p ORDER BY p.geonameId SKIP $skip LIMIT $limit
RETURN p.geonameId AS geonameId, p.name AS name, p.countryCode AS countryCode,
       p.featureCode AS featureCode,
       p.admin1Code AS admin1Code, p.admin2Code AS admin2Code,
       p.admin3Code AS admin3Code, p.admin4Code AS admin4Code,
       p.latitude AS latitude, p.longitude AS longitude, p.population AS population
`, map[string]any{"country": countryCode, "skip": skip, "limit": limit})
	if err != nil {
		return nil, err
	}

	var places []domain.Place
	for result.Next(ctx) {
		rec := result.Record()
		geonameID, _ := rec.Get("geonameId")
		name, _ := rec.Get("name")
		country, _ := rec.Get("countryCode")
		featureCode, _ := rec.Get("featureCode")
		admin1, _ := rec.Get("admin1Code")
		admin2, _ := rec.Get("admin2Code")
		admin3, _ := rec.Get("admin3Code")
		admin4, _ := rec.Get("admin4Code")
		lat, _ := rec.Get("latitude")
		lon, _ := rec.Get("longitude")
		population, _ := rec.Get("population")

		p := domain.Place{
			Name:        asString(name),
			CountryCode: asString(country),
			FeatureCode: asString(featureCode),
			Admin1Code:  asString(admin1),
			Admin2Code:  asString(admin2),
			Admin3Code:  asString(admin3),
			Admin4Code:  asString(admin4),
		}
		p.GeonameID, _ = asInt64(geonameID)
		p.Latitude, _ = asFloat(lat)
		p.Longitude, _ = asFloat(lon)
		p.Population, _ = asInt64(population)
		places = append(places, p)
	}
	return places, result.Err()
}

func adminDivisionRows(divisions []domain.AdminDivision) []map[string]any {
	rows := make([]map[string]any, 0, len(divisions))
	for _, a := range divisions {
		rows = append(rows, map[string]any{
			"geonameId":   a.GeonameID,
			"name":        a.Name,
			"countryCode": a.CountryCode,
			"featureCode": a.FeatureCode,
			"admin1Code":  a.Admin1Code,
			"admin2Code":  a.Admin2Code,
			"admin3Code":  a.Admin3Code,
			"admin4Code":  a.Admin4Code,
			"level":       a.Level,
			"latitude":    a.Latitude,
			"longitude":   a.Longitude,
			"population":  a.Population,
		})
	}
	return rows
}

func (w *Writer) writeAdminDivisionBatch(ctx context.Context, divisions []domain.AdminDivision) error {
	rows := adminDivisionRows(divisions)
	return w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
UNWIND $rows AS row
MERGE (a:AdminDivision {geonameId: row.geonameId})
SET a.name = row.name,
    a.countryCode = row.countryCode,
    a.featureCode = row.featureCode,
    a.admin1Code = row.admin1Code,
    a.admin2Code = row.admin2Code,
    a.admin3Code = row.admin3Code,
    a.admin4Code = row.admin4Code,
    a.level = row.level,
    a.latitude = row.latitude,
    a.longitude = row.longitude,
    a.location = point({latitude: row.latitude, longitude: row.longitude}),
    a.population = row.population
`, map[string]any{"rows": rows})
	})
}

// LinkPlacesNormal links every Place outside feature class A directly to
// its matching AdminDivision by shared admin-code tuple, for countries
// small enough not to need per-admin1 partitioning.
func (w *Writer) LinkPlacesNormal(ctx context.Context, countryCode string, batchSize int) error {
	return w.linkPlacesPaged(ctx, countryCode, batchSize, "")
}

// LinkPlacesMegaByAdmin1 partitions the linking pass by admin1Code,
// processing one admin1 region's places at a time, for countries whose
// place count would make a single unpartitioned pass too large.
func (w *Writer) LinkPlacesMegaByAdmin1(ctx context.Context, countryCode string, batchSize int) error {
	admin1Codes, err := w.distinctAdmin1Codes(ctx, countryCode)
	if err != nil {
		return err
	}
	for _, admin1 := range admin1Codes {
		if err := w.linkPlacesPaged(ctx, countryCode, batchSize, admin1); err != nil {
			return fmt.Errorf("admin1 %s: %w", admin1, err)
		}
	}
	return nil
}

// LinkPlacesUltraByAdmin2 further partitions by admin2Code within each
// admin1 region, for the largest countries.
func (w *Writer) LinkPlacesUltraByAdmin2(ctx context.Context, countryCode string, batchSize int) error {
	admin1Codes, err := w.distinctAdmin1Codes(ctx, countryCode)
	if err != nil {
		return err
	}
	for _, admin1 := range admin1Codes {
		admin2Codes, err := w.distinctAdmin2Codes(ctx, countryCode, admin1)
		if err != nil {
			return fmt.Errorf("admin1 %s: list admin2 codes: %w", admin1, err)
		}
		for _, admin2 := range admin2Codes {
			if err := w.linkPlacesPagedAdmin2(ctx, countryCode, admin1, admin2, batchSize); err != nil {
				return fmt.Errorf("admin1 %s admin2 %s: %w", admin1, admin2, err)
			}
		}
	}
	return nil
}

func (w *Writer) distinctAdmin1Codes(ctx context.Context, countryCode string) ([]string, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	result, err := session.Run(ctx, `
MATCH (p:Place {countryCode: $country})
WHERE p.featureClass <> 'A' AND p.admin1Code IS NOT NULL AND p.admin1Code <> ''
RETURN DISTINCT p.admin1Code AS code
`, map[string]any{"country": countryCode})
	if err != nil {
		return nil, err
	}
	var codes []string
	for result.Next(ctx) {
		c, _ := result.Record().Get("code")
		codes = append(codes, c.(string))
	}
	return codes, result.Err()
}

func (w *Writer) distinctAdmin2Codes(ctx context.Context, countryCode, admin1Code string) ([]string, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	result, err := session.Run(ctx, `
MATCH (p:Place {countryCode: $country, admin1Code: $admin1})
WHERE p.featureClass <> 'A' AND p.admin2Code IS NOT NULL AND p.admin2Code <> ''
RETURN DISTINCT p.admin2Code AS code
`, map[string]any{"country": countryCode, "admin1": admin1Code})
	if err != nil {
		return nil, err
	}
	var codes []string
	for result.Next(ctx) {
		c, _ := result.Record().Get("code")
		codes = append(codes, c.(string))
	}
	return codes, result.Err()
}

// linkPlacesPaged links Place->AdminDivision edges for countryCode
// (optionally scoped to one admin1Code), paging through in batchSize
// chunks so a single transaction never touches an unbounded row count.
func (w *Writer) linkPlacesPaged(ctx context.Context, countryCode string, batchSize int, admin1Code string) error {
	match := "MATCH (p:Place {countryCode: $country}) WHERE p.featureClass <> 'A'"
	params := map[string]any{"country": countryCode}
	if admin1Code != "" {
		match = "MATCH (p:Place {countryCode: $country, admin1Code: $admin1}) WHERE p.featureClass <> 'A'"
		params["admin1"] = admin1Code
	}

	skip := 0
	for {
		params["skip"] = skip
		params["limit"] = batchSize
		result, err := w.runWriteResult(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, match+`
WITH p ORDER BY p.geonameId SKIP $skip LIMIT $limit
OPTIONAL MATCH (a1:AdminDivision {countryCode: p.countryCode, admin1Code: p.admin1Code, level: 1})
FOREACH (_ IN CASE WHEN a1 IS NOT NULL THEN [1] ELSE [] END | MERGE (p)-[:LOCATED_IN_ADMIN1]->(a1))
OPTIONAL MATCH (a2:AdminDivision {countryCode: p.countryCode, admin1Code: p.admin1Code, admin2Code: p.admin2Code, level: 2})
FOREACH (_ IN CASE WHEN a2 IS NOT NULL THEN [1] ELSE [] END | MERGE (p)-[:LOCATED_IN_ADMIN2]->(a2))
OPTIONAL MATCH (a3:AdminDivision {countryCode: p.countryCode, admin1Code: p.admin1Code, admin2Code: p.admin2Code, admin3Code: p.admin3Code, level: 3})
FOREACH (_ IN CASE WHEN a3 IS NOT NULL THEN [1] ELSE [] END | MERGE (p)-[:LOCATED_IN_ADMIN3]->(a3))
RETURN count(p) AS n
`, params)
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			n, _ := record.Get("n")
			return n, nil
		})
		if err != nil {
			return fmt.Errorf("link places (skip=%d): %w", skip, err)
		}
		processed, _ := result.(int64)
		if processed == 0 {
			return nil
		}
		skip += batchSize
	}
}

func (w *Writer) linkPlacesPagedAdmin2(ctx context.Context, countryCode, admin1Code, admin2Code string, batchSize int) error {
	skip := 0
	params := map[string]any{
		"country": countryCode,
		"admin1":  admin1Code,
		"admin2":  admin2Code,
	}
	for {
		params["skip"] = skip
		params["limit"] = batchSize
		result, err := w.runWriteResult(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, `
MATCH (p:Place {countryCode: $country, admin1Code: $admin1, admin2Code: $admin2})
WHERE p.featureClass <> 'A'
WITH p ORDER BY p.geonameId SKIP $skip LIMIT $limit
OPTIONAL MATCH (a1:AdminDivision {countryCode: p.countryCode, admin1Code: p.admin1Code, level: 1})
FOREACH (_ IN CASE WHEN a1 IS NOT NULL THEN [1] ELSE [] END | MERGE (p)-[:LOCATED_IN_ADMIN1]->(a1))
OPTIONAL MATCH (a2:AdminDivision {countryCode: p.countryCode, admin1Code: p.admin1Code, admin2Code: p.admin2Code, level: 2})
FOREACH (_ IN CASE WHEN a2 IS NOT NULL THEN [1] ELSE [] END | MERGE (p)-[:LOCATED_IN_ADMIN2]->(a2))
RETURN count(p) AS n
`, params)
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			n, _ := record.Get("n")
			return n, nil
		})
		if err != nil {
			return fmt.Errorf("link places admin2-partitioned (skip=%d): %w", skip, err)
		}
		processed, _ := result.(int64)
		if processed == 0 {
			return nil
		}
		skip += batchSize
	}
}

// LinkAdminHierarchy links AdminDivision nodes to their parent
// (Admin2->Admin1, Admin3->Admin2, Admin4->Admin3 via PART_OF) and
// Admin1->Country.
func (w *Writer) LinkAdminHierarchy(ctx context.Context, countryCode string) error {
	statements := []string{
		`MATCH (a:AdminDivision {countryCode: $country, level: 1})
MERGE (c:Country {code: $country})
MERGE (a)-[:PART_OF]->(c)`,
		`MATCH (a2:AdminDivision {countryCode: $country, level: 2})
MATCH (a1:AdminDivision {countryCode: $country, admin1Code: a2.admin1Code, level: 1})
MERGE (a2)-[:PART_OF]->(a1)`,
		`MATCH (a3:AdminDivision {countryCode: $country, level: 3})
MATCH (a2:AdminDivision {countryCode: $country, admin1Code: a3.admin1Code, admin2Code: a3.admin2Code, level: 2})
MERGE (a3)-[:PART_OF]->(a2)`,
		`MATCH (a4:AdminDivision {countryCode: $country, level: 4})
MATCH (a3:AdminDivision {countryCode: $country, admin1Code: a4.admin1Code, admin2Code: a4.admin2Code, admin3Code: a4.admin3Code, level: 3})
MERGE (a4)-[:PART_OF]->(a3)`,
	}
	for _, stmt := range statements {
		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, stmt, map[string]any{"country": countryCode})
		}); err != nil {
			return fmt.Errorf("link admin hierarchy for %s: %w", countryCode, err)
		}
	}
	return nil
}
