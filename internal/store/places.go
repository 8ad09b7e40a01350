package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

const defaultPlaceBatchSize = 10000

// WritePlaces upserts places in batches of batchSize, applying the
// coordinate sanity fix to every record before it reaches Cypher. Returns
// the aggregate swap/drop counts across all batches.
func (w *Writer) WritePlaces(ctx context.Context, places []domain.Place, mode Mode, batchSize int) (CoordinateFix, error) {
	if batchSize <= 0 {
		batchSize = defaultPlaceBatchSize
	}
	var fix CoordinateFix

	for start := 0; start < len(places); start += batchSize {
		end := min(start+batchSize, len(places))
		rows, batchFix := placeRows(places[start:end])
		fix.Swapped += batchFix.Swapped
		fix.Invalid += batchFix.Invalid
		if len(rows) == 0 {
			continue
		}

		query := fmt.Sprintf(`
UNWIND $rows AS row
%s (p:Place {geonameId: row.geonameId})
SET p.name = row.name,
    p.asciiName = row.asciiName,
    p.alternateNames = row.alternateNames,
    p.latitude = row.latitude,
    p.longitude = row.longitude,
    p.location = point({latitude: row.latitude, longitude: row.longitude}),
    p.featureClass = row.featureClass,
    p.featureCode = row.featureCode,
    p.countryCode = row.countryCode,
    p.admin1Code = row.admin1Code,
    p.admin2Code = row.admin2Code,
    p.admin3Code = row.admin3Code,
    p.admin4Code = row.admin4Code,
    p.population = row.population,
    p.elevation = row.elevation,
    p.timezone = row.timezone,
    p.modificationDate = row.modificationDate
`, writeVerb(mode))

		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": rows})
		}); err != nil {
			return fix, fmt.Errorf("write place batch [%d:%d]: %w", start, end, err)
		}
	}
	return fix, nil
}

func placeRows(places []domain.Place) ([]map[string]any, CoordinateFix) {
	var fix CoordinateFix
	rows := make([]map[string]any, 0, len(places))
	for _, p := range places {
		lat, lon, kind := fixCoordinates(p.Latitude, p.Longitude)
		switch kind {
		case "swapped":
			fix.Swapped++
		case "invalid":
			fix.Invalid++
			continue
		}
		var elevation any
		if p.Elevation != nil {
			elevation = *p.Elevation
		}
		rows = append(rows, map[string]any{
			"geonameId":        p.GeonameID,
			"name":             p.Name,
			"asciiName":        p.ASCIIName,
			"alternateNames":   p.AlternateNames,
			"latitude":         lat,
			"longitude":        lon,
			"featureClass":     p.FeatureClass,
			"featureCode":      p.FeatureCode,
			"countryCode":      p.CountryCode,
			"admin1Code":       p.Admin1Code,
			"admin2Code":       p.Admin2Code,
			"admin3Code":       p.Admin3Code,
			"admin4Code":       p.Admin4Code,
			"population":       p.Population,
			"elevation":        elevation,
			"timezone":         p.Timezone,
			"modificationDate": p.ModificationDate,
		})
	}
	return rows, fix
}
