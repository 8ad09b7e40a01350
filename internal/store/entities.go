package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

const defaultEntityBatchSize = 1000

// WriteWikidataPlaces upserts Wikidata place entities. C4 must complete
// this before any SAME_AS edge referencing a WikidataPlace is written.
func (w *Writer) WriteWikidataPlaces(ctx context.Context, places []domain.WikidataPlace, mode Mode, batchSize int) (CoordinateFix, error) {
	if batchSize <= 0 {
		batchSize = defaultEntityBatchSize
	}
	var fix CoordinateFix

	for start := 0; start < len(places); start += batchSize {
		end := min(start+batchSize, len(places))
		rows, batchFix := wikidataPlaceRows(places[start:end])
		fix.Swapped += batchFix.Swapped
		fix.Invalid += batchFix.Invalid
		if len(rows) == 0 {
			continue
		}

		query := fmt.Sprintf(`
UNWIND $rows AS row
%s (w:WikidataPlace {qid: row.qid})
SET w.label = row.label,
    w.description = row.description,
    w.latitude = row.latitude,
    w.longitude = row.longitude,
    w.location = point({latitude: row.latitude, longitude: row.longitude}),
    w.instanceOfQid = row.instanceOfQid,
    w.instanceOfLabel = row.instanceOfLabel,
    w.countryQid = row.countryQid,
    w.geonamesId = row.geonamesId,
    w.alternateNames = row.alternateNames,
    w.historical = row.historical,
    w.colonialContext = row.colonialContext,
    w.viaf = row.viaf,
    w.gnd = row.gnd,
    w.loc = row.loc,
    w.gettyTgn = row.gettyTgn,
    w.osm = row.osm,
    w.whosOnFirst = row.whosOnFirst,
    w.officialNames = row.officialNames,
    w.nativeLabel = row.nativeLabel,
    w.nickname = row.nickname,
    w.historicCountyQid = row.historicCountyQid,
    w.inception = row.inception,
    w.dissolution = row.dissolution,
    w.replaces = row.replaces,
    w.replacedBy = row.replacedBy,
    w.follows = row.follows,
    w.followedBy = row.followedBy,
    w.foundedBy = row.foundedBy,
    w.ownedBy = row.ownedBy,
    w.capitalOf = row.capitalOf,
    w.officialWebsite = row.officialWebsite,
    w.wikipediaUrl = row.wikipediaUrl
`, writeVerb(mode))

		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": rows})
		}); err != nil {
			return fix, fmt.Errorf("write wikidata place batch [%d:%d]: %w", start, end, err)
		}
	}
	return fix, nil
}

func wikidataPlaceRows(places []domain.WikidataPlace) ([]map[string]any, CoordinateFix) {
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
		var geonamesID any
		if p.GeonamesID != nil {
			geonamesID = *p.GeonamesID
		}
		rows = append(rows, map[string]any{
			"qid":               p.QID,
			"label":             p.Label,
			"description":       p.Description,
			"latitude":          lat,
			"longitude":         lon,
			"instanceOfQid":     p.InstanceOfQID,
			"instanceOfLabel":   p.InstanceOfLabel,
			"countryQid":        p.CountryQID,
			"geonamesId":        geonamesID,
			"alternateNames":    p.AlternateNames,
			"historical":        p.Historical,
			"colonialContext":   p.ColonialContext,
			"viaf":              derefString(p.VIAF),
			"gnd":               derefString(p.GND),
			"loc":               derefString(p.LoC),
			"gettyTgn":          derefString(p.GettyTGN),
			"osm":               derefString(p.OSM),
			"whosOnFirst":       derefString(p.WhosOnFirst),
			"officialNames":     p.OfficialNames,
			"nativeLabel":       derefString(p.NativeLabel),
			"nickname":          derefString(p.Nickname),
			"historicCountyQid": derefString(p.HistoricCountyQID),
			"inception":         derefString(p.Inception),
			"dissolution":       derefString(p.Dissolution),
			"replaces":          derefString(p.Replaces),
			"replacedBy":        derefString(p.ReplacedBy),
			"follows":           derefString(p.Follows),
			"followedBy":        derefString(p.FollowedBy),
			"foundedBy":         derefString(p.FoundedBy),
			"ownedBy":           derefString(p.OwnedBy),
			"capitalOf":         derefString(p.CapitalOf),
			"officialWebsite":   derefString(p.OfficialWebsite),
			"wikipediaUrl":      derefString(p.WikipediaURL),
		})
	}
	return rows, fix
}

// WritePersons upserts person entities (Wikidata-sourced and/or RDF-sourced,
// keyed on whichever identifier is set).
func (w *Writer) WritePersons(ctx context.Context, persons []domain.Person, mode Mode, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultEntityBatchSize
	}
	for start := 0; start < len(persons); start += batchSize {
		end := min(start+batchSize, len(persons))
		rows := make([]map[string]any, 0, end-start)
		for _, p := range persons[start:end] {
			key := p.QID
			if key == "" {
				key = p.SourceURI
			}
			if key == "" {
				continue
			}
			row := map[string]any{
				"key":                 key,
				"qid":                 p.QID,
				"sourceUri":           p.SourceURI,
				"preferredName":       p.PreferredName,
				"alternateNames":      p.AlternateNames,
				"birthDate":           derefString(p.BirthDate),
				"deathDate":           derefString(p.DeathDate),
				"citizenshipQid":      p.CitizenshipQID,
				"residenceQids":       p.ResidenceQIDs,
				"workLocationQids":    p.WorkLocationQIDs,
				"occupationQids":      p.OccupationQIDs,
				"positionQids":        p.PositionQIDs,
				"employerQids":        p.EmployerQIDs,
				"viaf":                derefString(p.VIAF),
				"gnd":                 derefString(p.GND),
				"loc":                 derefString(p.LoC),
				"birthPlaceGeonameId": placeRefGeonameID(p.BirthPlaceRef),
				"birthPlaceQid":       placeRefQID(p.BirthPlaceRef),
				"birthPlaceName":      placeRefName(p.BirthPlaceRef),
				"birthPlaceLat":       placeRefLat(p.BirthPlaceRef),
				"birthPlaceLon":       placeRefLon(p.BirthPlaceRef),
				"deathPlaceGeonameId": placeRefGeonameID(p.DeathPlaceRef),
				"deathPlaceQid":       placeRefQID(p.DeathPlaceRef),
				"deathPlaceName":      placeRefName(p.DeathPlaceRef),
				"deathPlaceLat":       placeRefLat(p.DeathPlaceRef),
				"deathPlaceLon":       placeRefLon(p.DeathPlaceRef),
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			continue
		}

		query := fmt.Sprintf(`
UNWIND $rows AS row
%s (p:Person {qid: row.key})
SET p.sourceUri = row.sourceUri,
    p.preferredName = row.preferredName,
    p.alternateNames = row.alternateNames,
    p.birthDate = row.birthDate,
    p.deathDate = row.deathDate,
    p.citizenshipQid = row.citizenshipQid,
    p.residenceQids = row.residenceQids,
    p.workLocationQids = row.workLocationQids,
    p.occupationQids = row.occupationQids,
    p.positionQids = row.positionQids,
    p.employerQids = row.employerQids,
    p.viaf = row.viaf,
    p.gnd = row.gnd,
    p.loc = row.loc,
    p.birthPlaceGeonameId = row.birthPlaceGeonameId,
    p.birthPlaceQid = row.birthPlaceQid,
    p.birthPlaceName = row.birthPlaceName,
    p.birthPlaceLat = row.birthPlaceLat,
    p.birthPlaceLon = row.birthPlaceLon,
    p.deathPlaceGeonameId = row.deathPlaceGeonameId,
    p.deathPlaceQid = row.deathPlaceQid,
    p.deathPlaceName = row.deathPlaceName,
    p.deathPlaceLat = row.deathPlaceLat,
    p.deathPlaceLon = row.deathPlaceLon
`, writeVerb(mode))

		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": rows})
		}); err != nil {
			return fmt.Errorf("write person batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// WriteOrganizations upserts organization entities.
func (w *Writer) WriteOrganizations(ctx context.Context, orgs []domain.Organization, mode Mode, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultEntityBatchSize
	}
	for start := 0; start < len(orgs); start += batchSize {
		end := min(start+batchSize, len(orgs))
		rows := make([]map[string]any, 0, end-start)
		for _, o := range orgs[start:end] {
			rows = append(rows, map[string]any{
				"qid":               o.QID,
				"label":             o.Label,
				"officialName":      o.OfficialName,
				"foundingDate":      derefString(o.FoundingDate),
				"dissolutionDate":   derefString(o.DissolutionDate),
				"headquartersQid":   o.HeadquartersQID,
				"parentOrgQid":      o.ParentOrgQID,
				"industryQid":       o.IndustryQID,
				"locationQids":      o.LocationQIDs,
				"operatingAreaQids": o.OperatingAreaQIDs,
				"founderQids":       o.FounderQIDs,
			})
		}
		if len(rows) == 0 {
			continue
		}

		query := fmt.Sprintf(`
UNWIND $rows AS row
%s (o:Organization {qid: row.qid})
SET o.label = row.label,
    o.officialName = row.officialName,
    o.foundingDate = row.foundingDate,
    o.dissolutionDate = row.dissolutionDate,
    o.headquartersQid = row.headquartersQid,
    o.parentOrgQid = row.parentOrgQid,
    o.industryQid = row.industryQid,
    o.locationQids = row.locationQids,
    o.operatingAreaQids = row.operatingAreaQids,
    o.founderQids = row.founderQids
`, writeVerb(mode))

		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": rows})
		}); err != nil {
			return fmt.Errorf("write organization batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// placeRefGeonameID and friends flatten an optional domain.PlaceRef into
// nil-safe scalar row values, since Neo4j properties can't hold a nested
// map.
func placeRefGeonameID(ref *domain.PlaceRef) any {
	if ref == nil || ref.GeonamesID == nil {
		return nil
	}
	return *ref.GeonamesID
}

func placeRefQID(ref *domain.PlaceRef) string {
	if ref == nil || ref.QID == nil {
		return ""
	}
	return *ref.QID
}

func placeRefName(ref *domain.PlaceRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func placeRefLat(ref *domain.PlaceRef) any {
	if ref == nil || ref.Lat == nil {
		return nil
	}
	return *ref.Lat
}

func placeRefLon(ref *domain.PlaceRef) any {
	if ref == nil || ref.Lon == nil {
		return nil
	}
	return *ref.Lon
}
