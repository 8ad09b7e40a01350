package rdf

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
	"github.com/knakk/rdf"
)

// occupationRolePattern extracts the role token from an activity label like
// "Indian Agent occupation of Johnson, J.A. starting in 1913".
var occupationRolePattern = regexp.MustCompile(`^(.+?)\s+occupation\s+of`)

// placeCoordinatePattern extracts a lon/lat pair from a WKT-style
// "POINT(lon lat)" literal reached via P168_place_is_defined_by.
var placeCoordinatePattern = regexp.MustCompile(`POINT\s*\(\s*(-?[\d.]+)\s+(-?[\d.]+)\s*\)`)

// Result is the full reconstruction output for one Turtle file.
type Result struct {
	Persons       []domain.Person
	Events        []domain.EventFact
	Relationships []domain.RelationshipFact
}

// Read parses r as CIDOC-CRM Turtle and reconstructs person records plus
// their birth/death/occupation event facts and spousal relationships.
func Read(r io.Reader) (Result, error) {
	g, err := parse(r)
	if err != nil {
		return Result{}, err
	}

	placeCache := make(map[string]domain.PlaceRef)
	timeCache := make(map[string]domain.TimeSpan)

	personURIs := g.subjectsOfType(typeE21Person)
	persons := make(map[string]domain.Person, len(personURIs))
	var events []domain.EventFact
	hasBirth := make(map[string]bool)
	hasDeath := make(map[string]bool)
	hasRelationship := make(map[string]bool)

	for _, uri := range personURIs {
		sourceURI := uri.String()
		p := domain.Person{SourceURI: sourceURI}

		if name, ok := g.firstObjectString(uri, predRDFSLabel); ok {
			p.PreferredName = name
		}

		viaf, qid := sameAsIdentifiers(g, uri)
		for _, appellation := range g.objects(uri, predP1IsIdentifiedBy) {
			if av, aq := sameAsIdentifiers(g, appellation); av != "" || aq != "" {
				if viaf == "" {
					viaf = av
				}
				if qid == "" {
					qid = aq
				}
			}
		}
		if viaf != "" {
			p.VIAF = &viaf
		}
		if qid != "" {
			p.QID = qid
		}

		persons[sourceURI] = p
	}

	// Birth events.
	for _, birthURI := range g.subjectsOfType(typeE67Birth) {
		personURI, ok := g.firstObject(birthURI, predP98BroughtIntoLife)
		if !ok {
			continue
		}
		personRef := personURI.String()
		if _, known := persons[personRef]; !known {
			continue
		}
		place, hasPlace := resolvePlace(g, birthURI, placeCache)
		ts := resolveTimeSpan(g, birthURI, timeCache)
		if !hasPlace && ts == nil {
			continue
		}
		events = append(events, domain.EventFact{
			PersonRef: personRef,
			Kind:      domain.EventBornIn,
			Place:     place,
			Time:      ts,
		})
		hasBirth[personRef] = true
	}

	// Death events.
	for _, deathURI := range g.subjectsOfType(typeE69Death) {
		personURI, ok := g.firstObject(deathURI, predP100WasDeathOf)
		if !ok {
			continue
		}
		personRef := personURI.String()
		if _, known := persons[personRef]; !known {
			continue
		}
		place, hasPlace := resolvePlace(g, deathURI, placeCache)
		ts := resolveTimeSpan(g, deathURI, timeCache)
		if !hasPlace && ts == nil {
			continue
		}
		events = append(events, domain.EventFact{
			PersonRef: personRef,
			Kind:      domain.EventDiedIn,
			Place:     place,
			Time:      ts,
		})
		hasDeath[personRef] = true
	}

	// Marriage (joining) events: unordered pair, SPOUSE_OF both directions
	// collapsed to one canonical fact per joining node.
	var relationships []domain.RelationshipFact
	for _, joinURI := range g.subjectsOfType(typeE85Joining) {
		parties := g.objects(joinURI, predP143Joined)
		if len(parties) < 2 {
			continue
		}
		a, b := parties[0].String(), parties[1].String()
		if _, ok := persons[a]; !ok {
			continue
		}
		if _, ok := persons[b]; !ok {
			continue
		}
		var date *string
		if ts := resolveTimeSpan(g, joinURI, timeCache); ts != nil && ts.Display != "" {
			d := ts.Display
			date = &d
		}
		relationships = append(relationships, domain.RelationshipFact{
			Kind:    domain.SpouseOf,
			PersonA: a,
			PersonB: b,
			Date:    date,
		})
		hasRelationship[a] = true
		hasRelationship[b] = true
	}

	// Occupation activities (WORKED_AT).
	for _, actURI := range g.subjectsOfType(typeE7Activity) {
		personURI, ok := g.firstObject(actURI, predP14CarriedOutBy)
		if !ok {
			continue
		}
		personRef := personURI.String()
		if _, known := persons[personRef]; !known {
			continue
		}

		role := "Unknown"
		if label, ok := g.firstObjectString(actURI, predRDFSLabel); ok {
			if m := occupationRolePattern.FindStringSubmatch(label); len(m) == 2 {
				role = strings.TrimSpace(m[1])
			}
		}

		place, hasPlace := resolvePlace(g, actURI, placeCache)
		ts := resolveTimeSpan(g, actURI, timeCache)

		agency := ""
		if agencyURI, ok := g.firstObject(actURI, predP11HadParticipant); ok {
			if label, ok := g.firstObjectString(agencyURI, predRDFSLabel); ok {
				agency = label
			}
		}

		events = append(events, domain.EventFact{
			PersonRef: personRef,
			Kind:      domain.EventWorkedAt,
			Place:     place,
			Time:      ts,
			Agency:    agency,
			Role:      role,
		})
		_ = hasPlace
	}

	// Drop persons with none of {birth event, death event, wikidataQid,
	// relationship} present.
	var kept []domain.Person
	for uri, p := range persons {
		if hasBirth[uri] || hasDeath[uri] || p.QID != "" || hasRelationship[uri] {
			kept = append(kept, p)
		}
	}

	return Result{Persons: kept, Events: events, Relationships: relationships}, nil
}

// sameAsIdentifiers scans owl:sameAs links off subj for a VIAF numeric id
// and a Wikidata QID.
func sameAsIdentifiers(g *graph, subj rdf.Term) (viaf, qid string) {
	for _, same := range g.objects(subj, predOwlSameAs) {
		s := same.String()
		switch {
		case strings.Contains(s, "viaf.org"):
			viaf = lastPathSegment(s)
		case strings.Contains(s, "wikidata.org"):
			qid = lastPathSegment(s)
		}
	}
	return viaf, qid
}

// resolvePlace follows P7_took_place_at from an event node to a place
// reference, caching by place URI. GeoNames URLs resolve to a numeric id;
// any other place node resolves to an inline coordinate (if given via
// P168_place_is_defined_by) or a name-only reference.
func resolvePlace(g *graph, eventURI rdf.Term, cache map[string]domain.PlaceRef) (domain.PlaceRef, bool) {
	placeTerm, ok := g.firstObject(eventURI, predP7TookPlaceAt)
	if !ok {
		return domain.PlaceRef{}, false
	}
	placeURI := placeTerm.String()
	if ref, ok := cache[placeURI]; ok {
		return ref, true
	}

	var ref domain.PlaceRef
	if strings.Contains(placeURI, "geonames.org") {
		if id, ok := geonamesIDFromURL(placeURI); ok {
			ref.GeonamesID = &id
		}
	} else {
		if name, ok := g.firstObjectString(placeTerm, predRDFSLabel); ok {
			ref.Name = name
		}
		if coordTerm, ok := g.firstObject(placeTerm, predP168PlaceIsDefinedBy); ok {
			if m := placeCoordinatePattern.FindStringSubmatch(coordTerm.String()); len(m) == 3 {
				lon, errLon := strconv.ParseFloat(m[1], 64)
				lat, errLat := strconv.ParseFloat(m[2], 64)
				if errLon == nil && errLat == nil {
					ref.Lon = &lon
					ref.Lat = &lat
				}
			}
		}
	}

	cache[placeURI] = ref
	return ref, true
}

// geonamesIDFromURL extracts the numeric id from a GeoNames place URL,
// stripping a trailing non-digit suffix (observed in the source data as a
// stray trailing letter after the id, e.g. ".../6098717l").
func geonamesIDFromURL(url string) (int64, bool) {
	trimmed := strings.TrimRight(url, "/")
	segment := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		segment = trimmed[idx+1:]
	}
	var digits strings.Builder
	for _, c := range segment {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// resolveTimeSpan follows P4_has_time-span from an event node, caching by
// time-span URI.
func resolveTimeSpan(g *graph, eventURI rdf.Term, cache map[string]domain.TimeSpan) *domain.TimeSpan {
	tsTerm, ok := g.firstObject(eventURI, predP4HasTimeSpan)
	if !ok {
		return nil
	}
	tsURI := tsTerm.String()
	if ts, ok := cache[tsURI]; ok {
		return &ts
	}

	var ts domain.TimeSpan
	if display, ok := g.firstObjectString(tsTerm, predP82AtSomeTimeWithin); ok {
		ts.Display = display
	}
	if begin, ok := g.firstObjectString(tsTerm, predP82aBeginOfTheBegin); ok {
		ts.Begin = &begin
	}
	if end, ok := g.firstObjectString(tsTerm, predP82bEndOfTheEnd); ok {
		ts.End = &end
	}
	cache[tsURI] = ts
	if ts.Display == "" && ts.Begin == nil && ts.End == nil {
		return nil
	}
	return &ts
}

func lastPathSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
