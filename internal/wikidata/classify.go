package wikidata

import (
	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

// historicalTypeQIDs flags entities whose instanceOf value marks them as a
// historical administrative or political unit no longer current.
var historicalTypeQIDs = map[string]struct{}{
	"Q15238":   {}, // historical country
	"Q19953632": {}, // former administrative territorial entity
	"Q3024240": {}, // historical country (alt)
	"Q28171280": {}, // defunct country
	"Q838948":  {}, // work (placeholder retained from source list)
	"Q1307214": {}, // former entity
	"Q43702":   {}, // administrative territorial entity
	"Q1620908": {}, // colony
	"Q15979307": {}, // colony (duplicate QID retained from source list, deduped downstream)
	"Q133156":  {}, // protectorate
	"Q161243":  {}, // possession
}

// kind discriminates the sum type a parsed entity resolves to.
type kind int

const (
	kindNone kind = iota
	kindGeographic
	kindPerson
	kindOrganization
)

// record is the classification outcome for one raw entity: at most one of
// Place/Person/Org is populated, matching kind.
type record struct {
	kind kind
	qid  string

	place WikidataPlaceRecord
	person domain.Person
	org   domain.Organization
}

// WikidataPlaceRecord aliases domain.WikidataPlace so the filter package
// can attach stream-specific helpers without widening the domain package's
// surface.
type WikidataPlaceRecord = domain.WikidataPlace

// classifyEntity extracts the relevant record for e, or (zero, kindNone) if
// e matches none of the three classification predicates.
func classifyEntity(e rawEntity) record {
	lat, lon, hasCoord := coordinate(e.Claims, "P625")
	instanceOf, _ := itemID(e.Claims, "P31")

	switch {
	case hasCoord:
		return record{kind: kindGeographic, qid: e.ID, place: buildPlace(e, lat, lon, instanceOf)}
	case isPerson(e.Claims, instanceOf):
		return record{kind: kindPerson, qid: e.ID, person: buildPerson(e)}
	case isOrganization(e.Claims, instanceOf):
		return record{kind: kindOrganization, qid: e.ID, org: buildOrganization(e, instanceOf)}
	default:
		return record{kind: kindNone, qid: e.ID}
	}
}

func isPerson(claims map[string][]rawClaim, instanceOf string) bool {
	if instanceOf != "Q5" {
		return false
	}
	return hasAnyProperty(claims, "P19", "P20", "P551", "P937", "P27")
}

func isOrganization(claims map[string][]rawClaim, instanceOf string) bool {
	if !domain.IsOrganizationClass(instanceOf) {
		return false
	}
	return hasAnyProperty(claims, "P740", "P159", "P2541", "P131")
}

func buildPlace(e rawEntity, lat, lon float64, instanceOf string) domain.WikidataPlace {
	label := bestLabel(e.Labels, e.ID)

	p := domain.WikidataPlace{
		QID:            e.ID,
		Label:          label,
		Latitude:       lat,
		Longitude:      lon,
		Location:       domain.Point{Lat: lat, Lon: lon},
		InstanceOfQID:  instanceOf,
		AlternateNames: allLabelsAndAliases(e.Labels, e.Aliases, label),
		Historical:     isHistorical(instanceOf),
	}
	if d, ok := e.Descriptions["en"]; ok {
		p.Description = d.Value
	}

	if v, ok := itemID(e.Claims, "P17"); ok {
		p.CountryQID = v
	}
	if v, ok := stringValue(e.Claims, "P1566"); ok {
		gid := v
		p.GeonamesID = &gid
	}
	if v, ok := allStrings(e.Claims, "P1448"); ok {
		p.OfficialNames = v
	}
	if v, ok := stringValue(e.Claims, "P1705"); ok {
		p.NativeLabel = &v
	}
	if v, ok := stringValue(e.Claims, "P1449"); ok {
		p.Nickname = &v
	}
	if v, ok := itemID(e.Claims, "P7959"); ok {
		p.HistoricCountyQID = &v
	}
	if v, ok := timeString(e.Claims, "P571"); ok {
		p.Inception = &v
	}
	if v, ok := timeString(e.Claims, "P576"); ok {
		p.Dissolution = &v
	}
	if v, ok := itemID(e.Claims, "P1365"); ok {
		p.Replaces = &v
	}
	if v, ok := itemID(e.Claims, "P1366"); ok {
		p.ReplacedBy = &v
	}
	if v, ok := itemID(e.Claims, "P155"); ok {
		p.Follows = &v
	}
	if v, ok := itemID(e.Claims, "P156"); ok {
		p.FollowedBy = &v
	}

	foundedColonial := false
	if v, ok := itemID(e.Claims, "P112"); ok {
		p.FoundedBy = &v
		foundedColonial = true
	}
	if v, ok := itemID(e.Claims, "P127"); ok {
		p.OwnedBy = &v
		foundedColonial = true
	}
	p.ColonialContext = foundedColonial

	if v, ok := itemID(e.Claims, "P1376"); ok {
		p.CapitalOf = &v
	}
	if v, ok := stringValue(e.Claims, "P227"); ok {
		p.GND = &v
	}
	if v, ok := stringValue(e.Claims, "P214"); ok {
		p.VIAF = &v
	}
	if v, ok := stringValue(e.Claims, "P244"); ok {
		p.LoC = &v
	}
	if v, ok := stringValue(e.Claims, "P1667"); ok {
		p.GettyTGN = &v
	}
	if v, ok := stringValue(e.Claims, "P402"); ok {
		p.OSM = &v
	}
	if v, ok := stringValue(e.Claims, "P6766"); ok {
		p.WhosOnFirst = &v
	}
	if v, ok := stringValue(e.Claims, "P856"); ok {
		p.OfficialWebsite = &v
	}
	if v, ok := wikipediaURL(e.Sitelinks); ok {
		p.WikipediaURL = &v
	}

	p.DedupeAlternateNames()
	return p
}

func buildPerson(e rawEntity) domain.Person {
	label := bestLabel(e.Labels, e.ID)
	p := domain.Person{
		QID:              e.ID,
		PreferredName:    label,
		AlternateNames:   allLabelsAndAliases(e.Labels, e.Aliases, label),
		ResidenceQIDs:    allItemIDs(e.Claims, "P551", 0),
		WorkLocationQIDs: allItemIDs(e.Claims, "P937", 0),
		OccupationQIDs:   allItemIDs(e.Claims, "P106", 0),
		PositionQIDs:     allItemIDs(e.Claims, "P39", 0),
		EmployerQIDs:     allItemIDs(e.Claims, "P108", 0),
	}
	if v, ok := timeString(e.Claims, "P569"); ok {
		p.BirthDate = &v
	}
	if v, ok := timeString(e.Claims, "P570"); ok {
		p.DeathDate = &v
	}
	if v, ok := itemID(e.Claims, "P19"); ok {
		p.BirthPlaceRef = &domain.PlaceRef{QID: &v}
	}
	if v, ok := itemID(e.Claims, "P20"); ok {
		p.DeathPlaceRef = &domain.PlaceRef{QID: &v}
	}
	if v, ok := itemID(e.Claims, "P27"); ok {
		p.CitizenshipQID = v
	}
	if v, ok := stringValue(e.Claims, "P214"); ok {
		p.VIAF = &v
	}
	if v, ok := stringValue(e.Claims, "P227"); ok {
		p.GND = &v
	}
	if v, ok := stringValue(e.Claims, "P244"); ok {
		p.LoC = &v
	}

	p.CapResidences()
	p.CapWorkLocations()
	p.CapOccupations()
	p.CapPositions()
	p.CapEmployers()
	return p
}

func buildOrganization(e rawEntity, instanceOf string) domain.Organization {
	label := bestLabel(e.Labels, e.ID)
	o := domain.Organization{
		QID:            e.ID,
		Label:          label,
		LocationQIDs:   allItemIDs(e.Claims, "P159", 0),
		OperatingAreaQIDs: allItemIDs(e.Claims, "P2541", 0),
		FounderQIDs:    allItemIDs(e.Claims, "P112", 0),
		IndustryQID:    "",
	}
	if v, ok := itemID(e.Claims, "P740"); ok {
		o.HeadquartersQID = v
	}
	if v, ok := itemID(e.Claims, "P131"); ok && o.HeadquartersQID == "" {
		o.HeadquartersQID = v
	}
	if v, ok := timeString(e.Claims, "P571"); ok {
		o.FoundingDate = &v
	}
	if v, ok := timeString(e.Claims, "P576"); ok {
		o.DissolutionDate = &v
	}
	if v, ok := itemID(e.Claims, "P749"); ok {
		o.ParentOrgQID = v
	}
	_ = instanceOf

	o.CapLocations()
	o.CapOperatingAreas()
	o.CapFounders()
	return o
}

func isHistorical(instanceOf string) bool {
	_, ok := historicalTypeQIDs[instanceOf]
	return ok
}

// allStrings extracts every string-typed value for property p.
func allStrings(claims map[string][]rawClaim, p string) ([]string, bool) {
	cs, ok := claims[p]
	if !ok {
		return nil, false
	}
	var out []string
	for _, c := range cs {
		if c.Mainsnak.SnakType != "value" {
			continue
		}
		var s string
		if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, len(out) > 0
}
