package domain

// Person is produced by the Wikidata filter (humans with a place tie) and by
// the RDF fact reader (biographical records from CIDOC-CRM sources).
type Person struct {
	// QID is the Wikidata identifier when the person was sourced from
	// Wikidata. SourceURI is the source-scoped identifier (e.g. a LINCS
	// URI) when sourced from RDF. At least one must be set; both are when
	// an RDF record carries an owl:sameAs link to a Wikidata entity.
	QID       string `json:"qid,omitempty"`
	SourceURI string `json:"sourceUri,omitempty"`

	PreferredName  string   `json:"preferredName"`
	AlternateNames []string `json:"alternateNames,omitempty"`

	BirthDate *string `json:"birthDate,omitempty"` // ISO calendar date, may be year-only
	DeathDate *string `json:"deathDate,omitempty"`

	BirthPlaceRef *PlaceRef `json:"birthPlaceRef,omitempty"`
	DeathPlaceRef *PlaceRef `json:"deathPlaceRef,omitempty"`

	ResidenceQIDs   []string `json:"residenceQids,omitempty"`   // cap 5
	WorkLocationQIDs []string `json:"workLocationQids,omitempty"` // cap 5
	CitizenshipQID  string   `json:"citizenshipQid,omitempty"`
	OccupationQIDs  []string `json:"occupationQids,omitempty"` // cap 5
	PositionQIDs    []string `json:"positionQids,omitempty"`   // cap 5
	EmployerQIDs    []string `json:"employerQids,omitempty"`   // cap 3

	VIAF *string `json:"viaf,omitempty"`
	GND  *string `json:"gnd,omitempty"`
	LoC  *string `json:"loc,omitempty"`
}

// PlaceRef is a reference to a place that has not yet been resolved to
// store-internal identity. It carries exactly one of GeonamesID, QID, or an
// inline coordinate pair for a blank-node place (CRM reconstruction without
// a known identifier).
type PlaceRef struct {
	GeonamesID *int64  `json:"geonamesId,omitempty"`
	QID        *string `json:"qid,omitempty"`
	Name       string  `json:"name,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// Resolved reports whether the reference names a concrete identifier rather
// than only an inline coordinate.
func (r PlaceRef) Resolved() bool {
	return r.GeonamesID != nil || r.QID != nil
}

const (
	maxResidences    = 5
	maxWorkLocations = 5
	maxOccupations   = 5
	maxPositions     = 5
	maxEmployers     = 3
	maxOperatingAreas = 10
	maxFounders      = 5
)

// CapResidences truncates ResidenceQIDs to the per-property maximum.
func (p *Person) CapResidences() {
	p.ResidenceQIDs = capStrings(p.ResidenceQIDs, maxResidences)
}

// CapWorkLocations truncates WorkLocationQIDs to the per-property maximum.
func (p *Person) CapWorkLocations() {
	p.WorkLocationQIDs = capStrings(p.WorkLocationQIDs, maxWorkLocations)
}

// CapOccupations truncates OccupationQIDs to the per-property maximum.
func (p *Person) CapOccupations() {
	p.OccupationQIDs = capStrings(p.OccupationQIDs, maxOccupations)
}

// CapPositions truncates PositionQIDs to the per-property maximum.
func (p *Person) CapPositions() {
	p.PositionQIDs = capStrings(p.PositionQIDs, maxPositions)
}

// CapEmployers truncates EmployerQIDs to the per-property maximum.
func (p *Person) CapEmployers() {
	p.EmployerQIDs = capStrings(p.EmployerQIDs, maxEmployers)
}

func capStrings(s []string, max int) []string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
