package domain

// Organization is a Wikidata entity classified as an organisation that has
// at least one place tie.
type Organization struct {
	QID string `json:"qid"`

	Label        string `json:"label"`
	OfficialName string `json:"officialName,omitempty"`

	FoundingDate    *string `json:"foundingDate,omitempty"`
	DissolutionDate *string `json:"dissolutionDate,omitempty"`

	HeadquartersQID string   `json:"headquartersQid,omitempty"`
	LocationQIDs    []string `json:"locationQids,omitempty"`     // cap 10
	OperatingAreaQIDs []string `json:"operatingAreaQids,omitempty"` // cap 10
	FounderQIDs     []string `json:"founderQids,omitempty"`      // cap 5
	ParentOrgQID    string   `json:"parentOrgQid,omitempty"`
	IndustryQID     string   `json:"industryQid,omitempty"`
}

// CapLocations truncates LocationQIDs to the per-property maximum.
func (o *Organization) CapLocations() {
	o.LocationQIDs = capStrings(o.LocationQIDs, maxOperatingAreas)
}

// CapOperatingAreas truncates OperatingAreaQIDs to the per-property maximum.
func (o *Organization) CapOperatingAreas() {
	o.OperatingAreaQIDs = capStrings(o.OperatingAreaQIDs, maxOperatingAreas)
}

// CapFounders truncates FounderQIDs to the per-property maximum.
func (o *Organization) CapFounders() {
	o.FounderQIDs = capStrings(o.FounderQIDs, maxFounders)
}

// organizationClassQIDs is the fixed set of P31 values that classify a
// Wikidata entity as an organisation (spec §4.2's classification table).
var organizationClassQIDs = map[string]struct{}{
	"Q43229":    {}, // organization
	"Q4830453":  {}, // business
	"Q783794":   {}, // company
	"Q6881511":  {}, // enterprise
	"Q891723":   {}, // public company
	"Q166280":   {}, // corporation
	"Q7210356":  {}, // government agency
	"Q16917":    {}, // hospital
	"Q1664720":  {}, // institute
	"Q31855":    {}, // research institute
	"Q2659904":  {}, // government organization
}

// IsOrganizationClass reports whether instanceOfQid classifies an entity as
// an organisation per the fixed extraction set.
func IsOrganizationClass(instanceOfQID string) bool {
	_, ok := organizationClassQIDs[instanceOfQID]
	return ok
}
