package domain

// EventFactKind names the kind of biographical event fact the RDF reader
// reconstructs from a CIDOC-CRM traversal.
type EventFactKind string

const (
	EventBornIn   EventFactKind = "BORN_IN"
	EventDiedIn   EventFactKind = "DIED_IN"
	EventWorkedAt EventFactKind = "WORKED_AT"
)

// TimeSpan is the reconstructed value of a CRM E52_Time-Span node: a
// human-readable display string plus ISO begin/end bounds when known.
type TimeSpan struct {
	Display string  `json:"display,omitempty"`
	Begin   *string `json:"begin,omitempty"`
	End     *string `json:"end,omitempty"`
}

// EventFact is a tuple (subject-person, kind, place-reference, time-span)
// carried through the RDF fact reader but not itself a first-class stored
// entity; the cross-source linker consumes it to emit graph edges.
type EventFact struct {
	PersonRef string        `json:"personRef"` // source-scoped person URI
	Kind      EventFactKind `json:"kind"`
	Place     PlaceRef      `json:"place"`
	Time      *TimeSpan     `json:"time,omitempty"`

	// Agency is the institution a WORKED_AT occupation was carried out for,
	// reached via P11_had_participant on the same E7_Activity node.
	// Supplemented from parse_indian_affairs_rdf.py; empty for BORN_IN/DIED_IN.
	Agency string `json:"agency,omitempty"`

	// Role is the occupation token parsed from the activity's rdfs:label,
	// via the pattern "<role> occupation of ...". Empty for BORN_IN/DIED_IN.
	Role string `json:"role,omitempty"`
}

// RelationshipFact records a parent/child or spousal tie between two
// persons, both referenced by source-scoped URI.
type RelationshipFact struct {
	Kind      EdgeKind `json:"kind"` // PARENT_OF, CHILD_OF, or SPOUSE_OF
	PersonA   string   `json:"personA"`
	PersonB   string   `json:"personB"`
	Date      *string  `json:"date,omitempty"` // marriage date, when known
}
