package domain

import "time"

// EdgeKind names a relationship type in the graph.
type EdgeKind string

const (
	LocatedInCountry EdgeKind = "LOCATED_IN_COUNTRY"
	LocatedInAdmin1  EdgeKind = "LOCATED_IN_ADMIN1"
	LocatedInAdmin2  EdgeKind = "LOCATED_IN_ADMIN2"
	LocatedInAdmin3  EdgeKind = "LOCATED_IN_ADMIN3"
	LocatedInAdmin4  EdgeKind = "LOCATED_IN_ADMIN4"
	PartOf           EdgeKind = "PART_OF"

	SameAs    EdgeKind = "SAME_AS"
	Near      EdgeKind = "NEAR"
	LocatedIn EdgeKind = "LOCATED_IN"

	// PossiblyLocatedAt is the conservative edge kind used by low-confidence
	// external loaders (e.g. a post-office gazetteer matched by name alone).
	// It is never promoted to SAME_AS and never written by the resolver;
	// it exists in the vocabulary so downstream consumers recognize it.
	PossiblyLocatedAt EdgeKind = "POSSIBLY_LOCATED_AT"

	WorkedAt EdgeKind = "WORKED_AT"
	BornIn   EdgeKind = "BORN_IN"
	DiedIn   EdgeKind = "DIED_IN"

	ParentOf EdgeKind = "PARENT_OF"
	ChildOf  EdgeKind = "CHILD_OF"
	SpouseOf EdgeKind = "SPOUSE_OF"
)

// ResolverEdge is an edge produced by the spatial resolver or the
// cross-source linker, carrying provenance and confidence.
type ResolverEdge struct {
	Kind EdgeKind `json:"kind"`

	SourceID string `json:"sourceId"` // QID or source URI
	TargetID string `json:"targetId"` // geonameId (as string) or QID

	Confidence float64   `json:"confidence"`
	DistanceKM float64   `json:"distanceKm"`
	Evidence   string    `json:"evidence"`
	LinkedDate time.Time `json:"linkedDate"`
}

const (
	EvidenceGeonamesIDMatch  = "geonames_id_match"
	EvidenceSpatialProximity = "spatial_proximity"
)

// SelectEdgeKind chooses the resolver edge kind for the best-scored
// candidate, per spec §4.6.2 step 5. LOCATED_IN takes precedence over NEAR
// when both predicates fire (the Open Question resolution in spec §9: "the
// stronger semantic claim").
func SelectEdgeKind(confidence, distanceKM float64, sourcePriority, targetPriority int) EdgeKind {
	if confidence >= 0.85 && distanceKM <= 1.0 {
		return SameAs
	}
	if sourcePriority < 60 && targetPriority >= 60 && distanceKM <= 5.0 {
		return LocatedIn
	}
	return Near
}
