// Package domain models the historical-geography knowledge graph: places
// sourced from GeoNames and Wikidata, administrative divisions, countries,
// persons and organizations, and the edges the resolver and linker produce
// between them.
//
// # Sources
//
// Place records come from the GeoNames gazetteer's tab-separated "all
// countries" dump (internal/gazetteer). WikidataPlace, Person, and
// Organization records come from a single pass over the Wikidata JSON dump
// (internal/wikidata). Event facts — birth, death, and occupation ties
// between persons and places — come from CIDOC-CRM Turtle files
// (internal/rdf).
//
// # Identity
//
// Place identity is the GeoNames integer id. WikidataPlace, Person, and
// Organization identity is the Wikidata QID. A person may additionally carry
// a source-scoped URI (e.g. a LINCS identifier) when sourced from RDF rather
// than Wikidata; both identities are recorded on one node, keyed on the QID
// when one is known, and the cross-source linker (internal/linker) checks
// that such a QID is present in the graph.
//
// # Edges and confidence
//
// Every resolver-emitted edge (SAME_AS, NEAR, LOCATED_IN) carries a
// confidence in [0, 1], a distance in kilometres, an evidence token naming
// the rule that produced it, and a linked-date timestamp. Administrative
// containment edges (LOCATED_IN_ADMIN1..4, PART_OF, LOCATED_IN_COUNTRY) and
// person-place edges (BORN_IN, DIED_IN, WORKED_AT) carry no confidence; they
// are derived deterministically from admin-code tuples or identifier
// matches, not scored.
package domain
