package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

const defaultEdgeBatchSize = 500

// edgeEndpointSpec holds the Cypher node labels and key properties for an
// edge kind's source and target; edgeEndpoints maps each kind to one, since
// each resolver/linker edge kind connects a different pair of entity types.
type edgeEndpointSpec struct {
	sourceLabel, sourceKey string
	targetLabel, targetKey string
}

var edgeEndpoints = map[domain.EdgeKind]edgeEndpointSpec{
	domain.SameAs:     {"WikidataPlace", "qid", "Place", "geonameId"},
	domain.Near:       {"WikidataPlace", "qid", "Place", "geonameId"},
	domain.LocatedIn:  {"WikidataPlace", "qid", "Place", "geonameId"},
	domain.WorkedAt:   {"Person", "qid", "Place", "geonameId"},
	domain.BornIn:     {"Person", "qid", "Place", "geonameId"},
	domain.DiedIn:     {"Person", "qid", "Place", "geonameId"},
	domain.ParentOf:   {"Person", "qid", "Person", "qid"},
	domain.ChildOf:    {"Person", "qid", "Person", "qid"},
	domain.SpouseOf:   {"Person", "qid", "Person", "qid"},
}

// WriteResolverEdges upserts a batch of resolver-produced edges (SAME_AS,
// NEAR, LOCATED_IN), each carrying confidence/distance/evidence. Source is
// always a WikidataPlace QID, target always a Place geonameId (coerced to
// int64 here since the resolver's Phase A direct-ID match compares a JSON
// string field against the store's integer key).
func (w *Writer) WriteResolverEdges(ctx context.Context, edges []domain.ResolverEdge, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultEdgeBatchSize
	}
	return w.writeEdgesByKind(ctx, edges, batchSize)
}

func (w *Writer) writeEdgesByKind(ctx context.Context, edges []domain.ResolverEdge, batchSize int) error {
	byKind := make(map[domain.EdgeKind][]domain.ResolverEdge)
	for _, e := range edges {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	for kind, group := range byKind {
		spec, ok := edgeEndpoints[kind]
		if !ok {
			return fmt.Errorf("no endpoint mapping registered for edge kind %q", kind)
		}
		for start := 0; start < len(group); start += batchSize {
			end := min(start+batchSize, len(group))
			if err := w.writeEdgeBatch(ctx, kind, spec, group[start:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) writeEdgeBatch(ctx context.Context, kind domain.EdgeKind, spec edgeEndpointSpec, edges []domain.ResolverEdge) error {
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, map[string]any{
			"sourceId":   e.SourceID,
			"targetId":   e.TargetID,
			"confidence": e.Confidence,
			"distanceKm": e.DistanceKM,
			"evidence":   e.Evidence,
			"linkedDate": e.LinkedDate.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	// Place.geonameId is stored as an integer, but edge endpoints arrive as
	// strings (a WikidataPlace's geonamesId claim is a string property).
	// Coerce on the match key here; see the Phase A note in resolver.go
	// about the same string/integer hazard.
	targetMatch := fmt.Sprintf("%s: row.targetId", spec.targetKey)
	if spec.targetLabel == "Place" && spec.targetKey == "geonameId" {
		targetMatch = "geonameId: toInteger(row.targetId)"
	}

	query := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (s:%s {%s: row.sourceId})
MATCH (t:%s {%s})
MERGE (s)-[r:%s]->(t)
SET r.confidence = row.confidence,
    r.distanceKm = row.distanceKm,
    r.evidence = row.evidence,
    r.linkedDate = datetime(row.linkedDate)
`, spec.sourceLabel, spec.sourceKey, spec.targetLabel, targetMatch, string(kind))

	return w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"rows": rows})
	})
}

// WriteRelationships upserts PARENT_OF/CHILD_OF/SPOUSE_OF edges between
// persons. SPOUSE_OF endpoints must already be in canonical sorted order
// (the cross-source linker's responsibility) so repeated runs converge on
// one relationship node instead of two mirror-image ones.
func (w *Writer) WriteRelationships(ctx context.Context, facts []domain.RelationshipFact, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultEdgeBatchSize
	}
	for start := 0; start < len(facts); start += batchSize {
		end := min(start+batchSize, len(facts))
		rows := make([]map[string]any, 0, end-start)
		var kind domain.EdgeKind
		for _, f := range facts[start:end] {
			kind = f.Kind
			rows = append(rows, map[string]any{
				"a":    f.PersonA,
				"b":    f.PersonB,
				"date": derefString(f.Date),
			})
		}
		if len(rows) == 0 {
			continue
		}
		query := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (a:Person {qid: row.a})
MATCH (b:Person {qid: row.b})
MERGE (a)-[r:%s]->(b)
SET r.date = row.date
`, string(kind))
		if err := w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"rows": rows})
		}); err != nil {
			return fmt.Errorf("write relationship batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}
