package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

// PersonExistsByQID reports whether a Person node carries the given qid.
// Because WritePersons merges RDF-sourced and Wikidata-sourced records
// sharing a resolved QID into the same node at write time, this is a
// verification check rather than the precondition for an edge write: by
// the time a cross-source QID reference is discovered, its target (if
// present in this run's Wikidata ingest) is already the same node.
func (w *Writer) PersonExistsByQID(ctx context.Context, qid string) (bool, error) {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (p:Person {qid: $qid}) RETURN count(p) > 0 AS found`, map[string]any{"qid": qid})
	if err != nil {
		return false, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return false, err
	}
	found, _ := record.Get("found")
	b, _ := found.(bool)
	return b, nil
}

const defaultLinkerBatchSize = 500

// WriteEventEdges upserts BORN_IN/DIED_IN/WORKED_AT edges from event facts.
// A fact whose place reference carries no GeoNames id cannot be matched to
// a Place node and is silently skipped; the skipped count is returned so
// the caller can log it as a warning rather than fail the run.
func (w *Writer) WriteEventEdges(ctx context.Context, events []domain.EventFact, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultLinkerBatchSize
	}

	byKind := make(map[domain.EventFactKind][]domain.EventFact)
	var skipped int64
	for _, e := range events {
		if e.Place.GeonamesID == nil {
			skipped++
			continue
		}
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	for kind, group := range byKind {
		relType := eventEdgeRelType(kind)
		for start := 0; start < len(group); start += batchSize {
			end := min(start+batchSize, len(group))
			if err := w.writeEventEdgeBatch(ctx, relType, group[start:end]); err != nil {
				return skipped, fmt.Errorf("write %s batch [%d:%d]: %w", relType, start, end, err)
			}
		}
	}
	return skipped, nil
}

func eventEdgeRelType(kind domain.EventFactKind) string {
	switch kind {
	case domain.EventBornIn:
		return string(domain.BornIn)
	case domain.EventDiedIn:
		return string(domain.DiedIn)
	case domain.EventWorkedAt:
		return string(domain.WorkedAt)
	default:
		return string(kind)
	}
}

func (w *Writer) writeEventEdgeBatch(ctx context.Context, relType string, events []domain.EventFact) error {
	rows := make([]map[string]any, 0, len(events))
	for _, e := range events {
		var display string
		if e.Time != nil {
			display = e.Time.Display
		}
		rows = append(rows, map[string]any{
			"personRef": e.PersonRef,
			"geonameId": *e.Place.GeonamesID,
			"role":      e.Role,
			"agency":    e.Agency,
			"time":      display,
		})
	}

	query := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (p:Person {qid: row.personRef})
MATCH (g:Place {geonameId: row.geonameId})
MERGE (p)-[r:%s]->(g)
SET r.role = row.role,
    r.agency = row.agency,
    r.time = row.time
`, relType)

	return w.runWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"rows": rows})
	})
}

// WriteRelationshipEdges upserts PARENT_OF (with its reciprocal CHILD_OF)
// and SPOUSE_OF edges. Spouse endpoints must already be sorted into
// canonical order by the caller, so repeated runs converge on one
// relationship rather than two mirror-image ones.
func (w *Writer) WriteRelationshipEdges(ctx context.Context, facts []domain.RelationshipFact, batchSize int) error {
	if batchSize <= 0 {
		batchSize = defaultLinkerBatchSize
	}

	var forward []domain.RelationshipFact
	for _, f := range facts {
		forward = append(forward, f)
		if f.Kind == domain.ParentOf {
			forward = append(forward, domain.RelationshipFact{Kind: domain.ChildOf, PersonA: f.PersonB, PersonB: f.PersonA, Date: f.Date})
		}
	}

	return w.WriteRelationships(ctx, forward, batchSize)
}
