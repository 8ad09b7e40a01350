// Package linker merges RDF-reconstructed biographical facts into the
// graph: cross-source person identity verification, BORN_IN/DIED_IN/
// WORKED_AT event edges, and parent/child/spouse relationship edges.
package linker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

// Store is the Neo4j surface the linker needs. Satisfied by *store.Writer.
type Store interface {
	PersonExistsByQID(ctx context.Context, qid string) (bool, error)
	WriteEventEdges(ctx context.Context, events []domain.EventFact, batchSize int) (int64, error)
	WriteRelationshipEdges(ctx context.Context, facts []domain.RelationshipFact, batchSize int) error
}

// Options controls batching.
type Options struct {
	BatchSize int
}

func (o *Options) setDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
}

// Stats summarizes one Link call.
type Stats struct {
	IdentitiesVerified int64
	IdentitiesMissing  int64
	EventsWritten      int64
	EventsSkipped      int64
	RelationshipsWritten int64
}

// Linker merges one RDF reconstruction Result into the graph.
type Linker struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// New constructs a Linker.
func New(store Store, opts Options, logger *slog.Logger) *Linker {
	opts.setDefaults()
	return &Linker{store: store, opts: opts, logger: logger}
}

// Link verifies cross-source person identity for every person carrying a
// resolved QID, then writes event and relationship edges.
func (l *Linker) Link(ctx context.Context, persons []domain.Person, events []domain.EventFact, relationships []domain.RelationshipFact) (Stats, error) {
	var stats Stats

	for _, p := range persons {
		if p.QID == "" {
			continue
		}
		exists, err := l.store.PersonExistsByQID(ctx, p.QID)
		if err != nil {
			return stats, fmt.Errorf("verify person identity for %s: %w", p.QID, err)
		}
		if exists {
			stats.IdentitiesVerified++
		} else {
			stats.IdentitiesMissing++
			l.logger.Warn("RDF person references a Wikidata QID not present in this graph", "qid", p.QID, "sourceUri", p.SourceURI)
		}
	}

	skipped, err := l.store.WriteEventEdges(ctx, events, l.opts.BatchSize)
	if err != nil {
		return stats, fmt.Errorf("write event edges: %w", err)
	}
	stats.EventsSkipped = skipped
	stats.EventsWritten = int64(len(events)) - skipped
	if skipped > 0 {
		l.logger.Warn("event facts skipped: place reference carried no GeoNames id", "skipped", skipped)
	}

	canonical := canonicalizeRelationships(relationships)
	if err := l.store.WriteRelationshipEdges(ctx, canonical, l.opts.BatchSize); err != nil {
		return stats, fmt.Errorf("write relationship edges: %w", err)
	}
	stats.RelationshipsWritten = int64(len(canonical))

	return stats, nil
}

// canonicalizeRelationships sorts SPOUSE_OF endpoints into a deterministic
// order so repeated runs over facts where the same couple is reconstructed
// from two different source orderings still converge on one edge.
// PARENT_OF facts are directional and left untouched.
func canonicalizeRelationships(facts []domain.RelationshipFact) []domain.RelationshipFact {
	out := make([]domain.RelationshipFact, len(facts))
	for i, f := range facts {
		if f.Kind == domain.SpouseOf && f.PersonA > f.PersonB {
			f.PersonA, f.PersonB = f.PersonB, f.PersonA
		}
		out[i] = f
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].PersonA != out[j].PersonA {
			return out[i].PersonA < out[j].PersonA
		}
		return out[i].PersonB < out[j].PersonB
	})
	return out
}
