package linker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
)

type fakeStore struct {
	existingQIDs map[string]bool

	writtenEvents        []domain.EventFact
	eventSkipErr         error
	eventSkipCount       int64
	writtenRelationships []domain.RelationshipFact
}

func (f *fakeStore) PersonExistsByQID(ctx context.Context, qid string) (bool, error) {
	return f.existingQIDs[qid], nil
}

func (f *fakeStore) WriteEventEdges(ctx context.Context, events []domain.EventFact, batchSize int) (int64, error) {
	if f.eventSkipErr != nil {
		return 0, f.eventSkipErr
	}
	f.writtenEvents = append(f.writtenEvents, events...)
	return f.eventSkipCount, nil
}

func (f *fakeStore) WriteRelationshipEdges(ctx context.Context, facts []domain.RelationshipFact, batchSize int) error {
	f.writtenRelationships = append(f.writtenRelationships, facts...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gid(n int64) *int64 { return &n }

func TestLink_VerifiesIdentityForPersonsWithResolvedQID(t *testing.T) {
	fs := &fakeStore{existingQIDs: map[string]bool{"Q42": true}}
	l := New(fs, Options{}, discardLogger())

	persons := []domain.Person{
		{SourceURI: "urn:a", QID: "Q42"},
		{SourceURI: "urn:b", QID: "Q99"}, // not present in this run's graph
		{SourceURI: "urn:c"},             // no QID at all, nothing to verify
	}

	stats, err := l.Link(context.Background(), persons, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.IdentitiesVerified)
	assert.EqualValues(t, 1, stats.IdentitiesMissing)
}

func TestLink_SkipsEventsWithNoGeonamesID(t *testing.T) {
	fs := &fakeStore{eventSkipCount: 1}
	l := New(fs, Options{}, discardLogger())

	events := []domain.EventFact{
		{PersonRef: "urn:a", Kind: domain.EventBornIn, Place: domain.PlaceRef{GeonamesID: gid(123)}},
		{PersonRef: "urn:b", Kind: domain.EventDiedIn, Place: domain.PlaceRef{Name: "unknown place"}},
	}

	stats, err := l.Link(context.Background(), nil, events, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.EventsSkipped)
	assert.EqualValues(t, 1, stats.EventsWritten)
}

func TestCanonicalizeRelationships_SortsSpouseEndpoints(t *testing.T) {
	facts := []domain.RelationshipFact{
		{Kind: domain.SpouseOf, PersonA: "urn:z", PersonB: "urn:a"},
	}
	canonical := canonicalizeRelationships(facts)
	require.Len(t, canonical, 1)
	assert.Equal(t, "urn:a", canonical[0].PersonA)
	assert.Equal(t, "urn:z", canonical[0].PersonB)
}

func TestCanonicalizeRelationships_LeavesParentOfDirectionUntouched(t *testing.T) {
	facts := []domain.RelationshipFact{
		{Kind: domain.ParentOf, PersonA: "urn:parent", PersonB: "urn:child"},
	}
	canonical := canonicalizeRelationships(facts)
	require.Len(t, canonical, 1)
	assert.Equal(t, "urn:parent", canonical[0].PersonA)
	assert.Equal(t, "urn:child", canonical[0].PersonB)
}

func TestLink_WritesRelationshipEdges(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs, Options{}, discardLogger())

	facts := []domain.RelationshipFact{
		{Kind: domain.SpouseOf, PersonA: "urn:b", PersonB: "urn:a"},
	}
	stats, err := l.Link(context.Background(), nil, nil, facts)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.RelationshipsWritten)
	require.Len(t, fs.writtenRelationships, 1)
	assert.Equal(t, "urn:a", fs.writtenRelationships[0].PersonA)
}
