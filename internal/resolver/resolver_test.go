package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
	"github.com/jburnford/geo-linked-open-data-kg/internal/progress"
	"github.com/jburnford/geo-linked-open-data-kg/internal/store"
)

type fakeStore struct {
	directMatchCalls []int
	directMatchErr   error
	directMatched    int64

	countries []string

	unlinkedByCountry map[string][][]store.CandidateSource
	unlinkedErr       error
	fetchCalls        map[string]int

	nearby    map[string][]store.CandidateTarget
	nearbyErr error

	writtenEdges []domain.ResolverEdge
	writeErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		unlinkedByCountry: make(map[string][][]store.CandidateSource),
		fetchCalls:        make(map[string]int),
		nearby:            make(map[string][]store.CandidateTarget),
	}
}

func (f *fakeStore) WriteDirectMatches(ctx context.Context, batchSize int) (int64, error) {
	f.directMatchCalls = append(f.directMatchCalls, batchSize)
	return f.directMatched, f.directMatchErr
}

func (f *fakeStore) CountriesByUnlinkedCount(ctx context.Context) ([]string, error) {
	return f.countries, nil
}

func (f *fakeStore) UnlinkedWikidataPlacesForCountry(ctx context.Context, countryQid string, batchSize int) ([]store.CandidateSource, error) {
	if f.unlinkedErr != nil {
		return nil, f.unlinkedErr
	}
	call := f.fetchCalls[countryQid]
	f.fetchCalls[countryQid] = call + 1

	batches := f.unlinkedByCountry[countryQid]
	if call >= len(batches) {
		return nil, nil
	}
	return batches[call], nil
}

func (f *fakeStore) NearbyPlaces(ctx context.Context, box domain.BoundingBox) ([]store.CandidateTarget, error) {
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return f.nearby["default"], nil
}

func (f *fakeStore) WriteResolverEdges(ctx context.Context, edges []domain.ResolverEdge, batchSize int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writtenEdges = append(f.writtenEdges, edges...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProgress(t *testing.T) *progress.Controller {
	t.Helper()
	p, err := progress.Load(filepath.Join(t.TempDir(), "resolver-progress.json"))
	require.NoError(t, err)
	return p
}

func TestRunDirectMatch_RetriesIndefinitelyOnFailure(t *testing.T) {
	fs := newFakeStore()
	callsBeforeSuccess := 3
	attempt := 0
	fs.directMatchErr = errors.New("transient")
	fs.directMatched = 42

	r := New(fs, newProgress(t), Options{}, discardLogger())

	// Swap the store's error out after a few failed attempts by wrapping
	// WriteDirectMatches via a thin adapter that counts calls.
	wrapped := &countingStore{fakeStore: fs, succeedAfter: callsBeforeSuccess, attempt: &attempt}
	r.store = wrapped

	matched, err := r.RunDirectMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), matched)
	assert.Equal(t, callsBeforeSuccess, attempt)
}

type countingStore struct {
	*fakeStore
	succeedAfter int
	attempt      *int
}

func (c *countingStore) WriteDirectMatches(ctx context.Context, batchSize int) (int64, error) {
	*c.attempt++
	if *c.attempt < c.succeedAfter {
		return 0, errors.New("transient")
	}
	return c.fakeStore.directMatched, nil
}

func TestRunSpatialMatch_ScoresAndWritesBestCandidate(t *testing.T) {
	fs := newFakeStore()
	fs.countries = []string{"Q16"}
	fs.unlinkedByCountry["Q16"] = [][]store.CandidateSource{
		{{QID: "Q172", Label: "Toronto", InstanceOfLabel: "city", Latitude: 43.6532, Longitude: -79.3832}},
	}
	fs.nearby["default"] = []store.CandidateTarget{
		{GeonameID: 6167865, Name: "Toronto", FeatureClass: "P", FeatureCode: "PPLA", Latitude: 43.70011, Longitude: -79.4163},
		{GeonameID: 6941058, Name: "CN Tower", FeatureClass: "S", FeatureCode: "TOWR", Latitude: 43.6426, Longitude: -79.3871},
	}

	prog := newProgress(t)
	r := New(fs, prog, Options{}, discardLogger())

	require.NoError(t, r.RunSpatialMatch(context.Background()))

	require.Len(t, fs.writtenEdges, 1)
	edge := fs.writtenEdges[0]
	assert.Equal(t, "Q172", edge.SourceID)
	assert.Equal(t, "6167865", edge.TargetID)
	assert.True(t, prog.IsDone("Q16"))
}

func TestRunSpatialMatch_SkipsAlreadyCompletedCountries(t *testing.T) {
	fs := newFakeStore()
	fs.countries = []string{"Q16"}

	prog := newProgress(t)
	require.NoError(t, prog.MarkDone("Q16"))

	r := New(fs, prog, Options{}, discardLogger())
	require.NoError(t, r.RunSpatialMatch(context.Background()))

	assert.Empty(t, fs.fetchCalls)
}

func TestResolveCountryWithRetry_HalvesBatchOnFailureThenMarksFailed(t *testing.T) {
	fs := newFakeStore()
	fs.countries = []string{"Q16"}
	// The same unlinked batch is returned for the first fetch and for the
	// halved retry, so both writes fail.
	fs.unlinkedByCountry["Q16"] = [][]store.CandidateSource{
		{{QID: "Q172", Label: "Toronto", InstanceOfLabel: "city", Latitude: 43.6532, Longitude: -79.3832}},
		{{QID: "Q172", Label: "Toronto", InstanceOfLabel: "city", Latitude: 43.6532, Longitude: -79.3832}},
	}
	fs.writeErr = errors.New("write failed")

	prog := newProgress(t)
	r := New(fs, prog, Options{CountryBatchSize: 100}, discardLogger())

	require.NoError(t, r.RunSpatialMatch(context.Background()))
	assert.True(t, prog.IsDone("Q16"), "failed country should be recorded as done (failed) so it is not retried")
}

func TestBestCandidate_PrefersNameMatchOverRawProximity(t *testing.T) {
	r := New(newFakeStore(), nil, Options{}, discardLogger())

	src := store.CandidateSource{QID: "Q172", Label: "Toronto", InstanceOfLabel: "city"}
	candidates := []Candidate{
		{GeonameID: 6941058, Name: "CN Tower", FeatureClass: "S", FeatureCode: "TOWR", DistanceKM: 0.2},
		{GeonameID: 6167865, Name: "Toronto", FeatureClass: "P", FeatureCode: "PPLA", DistanceKM: 7.8},
	}

	best, confidence, ok := r.bestCandidate(src, candidates)
	require.True(t, ok)
	assert.Equal(t, int64(6167865), best.GeonameID)
	assert.Greater(t, confidence, 0.5)
}
