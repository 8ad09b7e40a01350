package adminhierarchy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jburnford/geo-linked-open-data-kg/internal/progress"
)

type fakeStore struct {
	countries       []string
	placeCounts     map[string]int
	normalCalls     []string
	megaCalls       []string
	ultraCalls      []string
	hierarchyCalls  []string
	failCountry     string
	failBatchSizes  []int
}

func (f *fakeStore) ListCountries(ctx context.Context) ([]string, error) {
	return f.countries, nil
}

func (f *fakeStore) CountPlacesForCountry(ctx context.Context, country string) (int, error) {
	return f.placeCounts[country], nil
}

func (f *fakeStore) CreateAdminDivisionsForCountry(ctx context.Context, country string, batchSize int) error {
	return nil
}

func (f *fakeStore) LinkPlacesNormal(ctx context.Context, country string, batchSize int) error {
	f.normalCalls = append(f.normalCalls, country)
	if country == f.failCountry {
		f.failBatchSizes = append(f.failBatchSizes, batchSize)
		return errors.New("transient failure")
	}
	return nil
}

func (f *fakeStore) LinkPlacesMegaByAdmin1(ctx context.Context, country string, batchSize int) error {
	f.megaCalls = append(f.megaCalls, country)
	return nil
}

func (f *fakeStore) LinkPlacesUltraByAdmin2(ctx context.Context, country string, batchSize int) error {
	f.ultraCalls = append(f.ultraCalls, country)
	return nil
}

func (f *fakeStore) LinkAdminHierarchy(ctx context.Context, country string) error {
	f.hierarchyCalls = append(f.hierarchyCalls, country)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuilder_BuildAll_SelectsStrategyByPlaceCount(t *testing.T) {
	fs := &fakeStore{
		countries: []string{"CA", "US", "RU"},
		placeCounts: map[string]int{
			"CA": 1000,
			"US": 100000,
			"RU": 600000,
		},
	}
	prog, err := progress.Load(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, err)

	b := New(fs, prog, Options{BatchSize: 100}, discardLogger())
	require.NoError(t, b.BuildAll(context.Background()))

	assert.Equal(t, []string{"CA"}, fs.normalCalls)
	assert.Equal(t, []string{"US"}, fs.megaCalls)
	assert.Equal(t, []string{"RU"}, fs.ultraCalls)
	assert.ElementsMatch(t, []string{"CA", "US", "RU"}, fs.hierarchyCalls)
	assert.True(t, prog.IsDone("CA"))
	assert.True(t, prog.IsDone("US"))
	assert.True(t, prog.IsDone("RU"))
}

func TestBuilder_BuildAll_SkipsAlreadyCompletedCountries(t *testing.T) {
	fs := &fakeStore{countries: []string{"CA"}, placeCounts: map[string]int{"CA": 10}}
	progPath := filepath.Join(t.TempDir(), "progress.json")
	prog, err := progress.Load(progPath)
	require.NoError(t, err)
	require.NoError(t, prog.MarkDone("CA"))

	b := New(fs, prog, Options{BatchSize: 100}, discardLogger())
	require.NoError(t, b.BuildAll(context.Background()))

	assert.Empty(t, fs.normalCalls)
}

func TestBuilder_BuildAll_RetriesOnceWithHalvedBatchThenFails(t *testing.T) {
	fs := &fakeStore{
		countries:   []string{"XX"},
		placeCounts: map[string]int{"XX": 10},
		failCountry: "XX",
	}
	prog, err := progress.Load(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, err)

	b := New(fs, prog, Options{BatchSize: 100}, discardLogger())
	require.NoError(t, b.BuildAll(context.Background()))

	assert.Equal(t, []int{100, 50}, fs.failBatchSizes)
	assert.True(t, prog.IsDone("XX"))
}
