package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceScore(t *testing.T) {
	cases := []struct {
		distanceKM float64
		want       float64
	}{
		{0.0, 1.0},
		{0.1, 1.0},
		{0.5, 0.9},
		{1.0, 0.9},
		{3.0, 0.7},
		{5.0, 0.7},
		{8.0, 0.5},
		{10.0, 0.5},
		{25.0, 0.3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DistanceScore(c.distanceKM))
	}
}

func TestNameScore(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		want     float64
	}{
		{"exact match", "Toronto", "toronto", 1.0},
		{"substring", "Toronto", "Toronto CN Tower", 0.8},
		{"no shared word", "Toronto", "CN Tower", 0.0},
		{"no overlap", "Maitland", "Sheet Harbour", 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, NameScore(c.a, c.b), 1e-9)
		})
	}
}

// TestNameScore_WordOverlapFormula follows the worked example in spec §8
// invariant 12: "Toronto" vs "Toronto CN Tower" word-overlap path is not
// reached because containment already applies, scoring 0.8. The 0.167
// figure in the spec illustrates the word-overlap formula in isolation for
// names that do NOT satisfy containment; we test that formula directly.
func TestNameScore_WordOverlapFormula(t *testing.T) {
	// "Fort William" vs "Fort Garry": overlap=1 ("fort"), max word count=2.
	got := NameScore("Fort William", "Fort Garry")
	assert.InDelta(t, 0.5*(1.0/2.0), got, 1e-9)
}

func TestTypeScore(t *testing.T) {
	assert.InDelta(t, 0.45, TypeScore(75, 15), 1e-9)
	got := TypeScore(75, 90)
	assert.InDelta(t, 0.99, got, 1e-9)
}

// TestScoreCandidate_TorontoVsCNTower reproduces worked example S2.
func TestScoreCandidate_TorontoVsCNTower(t *testing.T) {
	// 5.0 km falls in the 0.7 distance-score band.
	toronto := ScoreCandidate("Toronto", "Toronto", 5.0, 75, 90)
	assert.InDelta(t, 0.908, toronto.Final, 0.001)

	cnTower := ScoreCandidate("Toronto", "CN Tower", 0.9, 75, 15)
	assert.InDelta(t, 0.360, cnTower.Final, 0.001)

	assert.Greater(t, toronto.Final, cnTower.Final)
}

// TestScoreCandidate_MaitlandTiebreak reproduces worked example S3.
func TestScoreCandidate_MaitlandTiebreak(t *testing.T) {
	maitland := ScoreCandidate("Maitland", "Maitland", 3.0, 70, 70)
	assert.InDelta(t, 0.878, maitland.Final, 0.001)

	sheetHarbour := ScoreCandidate("Maitland", "Sheet Harbour", 3.0, 70, 70)
	assert.InDelta(t, 0.378, sheetHarbour.Final, 0.001)

	assert.Greater(t, maitland.Final, sheetHarbour.Final)
}

func TestSelectEdgeKind(t *testing.T) {
	require.Equal(t, SameAs, SelectEdgeKind(0.9, 0.5, 75, 90))
	require.Equal(t, LocatedIn, SelectEdgeKind(0.6, 3.0, 40, 70))
	require.Equal(t, Near, SelectEdgeKind(0.6, 8.0, 70, 70))
}
