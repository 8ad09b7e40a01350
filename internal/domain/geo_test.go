package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM_SamePoint(t *testing.T) {
	assert.InDelta(t, 0.0, HaversineKM(43.65, -79.38, 43.65, -79.38), 1e-9)
}

func TestHaversineKM_TorontoPair(t *testing.T) {
	// Q172 (43.65,-79.38) vs geonameId 6167865 (43.70011,-79.4163), S1/S2 fixtures.
	d := HaversineKM(43.65, -79.38, 43.70011, -79.4163)
	assert.InDelta(t, 6.3, d, 0.5)
}

func TestNewBoundingBox_NearPoleWidensLongitude(t *testing.T) {
	box := NewBoundingBox(89.9, 45.0, 10.0)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.Less(t, box.MinLat, 89.9)
	assert.LessOrEqual(t, box.MaxLat, 90.0)
}

func TestNewBoundingBox_EquatorContainsCenter(t *testing.T) {
	box := NewBoundingBox(0.0, 0.0, 10.0)
	assert.True(t, box.Contains(0.0, 0.0))
	assert.False(t, box.Contains(0.0, 1.0)) // ~111km away
}

func TestNewBoundingBox_ClampsLatAtPoles(t *testing.T) {
	box := NewBoundingBox(-89.99, 0.0, 50.0)
	assert.Equal(t, -90.0, box.MinLat)
}
