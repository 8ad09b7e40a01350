package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlace_ValidCoordinates(t *testing.T) {
	cases := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"valid", 43.65, -79.38, true},
		{"lat too high", 91.0, 0.0, false},
		{"lat too low", -91.0, 0.0, false},
		{"lon too high", 0.0, 181.0, false},
		{"lon too low", 0.0, -181.0, false},
		{"pole boundary", 90.0, 180.0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Place{Latitude: c.lat, Longitude: c.lon}
			assert.Equal(t, c.want, p.ValidCoordinates())
		})
	}
}

func TestPlace_IsAdminDivision(t *testing.T) {
	assert.True(t, Place{FeatureClass: "A", FeatureCode: "ADM1"}.IsAdminDivision())
	assert.True(t, Place{FeatureClass: "A", FeatureCode: "ADMD"}.IsAdminDivision())
	assert.False(t, Place{FeatureClass: "P", FeatureCode: "PPL"}.IsAdminDivision())
	assert.False(t, Place{FeatureClass: "A", FeatureCode: "PCLI"}.IsAdminDivision())
}

func TestPlace_ValidAdminCodes(t *testing.T) {
	assert.True(t, Place{Admin1Code: "08", Admin2Code: "001"}.ValidAdminCodes())
	assert.True(t, Place{}.ValidAdminCodes())
	assert.False(t, Place{Admin1Code: "", Admin2Code: "001"}.ValidAdminCodes())
}

func TestPlace_AdminLevel(t *testing.T) {
	assert.Equal(t, 2, Place{Admin1Code: "08", Admin2Code: "001"}.AdminLevel())
	assert.Equal(t, 0, Place{}.AdminLevel())
}
