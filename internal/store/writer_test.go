package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixCoordinates(t *testing.T) {
	cases := []struct {
		name          string
		lat, lon      float64
		wantLat       float64
		wantLon       float64
		wantKind      string
	}{
		{"valid", 43.7, -79.4, 43.7, -79.4, "ok"},
		{"swapped", -79.4, 43.7, 43.7, -79.4, "swapped"},
		{"invalid", -200, 400, -200, 400, "invalid"},
		{"pole boundary", 90, 180, 90, 180, "ok"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotLat, gotLon, kind := fixCoordinates(c.lat, c.lon)
			assert.Equal(t, c.wantKind, kind)
			if kind != "invalid" {
				assert.Equal(t, c.wantLat, gotLat)
				assert.Equal(t, c.wantLon, gotLon)
			}
		})
	}
}

func TestIndexStatements_CoverEveryEntityLabel(t *testing.T) {
	stmts := indexStatements()
	for _, label := range []string{"Country", "AdminDivision", "Place", "WikidataPlace", "Person", "Organization"} {
		found := false
		for _, s := range stmts {
			if containsLabel(s, label) {
				found = true
				break
			}
		}
		assert.True(t, found, "no index/constraint statement references label %s", label)
	}
}

func containsLabel(stmt, label string) bool {
	needle := "FOR (" // every statement declares its node variable this way
	idx := indexOf(stmt, needle)
	if idx < 0 {
		return false
	}
	return indexOf(stmt[idx:], ":"+label+")") >= 0 || indexOf(stmt[idx:], ":"+label+" ") >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestWriteVerb(t *testing.T) {
	assert.Equal(t, "CREATE", writeVerb(ModeBulkLoad))
	assert.Equal(t, "MERGE", writeVerb(ModeIncremental))
}
