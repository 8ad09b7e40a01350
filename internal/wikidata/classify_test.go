package wikidata

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntity(t *testing.T, raw string) rawEntity {
	t.Helper()
	var e rawEntity
	require.NoError(t, jsoniter.Unmarshal([]byte(raw), &e))
	return e
}

const torontoEntityJSON = `{
  "id": "Q172",
  "labels": {"en": {"language": "en", "value": "Toronto"}},
  "descriptions": {"en": {"language": "en", "value": "city in Ontario, Canada"}},
  "aliases": {"en": [{"language": "en", "value": "Hogtown"}]},
  "claims": {
    "P625": [{"mainsnak": {"snaktype": "value", "datatype": "globe-coordinate",
      "datavalue": {"type": "globecoordinate", "value": {"latitude": 43.70011, "longitude": -79.4163}}}}],
    "P31": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q1549591"}}}}],
    "P17": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q16"}}}}],
    "P1566": [{"mainsnak": {"snaktype": "value", "datatype": "string",
      "datavalue": {"type": "string", "value": "6167865"}}}]
  },
  "sitelinks": {"enwiki": {"site": "enwiki", "title": "Toronto"}}
}`

func TestClassifyEntity_Geographic(t *testing.T) {
	e := mustEntity(t, torontoEntityJSON)
	rec := classifyEntity(e)
	require.Equal(t, kindGeographic, rec.kind)

	p := rec.place
	assert.Equal(t, "Q172", p.QID)
	assert.Equal(t, "Toronto", p.Label)
	assert.Equal(t, "city in Ontario, Canada", p.Description)
	assert.InDelta(t, 43.70011, p.Latitude, 1e-9)
	assert.InDelta(t, -79.4163, p.Longitude, 1e-9)
	assert.Equal(t, "Q16", p.CountryQID)
	require.NotNil(t, p.GeonamesID)
	assert.Equal(t, "6167865", *p.GeonamesID)
	require.NotNil(t, p.WikipediaURL)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Toronto", *p.WikipediaURL)
	assert.Contains(t, p.AlternateNames, "Hogtown")
	assert.NotContains(t, p.AlternateNames, "Toronto")
}

const personEntityJSON = `{
  "id": "Q42",
  "labels": {"en": {"language": "en", "value": "Douglas Adams"}},
  "claims": {
    "P31": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q5"}}}}],
    "P19": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q350"}}}}],
    "P569": [{"mainsnak": {"snaktype": "value", "datatype": "time",
      "datavalue": {"type": "time", "value": {"time": "+1952-03-11T00:00:00Z"}}}}]
  }
}`

func TestClassifyEntity_Person(t *testing.T) {
	e := mustEntity(t, personEntityJSON)
	rec := classifyEntity(e)
	require.Equal(t, kindPerson, rec.kind)
	assert.Equal(t, "Douglas Adams", rec.person.PreferredName)
	require.NotNil(t, rec.person.BirthDate)
	assert.Equal(t, "1952-03-11", *rec.person.BirthDate)
	require.NotNil(t, rec.person.BirthPlaceRef)
	require.NotNil(t, rec.person.BirthPlaceRef.QID)
	assert.Equal(t, "Q350", *rec.person.BirthPlaceRef.QID)
}

const personNoPlaceEntityJSON = `{
  "id": "Q999",
  "labels": {"en": {"language": "en", "value": "Nobody"}},
  "claims": {
    "P31": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q5"}}}}]
  }
}`

func TestClassifyEntity_PersonWithoutPlaceConnectionIsDropped(t *testing.T) {
	e := mustEntity(t, personNoPlaceEntityJSON)
	rec := classifyEntity(e)
	assert.Equal(t, kindNone, rec.kind)
}

const organizationEntityJSON = `{
  "id": "Q7894",
  "labels": {"en": {"language": "en", "value": "Hudson's Bay Company"}},
  "claims": {
    "P31": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q4830453"}}}}],
    "P159": [{"mainsnak": {"snaktype": "value", "datatype": "wikibase-item",
      "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q1930"}}}}]
  }
}`

func TestClassifyEntity_Organization(t *testing.T) {
	e := mustEntity(t, organizationEntityJSON)
	rec := classifyEntity(e)
	require.Equal(t, kindOrganization, rec.kind)
	assert.Equal(t, "Hudson's Bay Company", rec.org.Label)
	assert.Contains(t, rec.org.LocationQIDs, "Q1930")
}

func TestBestLabel_FallsBackToQID(t *testing.T) {
	assert.Equal(t, "Q1", bestLabel(map[string]labelValue{}, "Q1"))
}

func TestTimeString_StripsSignAndTruncatesToDate(t *testing.T) {
	claims := map[string][]rawClaim{
		"P569": {{Mainsnak: rawSnak{SnakType: "value", DataValue: rawDataValue{
			Value: jsoniter.RawMessage(`{"time":"+1847-06-11T00:00:00Z"}`),
		}}}},
	}
	v, ok := timeString(claims, "P569")
	require.True(t, ok)
	assert.Equal(t, "1847-06-11", v)
}

func TestQuantityInt_Truncates(t *testing.T) {
	claims := map[string][]rawClaim{
		"P1082": {{Mainsnak: rawSnak{SnakType: "value", DataValue: rawDataValue{
			Value: jsoniter.RawMessage(`{"amount":"+2731571.4"}`),
		}}}},
	}
	v, ok := quantityInt(claims, "P1082")
	require.True(t, ok)
	assert.Equal(t, int64(2731571), v)
}
