package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureTurtle = `
<http://lod.lincsproject.ca/person1> a <http://www.cidoc-crm.org/cidoc-crm/E21_Person> ;
    <http://www.w3.org/2000/01/rdf-schema#label> "William Shives Fisher" ;
    <http://www.w3.org/2002/07/owl#sameAs> <http://viaf.org/viaf/16905756> .

<http://lod.lincsproject.ca/birth1> a <http://www.cidoc-crm.org/cidoc-crm/E67_Birth> ;
    <http://www.cidoc-crm.org/cidoc-crm/P98_brought_into_life> <http://lod.lincsproject.ca/person1> ;
    <http://www.cidoc-crm.org/cidoc-crm/P7_took_place_at> <https://sws.geonames.org/6098717/> .

<http://lod.lincsproject.ca/activity1> a <http://www.cidoc-crm.org/cidoc-crm/E7_Activity> ;
    <http://www.w3.org/2000/01/rdf-schema#label> "Indian Agent occupation of Fisher, W.S. starting in 1913" ;
    <http://www.cidoc-crm.org/cidoc-crm/P14_carried_out_by> <http://lod.lincsproject.ca/person1> ;
    <http://www.cidoc-crm.org/cidoc-crm/P7_took_place_at> <https://sws.geonames.org/6094817l/> ;
    <http://www.cidoc-crm.org/cidoc-crm/P11_had_participant> <http://lod.lincsproject.ca/agency1> .

<http://lod.lincsproject.ca/agency1>
    <http://www.w3.org/2000/01/rdf-schema#label> "Department of Indian Affairs" .
`

func TestRead_ReconstructsBirthEventAndOccupation(t *testing.T) {
	result, err := Read(strings.NewReader(fixtureTurtle))
	require.NoError(t, err)

	require.Len(t, result.Persons, 1)
	p := result.Persons[0]
	assert.Equal(t, "William Shives Fisher", p.PreferredName)
	require.NotNil(t, p.VIAF)
	assert.Equal(t, "16905756", *p.VIAF)

	var birth, occupation bool
	for _, e := range result.Events {
		switch e.Kind {
		case "BORN_IN":
			birth = true
			require.NotNil(t, e.Place.GeonamesID)
			assert.Equal(t, int64(6098717), *e.Place.GeonamesID)
		case "WORKED_AT":
			occupation = true
			assert.Equal(t, "Indian Agent", e.Role)
			assert.Equal(t, "Department of Indian Affairs", e.Agency)
			require.NotNil(t, e.Place.GeonamesID)
			assert.Equal(t, int64(6094817), *e.Place.GeonamesID)
		}
	}
	assert.True(t, birth, "expected a BORN_IN event")
	assert.True(t, occupation, "expected a WORKED_AT event")
}

func TestRead_DropsPersonsWithNoQualifyingFacts(t *testing.T) {
	const ttl = `
<http://lod.lincsproject.ca/lonely> a <http://www.cidoc-crm.org/cidoc-crm/E21_Person> ;
    <http://www.w3.org/2000/01/rdf-schema#label> "Nobody Notable" .
`
	result, err := Read(strings.NewReader(ttl))
	require.NoError(t, err)
	assert.Empty(t, result.Persons)
}

func TestGeonamesIDFromURL_StripsTrailingLetter(t *testing.T) {
	id, ok := geonamesIDFromURL("https://sws.geonames.org/6098717l/")
	require.True(t, ok)
	assert.Equal(t, int64(6098717), id)
}
