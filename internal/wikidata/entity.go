// Package wikidata implements the single-pass streaming filter over the
// Wikidata JSON dump: classify each entity as a geographic place, person, or
// organization and extract a fixed property schema.
package wikidata

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rawEntity is the subset of the Wikidata JSON entity schema this filter
// reads. Claims are keyed by P-id; each claim carries a mainsnak with a
// datatype-tagged datavalue. Labels/descriptions/aliases are keyed by
// language code; sitelinks by wiki id.
type rawEntity struct {
	ID     string                `json:"id"`
	Claims map[string][]rawClaim `json:"claims"`

	Labels       map[string]labelValue    `json:"labels"`
	Descriptions map[string]labelValue    `json:"descriptions"`
	Aliases      map[string][]labelValue  `json:"aliases"`
	Sitelinks    map[string]sitelinkValue `json:"sitelinks"`
}

type labelValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type sitelinkValue struct {
	Site  string `json:"site"`
	Title string `json:"title"`
}

type rawClaim struct {
	Mainsnak rawSnak `json:"mainsnak"`
	Rank     string  `json:"rank"`
}

type rawSnak struct {
	SnakType  string        `json:"snaktype"`
	DataType  string        `json:"datatype"`
	DataValue rawDataValue  `json:"datavalue"`
}

type rawDataValue struct {
	Type  string          `json:"type"`
	Value jsoniter.RawMessage `json:"value"`
}

type entityIDValue struct {
	ID string `json:"id"`
}

type globeCoordinateValue struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type timeValue struct {
	Time string `json:"time"`
}

type quantityValue struct {
	Amount string `json:"amount"`
}
