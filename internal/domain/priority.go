package domain

import "strings"

// GeoNamesPriority returns the entity-priority score for a GeoNames feature
// code, per spec §4.6.4. Higher priority means more likely to be a
// settlement-or-larger target rather than a point of interest.
func GeoNamesPriority(featureClass, featureCode string) int {
	featureCode = strings.ToUpper(featureCode)

	switch featureCode {
	case "PPLC":
		return 95
	case "ADM1":
		return 95
	case "ADM2":
		return 88
	case "ADM3":
		return 82
	case "ADM4":
		return 75
	case "AREA":
		return 80
	case "PPLA":
		return 90
	case "PPLA2":
		return 82
	case "PPLA3":
		return 78
	case "PPLA4":
		return 75
	case "PPL":
		return 70
	case "PPLL":
		return 65
	case "PPLH":
		return 60
	case "PPLQ":
		return 55
	case "PPLX":
		return 40
	case "CH", "SCH", "BLDG", "MUS", "MNMT", "HTL":
		return 12
	}

	switch featureClass {
	case "A":
		return 60
	case "P":
		return 50
	case "L":
		return 55
	default:
		return 30
	}
}

// wikidataPriorityTable is ordered most-specific first; the first matching
// substring wins. Mirrors spec §4.6.4's instanceOfLabel substring table.
var wikidataPriorityTable = []struct {
	substr   string
	priority int
}{
	{"country", 100},
	{"province", 95},
	{"state", 95},
	{"county", 90},
	{"township", 85},
	{"municipality", 80},
	{"city", 75},
	{"town", 70},
	{"village", 65},
	{"hamlet", 60},
	{"settlement", 60},
	{"neighbourhood", 40},
	{"district", 40},
	{"building", 15},
	{"landmark", 15},
	{"tower", 15},
	{"monument", 15},
	{"park", 20},
	{"cemetery", 15},
	{"school", 15},
	{"hospital", 15},
}

// WikidataPriority returns the entity-priority score for a WikidataPlace
// based on a case-insensitive substring match against instanceOfLabel, per
// spec §4.6.4.
func WikidataPriority(instanceOfLabel string) int {
	lower := strings.ToLower(instanceOfLabel)
	for _, entry := range wikidataPriorityTable {
		if strings.Contains(lower, entry.substr) {
			return entry.priority
		}
	}
	return 30
}
