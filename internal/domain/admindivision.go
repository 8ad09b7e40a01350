package domain

// AdminDivision is materialised from any Place with feature-class A and a
// recognised admin feature code (ADM1..ADM4, ADMD).
type AdminDivision struct {
	GeonameID int64 `json:"geonameId"`

	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	FeatureCode string `json:"featureCode"`

	Admin1Code string `json:"admin1Code"`
	Admin2Code string `json:"admin2Code"`
	Admin3Code string `json:"admin3Code"`
	Admin4Code string `json:"admin4Code"`

	Level int `json:"level"` // 1-4

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Location  Point   `json:"location"`

	Population int64 `json:"population"`
}

// AdminDivisionFromPlace materialises an AdminDivision from a Place that
// satisfies Place.IsAdminDivision.
func AdminDivisionFromPlace(p Place) AdminDivision {
	return AdminDivision{
		GeonameID:   p.GeonameID,
		Name:        p.Name,
		CountryCode: p.CountryCode,
		FeatureCode: p.FeatureCode,
		Admin1Code:  p.Admin1Code,
		Admin2Code:  p.Admin2Code,
		Admin3Code:  p.Admin3Code,
		Admin4Code:  p.Admin4Code,
		Level:       adminFeatureLevel(p.FeatureCode),
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Location:    Point{Lat: p.Latitude, Lon: p.Longitude},
		Population:  p.Population,
	}
}

func adminFeatureLevel(featureCode string) int {
	switch featureCode {
	case "ADM1":
		return 1
	case "ADM2":
		return 2
	case "ADM3":
		return 3
	case "ADM4", "ADMD":
		return 4
	default:
		return 0
	}
}

// Valid reports whether the AdminDivision satisfies the level invariant:
// admin1..adminL non-empty, admin(L+1)..admin4 empty.
func (a AdminDivision) Valid() bool {
	codes := [4]string{a.Admin1Code, a.Admin2Code, a.Admin3Code, a.Admin4Code}
	for i, c := range codes {
		level := i + 1
		if level <= a.Level && c == "" {
			return false
		}
		if level > a.Level && c != "" {
			return false
		}
	}
	return true
}

// Country is derived from the set of distinct ISO country codes seen on
// Places.
type Country struct {
	Code string `json:"code"`
}
