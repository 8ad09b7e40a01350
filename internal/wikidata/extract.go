package wikidata

import (
	"strconv"
	"strings"
)

// firstClaim returns the first claim for property p, ignoring rank, or
// (zero, false) if the property is absent or the snak carries no value.
func firstClaim(claims map[string][]rawClaim, p string) (rawClaim, bool) {
	cs, ok := claims[p]
	if !ok || len(cs) == 0 {
		return rawClaim{}, false
	}
	for _, c := range cs {
		if c.Mainsnak.SnakType == "value" {
			return c, true
		}
	}
	return rawClaim{}, false
}

// stringValue extracts a plain string-typed value from property p.
func stringValue(claims map[string][]rawClaim, p string) (string, bool) {
	c, ok := firstClaim(claims, p)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// itemID extracts the QID referenced by a wikibase-entityid value.
func itemID(claims map[string][]rawClaim, p string) (string, bool) {
	c, ok := firstClaim(claims, p)
	if !ok {
		return "", false
	}
	var v entityIDValue
	if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &v); err != nil || v.ID == "" {
		return "", false
	}
	return v.ID, true
}

// allItemIDs extracts every QID referenced by property p, in claim order,
// capped at max (max<=0 means unlimited).
func allItemIDs(claims map[string][]rawClaim, p string, max int) []string {
	cs, ok := claims[p]
	if !ok {
		return nil
	}
	var out []string
	for _, c := range cs {
		if c.Mainsnak.SnakType != "value" {
			continue
		}
		var v entityIDValue
		if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &v); err != nil || v.ID == "" {
			continue
		}
		out = append(out, v.ID)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// coordinate extracts a P625-style globe coordinate, returning (lat, lon,
// true) on success.
func coordinate(claims map[string][]rawClaim, p string) (float64, float64, bool) {
	c, ok := firstClaim(claims, p)
	if !ok {
		return 0, 0, false
	}
	var v globeCoordinateValue
	if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &v); err != nil {
		return 0, 0, false
	}
	return v.Latitude, v.Longitude, true
}

// timeString extracts a Wikidata time value and strips it to its YYYY-MM-DD
// date prefix. Wikidata times look like "+1847-06-11T00:00:00Z"; the leading
// sign is dropped and only the date portion is kept.
func timeString(claims map[string][]rawClaim, p string) (string, bool) {
	c, ok := firstClaim(claims, p)
	if !ok {
		return "", false
	}
	var v timeValue
	if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &v); err != nil {
		return "", false
	}
	t := strings.TrimPrefix(v.Time, "+")
	t = strings.TrimPrefix(t, "-")
	if idx := strings.Index(t, "T"); idx >= 0 {
		t = t[:idx]
	}
	if t == "" {
		return "", false
	}
	return t, true
}

// quantityInt extracts a quantity value, truncating it to an integer.
func quantityInt(claims map[string][]rawClaim, p string) (int64, bool) {
	c, ok := firstClaim(claims, p)
	if !ok {
		return 0, false
	}
	var v quantityValue
	if err := json.Unmarshal(c.Mainsnak.DataValue.Value, &v); err != nil {
		return 0, false
	}
	amount := strings.TrimPrefix(v.Amount, "+")
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// hasAnyProperty reports whether any of the given properties carry a value
// claim, used for the person/organization classification predicates.
func hasAnyProperty(claims map[string][]rawClaim, props ...string) bool {
	for _, p := range props {
		if _, ok := firstClaim(claims, p); ok {
			return true
		}
	}
	return false
}

// bestLabel selects the English label if present, else the first available
// label in map iteration order, else the QID itself.
func bestLabel(labels map[string]labelValue, qid string) string {
	if v, ok := labels["en"]; ok && v.Value != "" {
		return v.Value
	}
	for _, v := range labels {
		if v.Value != "" {
			return v.Value
		}
	}
	return qid
}

// allLabelsAndAliases collects every label and alias value (all languages),
// deduplicated and excluding primary, preserving first-seen order.
func allLabelsAndAliases(labels map[string]labelValue, aliases map[string][]labelValue, primary string) []string {
	seen := map[string]struct{}{primary: {}}
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, v := range labels {
		add(v.Value)
	}
	for _, vs := range aliases {
		for _, v := range vs {
			add(v.Value)
		}
	}
	return out
}

// wikipediaURL builds the enwiki article URL from its sitelink title,
// replacing spaces with underscores.
func wikipediaURL(sitelinks map[string]sitelinkValue) (string, bool) {
	sl, ok := sitelinks["enwiki"]
	if !ok || sl.Title == "" {
		return "", false
	}
	title := strings.ReplaceAll(sl.Title, " ", "_")
	return "https://en.wikipedia.org/wiki/" + title, true
}
