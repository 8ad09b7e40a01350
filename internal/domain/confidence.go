package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// DistanceScore applies the stepwise decay from spec §4.6.3.
func DistanceScore(distanceKM float64) float64 {
	switch {
	case distanceKM <= 0.1:
		return 1.0
	case distanceKM <= 1.0:
		return 0.9
	case distanceKM <= 5.0:
		return 0.7
	case distanceKM <= 10.0:
		return 0.5
	default:
		return 0.3
	}
}

// NameScore compares two place names per spec §4.6.3: exact match, substring
// containment, or word-overlap fallback.
func NameScore(nameA, nameB string) float64 {
	a := strings.TrimSpace(lowerCaser.String(nameA))
	b := strings.TrimSpace(lowerCaser.String(nameB))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 0.8
	}

	wordsA := wordSet(a)
	wordsB := wordSet(b)
	overlap := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0.0
	}

	maxLen := len(wordsA)
	if len(wordsB) > maxLen {
		maxLen = len(wordsB)
	}
	return 0.5 * (float64(overlap) / float64(maxLen))
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// TypeScore combines source and target entity-priority scores per spec
// §4.6.3: averaged, normalized to [0,1], with a 1.2x bonus (clamped to 1.0)
// when both priorities are >= 70.
func TypeScore(sourcePriority, targetPriority int) float64 {
	score := (float64(sourcePriority) + float64(targetPriority)) / 2.0 / 100.0
	if sourcePriority >= 70 && targetPriority >= 70 {
		score *= 1.2
		if score > 1.0 {
			score = 1.0
		}
	}
	return score
}

// Confidence is the candidate pair's score inputs, so callers (and tests)
// can inspect each weighted component alongside the final value.
type Confidence struct {
	Distance float64
	Name     float64
	Type     float64
	Final    float64
}

// ScoreCandidate computes the weighted confidence for a (WikidataPlace,
// Place) candidate pair, per spec §4.6.3: 0.30*distance + 0.50*name +
// 0.20*type, clamped to [0, 1].
func ScoreCandidate(sourceName, targetName string, distanceKM float64, sourcePriority, targetPriority int) Confidence {
	c := Confidence{
		Distance: DistanceScore(distanceKM),
		Name:     NameScore(sourceName, targetName),
		Type:     TypeScore(sourcePriority, targetPriority),
	}
	c.Final = 0.30*c.Distance + 0.50*c.Name + 0.20*c.Type
	if c.Final > 1.0 {
		c.Final = 1.0
	}
	if c.Final < 0.0 {
		c.Final = 0.0
	}
	return c
}
