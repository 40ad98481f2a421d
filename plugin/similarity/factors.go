package similarity

import (
	"math"
	"strconv"
	"strings"
)

// PeriodSpan is the year difference at which period similarity reaches zero.
const PeriodSpan = 100

// CosineSimilarity calculates cosine similarity between two vectors, clamped
// to [0, 1]. Opposing directions score 0, and so do missing vectors,
// mismatched lengths or zero norms.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim))
}

// ParseYear reads the leading four characters of a free-text date as a year.
// "1880-1885" parses to 1880; "c. 1650", "" and "19th century" do not parse.
func ParseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// PeriodSimilarity decays linearly from 1 for the same year to 0 at PeriodSpan
// years apart. Either date failing to parse yields 0.
func PeriodSimilarity(dateA, dateB string) float64 {
	ya, ok := ParseYear(dateA)
	if !ok {
		return 0
	}
	yb, ok := ParseYear(dateB)
	if !ok {
		return 0
	}
	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	return math.Max(0, 1-float64(diff)/PeriodSpan)
}

// MaterialSimilarity rewards sharing a rare medium: 1/frequency when both
// artifacts have the same non-empty medium, 0 otherwise.
func MaterialSimilarity(mediumA, mediumB string, freq map[string]int) float64 {
	if mediumA == "" || mediumA != mediumB {
		return 0
	}
	n := freq[mediumA]
	if n <= 0 {
		return 0
	}
	return 1 / float64(n)
}

// exactMatch returns 1 when both values are non-empty and equal.
func exactMatch(a, b string) float64 {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || a != b {
		return 0
	}
	return 1
}
