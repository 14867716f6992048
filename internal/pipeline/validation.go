package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber converts a numeric token. It never fails: blank, non-numeric,
// NaN and infinite input all degrade to 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// normalizeText trims a free text field.
func normalizeText(s string) string {
	return strings.TrimSpace(s)
}
