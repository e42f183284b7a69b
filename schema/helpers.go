package schema

import (
	"strconv"
	"strings"
)

// FormatNumber renders a float with the shortest representation that
// round-trips exactly, so exported CSVs re-ingest to identical values.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseNumber parses a numeric cell, tolerating surrounding whitespace.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ColumnIndex maps each column name to its position in the header.
func ColumnIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return idx
}

// RiskClassFromString parses "0" or "1" into a RiskClass.
func RiskClassFromString(s string) (RiskClass, bool) {
	switch strings.TrimSpace(s) {
	case "0":
		return LowRisk, true
	case "1":
		return HighRisk, true
	default:
		return LowRisk, false
	}
}

// String returns the numeric form used in exports.
func (c RiskClass) String() string {
	return strconv.Itoa(int(c))
}
