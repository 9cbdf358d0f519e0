package service

import (
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for the timestamp column. Spreadsheet exports are not
// consistent about this, so the list mirrors what the checkpoint scanners
// have actually produced. Ambiguous two-part dates read month-first
// throughout; mixing regional conventions here would let the same cell
// parse to two different days depending on list order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02-2006 15:04:05",
	"01/02/2006 15:04:05",
	"01-02-06 15:04",
	"1/2/06 15:04",
}

// excelEpoch is day zero of the 1900 date system used by xlsx serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseTimestamp normalizes a raw cell value to a second-precision time.
// It accepts the layouts above plus raw Excel serial numbers, the form an
// unformatted date cell comes through as.
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Truncate(time.Second), true
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 && serial < 100000 {
		duration := time.Duration(serial * 24 * float64(time.Hour))
		return excelEpoch.Add(duration).Truncate(time.Second), true
	}

	return time.Time{}, false
}
