package quality

import (
	"strconv"
	"strings"
	"time"

	"github.com/primeinsights/proof-engine/internal/errors"
)

// dateLayouts is the fixed, ordered list of accepted date formats.
// A value matching none of them is a fatal extraction error.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
	time.RFC3339,
}

// parseAmount leniently parses a monetary or numeric string: quotes,
// surrounding whitespace and thousands separators are stripped, and
// anything still unparsable defaults to 0.
func parseAmount(value string) float64 {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.Trim(cleaned, `'"`)
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseCount parses a non-negative integer count, defaulting to 0 on
// anything unparsable.
func parseCount(value string) int {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.Trim(cleaned, `'"`)
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// parseDate parses a date value against the accepted layouts in
// order. Unlike numeric parsing there is no lenient fallback: an
// unrecognized format aborts extraction for the whole file.
func parseDate(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewMalformedDateError(field, value)
}
