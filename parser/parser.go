// Package parser normalizes and coerces scraped episode fields.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	citationRe = regexp.MustCompile(`\[[^\]]*\]`)
	parensRe   = regexp.MustCompile(`\(([^)]*)\)`)
)

// StripCitations removes bracketed citation markers such as "[4]" or "[a]".
func StripCitations(s string) string {
	return strings.TrimSpace(citationRe.ReplaceAllString(s, ""))
}

// NormalizeShowName converts a page identifier to its display form.
func NormalizeShowName(show string) string {
	return strings.TrimSpace(strings.ReplaceAll(show, "_", " "))
}

// ShowSlug converts a display show name to a filename slug.
func ShowSlug(show string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(show), " ", "-"))
}

// ParseCount coerces an episode counter cell to an integer. A non-numeric
// value after citation stripping is a data-quality error.
func ParseCount(field, s string) (int, error) {
	cleaned := StripCitations(s)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%s: non-numeric value %q", field, s)
	}
	return n, nil
}

// ParseViewers coerces a viewership cell to millions of viewers. The "N/A"
// sentinel and empty cells map to NaN; anything else must parse as a
// non-negative float once citations are stripped.
func ParseViewers(s string) (float64, error) {
	cleaned := StripCitations(s)
	if cleaned == "" || strings.EqualFold(cleaned, "N/A") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("viewers: non-numeric value %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("viewers: negative value %q", s)
	}
	return v, nil
}

// ParseAirDate coerces an original-air-date cell. Episode tables usually
// carry the ISO date in a trailing parenthetical ("January 10, 1999
// (1999-01-10)"); that form wins when present, otherwise the prose date is
// parsed as-is.
func ParseAirDate(s string) (time.Time, error) {
	cleaned := StripCitations(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("air date: empty value")
	}

	if m := parensRe.FindStringSubmatch(cleaned); m != nil {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(m[1])); err == nil {
			return t, nil
		}
	}

	prose := strings.TrimSpace(parensRe.ReplaceAllString(cleaned, ""))
	t, err := dateparse.ParseAny(prose)
	if err != nil {
		return time.Time{}, fmt.Errorf("air date: unparseable value %q", s)
	}
	return t, nil
}
