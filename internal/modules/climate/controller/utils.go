package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// splitDates turns the trailing path of a stats request into date strings.
// A bare four-digit year followed by at least two more tokens is read as a
// YYYY/MM/DD date spelled over three segments.
func splitDates(rest string) []string {
	tokens := make([]string, 0, 6)
	for _, tok := range strings.Split(rest, "/") {
		// The {dates...} wildcard keeps a trailing slash, so "2016-01-01/"
		// arrives here and still means a single start date.
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	dates := make([]string, 0, 2)
	for i := 0; i < len(tokens); {
		if isYear(tokens[i]) && i+2 < len(tokens) {
			dates = append(dates, strings.Join(tokens[i:i+3], "-"))
			i += 3
			continue
		}
		dates = append(dates, tokens[i])
		i++
	}
	return dates
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeDate rewrites every '/' to '-'.
func normalizeDate(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}

// parseStrictDate requires YYYY-MM-DD and returns the canonical form.
func parseStrictDate(name, s string) (string, time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid '%s' date %q (expected YYYY-MM-DD)", name, s)
	}
	return t.Format(time.DateOnly), t, nil
}

// validateRange checks start (and end, when present) in strict mode.
func validateRange(dates []string) ([]string, error) {
	out := make([]string, len(dates))
	var bounds [2]time.Time
	for i, d := range dates {
		name := "start"
		if i == 1 {
			name = "end"
		}
		canonical, t, err := parseStrictDate(name, d)
		if err != nil {
			return nil, err
		}
		out[i] = canonical
		bounds[i] = t
	}
	if len(dates) == 2 && bounds[0].After(bounds[1]) {
		return nil, errors.New("'start' must be <= 'end'")
	}
	return out, nil
}
