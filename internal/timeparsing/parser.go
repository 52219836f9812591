// Package timeparsing provides layered parsing for time expressions on
// the command line.
//
// Parsing is layered:
//  1. Compact duration (6h, 2d, 1w), interpreted as an age in the past
//  2. Natural language (yesterday, "2 hours ago")
//  3. Absolute timestamp (RFC3339, date-only)
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches compact duration patterns: (\d+)([hdwmy])
// Examples: 6h, 1d, 2w, 3m, 1y
var compactDurationRe = regexp.MustCompile(`^(\d+)([hdwmy])$`)

// ParseCutoff parses a staleness expression and returns the cutoff
// instant it names. Compact durations are ages: "2h" means two hours
// before now. Natural language and absolute timestamps name the instant
// directly.
func ParseCutoff(s string, now time.Time) (time.Time, error) {
	if t, err := ParseCompactAge(s, now); err == nil {
		return t, nil
	}
	if t, err := ParseAbsolute(s); err == nil {
		return t, nil
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time expression %q (try 2h, 1d, \"2 hours ago\", or 2025-06-15)", s)
}

// ParseCompactAge parses compact duration syntax as an age and returns
// now minus that duration.
//
// Units: h = hours, d = days, w = weeks, m = months, y = years.
func ParseCompactAge(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}
	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[1])
	}
	return applyAge(now, amount, matches[2]), nil
}

func applyAge(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(-time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, -amount)
	case "w":
		return base.AddDate(0, 0, -amount*7)
	case "m":
		return base.AddDate(0, -amount, 0)
	case "y":
		return base.AddDate(-amount, 0, 0)
	default:
		// Should not happen given the regex, but return base unchanged.
		return base
	}
}

// ParseAbsolute parses RFC3339 and date-only timestamps.
func ParseAbsolute(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("not an absolute timestamp: %q", s)
}

// ParseNaturalLanguage parses expressions like "yesterday", "2 hours
// ago" or "last monday" relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("no time expression found in %q", s)
	}
	return result.Time, nil
}
