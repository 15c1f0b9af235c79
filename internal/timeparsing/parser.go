// Package timeparsing provides layered parsing for the date/time
// expressions accepted by CLI flags such as --since.
//
// Layers, tried in order:
//  1. Compact duration (-1d, -2w, +6h)
//  2. Absolute timestamp (RFC3339, date-only)
//  3. Natural language ("yesterday", "last monday", "2 days ago")
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

// compactDurationRe matches [+-]?(\d+)([hdwmy]), e.g. -1d, +2w, 6h.
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

var nlParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Parse resolves a date/time expression relative to now.
func Parse(s string, now time.Time) (time.Time, error) {
	if t, err := ParseCompactDuration(s, now); err == nil {
		return t, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	r, err := nlParser.Parse(s, now)
	if err == nil && r != nil {
		return r.Time, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
}

// ParseCompactDuration parses compact duration syntax relative to now.
// Units: h=hours, d=days, w=weeks, m=months, y=years. No sign means
// positive (future).
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}

	switch matches[3] {
	case "h":
		return now.Add(time.Duration(amount) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, amount), nil
	case "w":
		return now.AddDate(0, 0, amount*7), nil
	case "m":
		return now.AddDate(0, amount, 0), nil
	default: // y
		return now.AddDate(amount, 0, 0), nil
	}
}

// IsCompactDuration reports whether s matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}
