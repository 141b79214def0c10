// Package forms holds the editable, all-string representations of the
// tracked entities together with the input validation that gates saving
// them. Everything here is pure: predicates over strings and value-to-value
// conversions, no I/O.
package forms

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the single date format accepted anywhere in the app:
// zero-padded day and month, four-digit year, dot-separated.
const DateLayout = "02.01.2006"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-z]+\.[a-z]+$`)

// IsValidDate reports whether text is a real calendar date in DateLayout.
// Parsing is strict: "31.02.2024" is rejected, it never rolls into March.
func IsValidDate(text string) bool {
	if len(text) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, text)
	return err == nil
}

// IsValidEmail reports whether text looks like local@domain.tld. The domain
// and tld accept lowercase ASCII letters only, so "Foo@Example.com" fails.
func IsValidEmail(text string) bool {
	return emailPattern.MatchString(text)
}

// IsValidNumber reports whether text parses as a finite float. The empty
// string is not a number.
func IsValidNumber(text string) bool {
	if text == "" {
		return false
	}
	v, err := strconv.ParseFloat(text, 64)
	return err == nil && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// IsNonBlank reports whether text contains at least one non-whitespace rune.
func IsNonBlank(text string) bool {
	return strings.TrimSpace(text) != ""
}

// CurrentDate formats now in DateLayout. Callers pass their clock in so the
// result is deterministic under test.
func CurrentDate(now time.Time) string {
	return now.Format(DateLayout)
}
