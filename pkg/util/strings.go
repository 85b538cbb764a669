package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigitRe    = regexp.MustCompile(`[^\d]`)
	nonDecimalRe  = regexp.MustCompile(`[^\d.]`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeOfDayRe   = regexp.MustCompile(`^\d{2}:\d{2}$`)
	bareNumberRe  = regexp.MustCompile(`^\d+$`)
	subtotalRowRe = regexp.MustCompile(`^\d+\s+[Pp]layers?$`)
)

/**
* Lenient numeric parsing for scraped cell text. Pages render counts with
* stray whitespace, footnote markers and thousands separators, and render
* decimals with either a point or a comma depending on locale. These
* helpers strip everything that is not part of the number and never fail;
* unparseable input yields zero.
 */

// DigitsToInt strips every non digit character and converts the remainder
// to an integer. Returns 0 for empty or entirely non numeric input.
func DigitsToInt(s string) int {
	cleaned := nonDigitRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// LocaleFloat parses a decimal that may use a comma as the decimal
// separator ("0,42" and "0.42" both yield 0.42). Everything except digits
// and the decimal point is stripped before parsing. Returns 0.0 on failure.
func LocaleFloat(s string) float64 {
	cleaned := strings.ReplaceAll(s, ",", ".")
	cleaned = nonDecimalRe.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// IsISODate reports whether s is exactly a YYYY-MM-DD date string
func IsISODate(s string) bool {
	return isoDateRe.MatchString(s)
}

// IsTimeOfDay reports whether s looks like a HH:MM kick off time
func IsTimeOfDay(s string) bool {
	return timeOfDayRe.MatchString(s)
}

// IsBareNumber reports whether s consists only of digits
func IsBareNumber(s string) bool {
	return bareNumberRe.MatchString(s)
}

// IsSubtotalLabel reports whether a player-name cell is actually a table
// subtotal label such as "16 Players"
func IsSubtotalLabel(s string) bool {
	return subtotalRowRe.MatchString(strings.TrimSpace(s))
}

// IsWeekdayAbbrev reports whether s is a three letter weekday token as
// rendered in fixture tables
func IsWeekdayAbbrev(s string) bool {
	switch s {
	case "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun":
		return true
	}
	return false
}
