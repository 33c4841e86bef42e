package strings

import (
	"strings"
)

// DefaultCellMaxLen is the widest a table cell gets before it is cut.
const DefaultCellMaxLen = 60

// minCellLen leaves room for one character plus the ellipsis.
const minCellLen = 4

// Truncate collapses all whitespace runs into single spaces and cuts the
// result to maxLen runes, ending it with "..." when something was dropped.
// maxLen below 4 is treated as 4.
func Truncate(s string, maxLen int) string {
	if maxLen < minCellLen {
		maxLen = minCellLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// OrDash returns "-" for empty strings so table columns never look broken.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
