// Package strings holds small text helpers for terminal output.
package strings

import (
	"strings"
)

// DefaultCellMaxLen is the widest config value shown in a table cell.
const DefaultCellMaxLen = 60

// MinTruncateLen is the smallest maxLen TruncateCell honours, leaving room
// for one character plus "...".
const MinTruncateLen = 4

// TruncateCell prepares a value for a single table cell: whitespace runs,
// including newlines, collapse to one space and the result is cut to maxLen
// runes with a trailing "..." when longer.
func TruncateCell(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
