package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short value unchanged", input: "1048588", maxLen: 10, expected: "1048588"},
		{name: "exact length unchanged", input: "0123456789", maxLen: 10, expected: "0123456789"},
		{name: "long value truncated", input: "PLAINTEXT://kafka-1:9092,SSL://kafka-1:9093", maxLen: 20, expected: "PLAINTEXT://kafka..."},
		{name: "multi-line jaas config flattened", input: "org.apache.kafka.common.security.plain.PlainLoginModule required\n  username=\"a\";", maxLen: 200,
			expected: "org.apache.kafka.common.security.plain.PlainLoginModule required username=\"a\";"},
		{name: "tabs and spaces collapsed", input: "a\t\t b", maxLen: 10, expected: "a b"},
		{name: "unicode truncation safe", input: "ÄÖÜäöüßÄÖÜ", maxLen: 6, expected: "ÄÖÜ..."},
		{name: "empty value", input: "", maxLen: 10, expected: ""},
		{name: "maxLen clamped", input: "abcdefgh", maxLen: 1, expected: "a..."},
		{name: "negative maxLen clamped", input: "abcdefgh", maxLen: -5, expected: "a..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateCell(tt.input, tt.maxLen))
		})
	}
}
