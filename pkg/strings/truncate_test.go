package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "example.com", 20, "example.com"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "Missing MX records - email delivery may be affected", 20, "Missing MX record..."},
		{"newlines collapsed", "a\n\nb", 10, "a b"},
		{"tabs and spaces collapsed", "a\t\t b", 10, "a b"},
		{"unicode safe", "日本語テスト文字列", 6, "日本語..."},
		{"empty", "", 10, ""},
		{"small maxLen clamped", "hello", 1, "h..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "-", OrDash("  "))
	assert.Equal(t, "x", OrDash("x"))
}
