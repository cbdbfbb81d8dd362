package stringutils_test

import (
	"testing"

	"github.com/habiliai/inbox/internal/stringutils"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeContent(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "null byte",
			input:    "hello\u0000 there",
			expected: "hello there",
		},
		{
			name:     "control characters",
			input:    "hi\u0001\u001f\u007f!",
			expected: "hi!",
		},
		{
			name:     "inner whitespace survives",
			input:    "line one\n\tline two",
			expected: "line one\n\tline two",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n hi \t",
			expected: "hi",
		},
		{
			name:     "only whitespace",
			input:    " \n\t ",
			expected: "",
		},
		{
			name:     "C1 control characters",
			input:    "a\u0080\u009fb",
			expected: "ab",
		},
		{
			name:     "invalid utf-8",
			input:    "ok\xffok",
			expected: "okok",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stringutils.SanitizeContent(tc.input))
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "alice", stringutils.NormalizeHandle("  Alice "))
}
