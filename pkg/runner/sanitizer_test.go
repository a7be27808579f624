package runner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/souqra/pkg/runner"
)

func TestSanitizer_Clean(t *testing.T) {
	s := runner.Sanitizer{}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Aero Kettle", "Aero Kettle"},
		{"Multi Line Brief", "Fast.\nQuiet.\tCheap.", "Fast.\nQuiet.\tCheap."},
		{"Windows Line Endings", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null And Bell", "Null\x00Byte\x07", "NullByte"},
		{"Surrounding Space", "  2 \n", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Clean(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizer_Limits(t *testing.T) {
	t.Run("Default Limit", func(t *testing.T) {
		s := runner.Sanitizer{}
		_, err := s.Clean(strings.Repeat("a", runner.DefaultMaxInputSize))
		assert.NoError(t, err)
		_, err = s.Clean(strings.Repeat("a", runner.DefaultMaxInputSize+1))
		assert.ErrorIs(t, err, runner.ErrInputTooLarge)
	})

	t.Run("Custom Limit", func(t *testing.T) {
		_, err := runner.Sanitizer{MaxSize: 3}.Clean("four")
		assert.ErrorIs(t, err, runner.ErrInputTooLarge)
	})

	t.Run("Environment Override", func(t *testing.T) {
		t.Setenv(runner.EnvMaxInputSize, "10")
		_, err := runner.SanitizeInput("12345678901")
		assert.ErrorIs(t, err, runner.ErrInputTooLarge)
		_, err = runner.SanitizeInput("12345")
		assert.NoError(t, err)
	})

	t.Run("Invalid Environment Is Ignored", func(t *testing.T) {
		t.Setenv(runner.EnvMaxInputSize, "-1")
		assert.Equal(t, runner.Sanitizer{}, runner.SanitizerFromEnv())
	})

	t.Run("Invalid UTF-8", func(t *testing.T) {
		_, err := runner.SanitizeInput("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
		assert.ErrorIs(t, err, runner.ErrInvalidUTF8)
	})
}
