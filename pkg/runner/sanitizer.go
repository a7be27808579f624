package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize bounds one answer or one brief field, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "SOUQRA_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Sanitizer cleans text typed by users before it reaches a prompt, a log or the store.
type Sanitizer struct {
	// MaxSize is the limit in bytes; zero means DefaultMaxInputSize.
	MaxSize int
}

// SanitizerFromEnv honours SOUQRA_MAX_INPUT_SIZE. Invalid values are ignored.
func SanitizerFromEnv() Sanitizer {
	var s Sanitizer
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			s.MaxSize = size
		}
	}
	return s
}

// Clean rejects oversized or malformed input rather than truncating it, so the
// stored brief is exactly what was accepted. Line endings become "\n", other
// control characters (ANSI escapes, NUL, BEL) are dropped and surrounding
// space is trimmed.
func (s Sanitizer) Clean(input string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	out := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(newlines.Replace(out)), nil
}

// SanitizeInput cleans input with the environment-configured limit.
func SanitizeInput(input string) (string, error) {
	return SanitizerFromEnv().Clean(input)
}
