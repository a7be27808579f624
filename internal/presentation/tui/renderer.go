package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWidth is the wrap width used when the terminal size is unknown.
const DefaultWidth = 100

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer(width int) (func(string) (string, error), error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// Interactive reports whether f is a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or DefaultWidth.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}
