package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
)

// TextHandler talks to a person at a terminal: it prints summaries and
// numbered menus and reads answers line by line.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	lines     *lineReader
	sanitizer Sanitizer
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer renders the Markdown summary before printing it.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler reads answers from r and writes to w (stdin and stdout when nil).
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:    w,
		lines:     newLineReader(r),
		sanitizer: SanitizerFromEnv(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Show prints the snapshot summary. A renderer error falls back to plain Markdown.
func (h *TextHandler) Show(ctx context.Context, state *domain.State) error {
	out := Summary(state)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(out); err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(out))
	return err
}

// Choose accepts a 1-based number or an option name, case-insensitively.
// Anything else is asked again; "q" declines.
func (h *TextHandler) Choose(ctx context.Context, c Choice) (int, error) {
	fmt.Fprintf(h.Writer, "\n%s\n", c.Prompt)
	for i, opt := range c.Options {
		fmt.Fprintf(h.Writer, "  [%d] %s\n", i+1, opt)
	}

	for {
		answer, err := h.ask(ctx)
		if err != nil {
			return -1, err
		}
		if idx, ok := matchOption(c.Options, answer); ok {
			return idx, nil
		}
		if strings.EqualFold(answer, "q") {
			return -1, nil
		}
		fmt.Fprintf(h.Writer, "Please enter a number between 1 and %d (or q to quit).\n", len(c.Options))
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}

// ask prompts until a line passes the sanitizer.
func (h *TextHandler) ask(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(h.Writer, "> ")

		raw, err := h.lines.Next(ctx)
		if err != nil {
			return "", err
		}
		clean, err := h.sanitizer.Clean(raw)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

// matchOption resolves a 1-based index or an option name.
func matchOption(options []string, answer string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i, true
		}
	}
	return 0, false
}
