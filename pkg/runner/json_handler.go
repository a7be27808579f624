package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/souqra/pkg/domain"
)

// Message is one JSON line written by the JSONHandler.
type Message struct {
	Type    string        `json:"type"`
	State   *domain.State `json:"state,omitempty"`
	Choice  *Choice       `json:"choice,omitempty"`
	Message string        `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Choices are answered with one line holding an index or an option string.
type JSONHandler struct {
	lines     *lineReader
	sanitizer Sanitizer

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		lines:     newLineReader(r),
		sanitizer: SanitizerFromEnv(),
		encoder:   json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(m Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(m)
}

// Show emits the snapshot.
func (h *JSONHandler) Show(ctx context.Context, state *domain.State) error {
	return h.emit(Message{Type: "state", State: state})
}

// Choose emits the question and reads the answer line.
func (h *JSONHandler) Choose(ctx context.Context, c Choice) (int, error) {
	if err := h.emit(Message{Type: "choice", Choice: &c}); err != nil {
		return -1, err
	}

	raw, err := h.lines.Next(ctx)
	if err != nil {
		return -1, err
	}
	text, err := h.sanitizer.Clean(raw)
	if err != nil {
		return -1, err
	}

	var idx int
	if err := json.Unmarshal([]byte(text), &idx); err == nil {
		if idx < 0 || idx >= len(c.Options) {
			return -1, fmt.Errorf("choice %d out of range", idx)
		}
		return idx, nil
	}

	// Plain or JSON-quoted option string
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	for i, opt := range c.Options {
		if strings.EqualFold(opt, text) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown choice %q", text)
}

// SystemOutput emits a log message.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Message{Type: "system", Message: msg})
}
