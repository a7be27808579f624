package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	mu       sync.Mutex
	compiled = make(map[string]*gojsonschema.Schema)
)

func compile(s json.RawMessage) (*gojsonschema.Schema, error) {
	key := string(s)

	mu.Lock()
	defer mu.Unlock()
	if c, ok := compiled[key]; ok {
		return c, nil
	}
	c, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(s))
	if err != nil {
		return nil, err
	}
	compiled[key] = c
	return c, nil
}

// Validate checks doc against the JSON Schema s.
// Failures are reported as an *AggregateError of *ValidationError.
func Validate(s, doc json.RawMessage) error {
	if len(s) == 0 {
		// No schema = no validation
		return nil
	}

	c, err := compile(s)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	result, err := c.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, &ValidationError{Key: desc.Field(), Reason: desc.Description()})
	}
	return &AggregateError{Errors: errs}
}

// ExtractJSON pulls the JSON object out of a model reply, tolerating
// markdown fences and prose around it.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: malformed object", ErrNoJSON)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, candidate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
