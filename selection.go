package souqra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/workflow"
)

// SubmitFeedback writes a human selection and runs the session onward.
//
// raw is normalized against the candidates stored in the session. It may be
// a full object, a name (persona) or style (draft) string, a zero-based index
// into the candidates, or an object carrying only the name or style.
func (e *Engine) SubmitFeedback(ctx context.Context, sessionID string, field domain.Field, raw json.RawMessage) (*domain.State, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Checked again under the session lock; this early pass only keeps
	// transition errors from being reported as bad selections.
	if gated, ok := e.Definition().GatedBy(field); ok && !s.HasSelection(field) {
		pos := e.runtime.Locate(s)
		if pos.Phase != workflow.PhasePaused || pos.Step != gated {
			return nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidTransition, pos)
		}
	}

	switch field {
	case domain.FieldSelectedPersona:
		p, err := NormalizePersona(s, raw)
		if err != nil {
			return nil, err
		}
		return e.SelectPersona(ctx, sessionID, p)
	case domain.FieldSelectedCreativeDraft:
		d, err := NormalizeCreativeDraft(s, raw)
		if err != nil {
			return nil, err
		}
		return e.SelectCreativeDraft(ctx, sessionID, d)
	}
	return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSelection, field)
}

// NormalizePersona turns a submitted persona into the canonical struct.
// Edited personas are accepted as long as they are named.
func NormalizePersona(s *domain.State, raw json.RawMessage) (domain.Persona, error) {
	var candidates []domain.Persona
	if s.MarketResearch != nil {
		candidates = s.MarketResearch.TargetAudiencePersonas
	}

	sel, err := parseSelection(raw, "persona_name")
	if err != nil {
		return domain.Persona{}, err
	}
	switch {
	case sel.index != nil:
		if *sel.index < 0 || *sel.index >= len(candidates) {
			return domain.Persona{}, fmt.Errorf("%w: persona index %d out of range", domain.ErrInvalidSelection, *sel.index)
		}
		return candidates[*sel.index], nil
	case sel.object == nil || sel.stub:
		p, ok := s.MarketResearch.FindPersona(sel.key)
		if !ok {
			return domain.Persona{}, fmt.Errorf("%w: no persona named %q", domain.ErrInvalidSelection, sel.key)
		}
		return p, nil
	}

	var p domain.Persona
	if err := json.Unmarshal(sel.object, &p); err != nil {
		return domain.Persona{}, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
	}
	if strings.TrimSpace(p.PersonaName) == "" {
		return domain.Persona{}, fmt.Errorf("%w: persona_name is required", domain.ErrInvalidSelection)
	}
	return p, nil
}

// NormalizeCreativeDraft turns a submitted draft into the canonical struct.
// Edited drafts are accepted but must keep one of the generated styles.
func NormalizeCreativeDraft(s *domain.State, raw json.RawMessage) (domain.CreativeDraft, error) {
	sel, err := parseSelection(raw, "style")
	if err != nil {
		return domain.CreativeDraft{}, err
	}
	if sel.index != nil {
		if *sel.index < 0 || *sel.index >= len(s.CreativeDrafts) {
			return domain.CreativeDraft{}, fmt.Errorf("%w: draft index %d out of range", domain.ErrInvalidSelection, *sel.index)
		}
		return s.CreativeDrafts[*sel.index], nil
	}

	generated, ok := domain.FindDraft(s.CreativeDrafts, sel.key)
	if !ok {
		return domain.CreativeDraft{}, fmt.Errorf("%w: no draft with style %q", domain.ErrInvalidSelection, sel.key)
	}
	if sel.object == nil || sel.stub {
		return generated, nil
	}

	var d domain.CreativeDraft
	if err := json.Unmarshal(sel.object, &d); err != nil {
		return domain.CreativeDraft{}, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
	}
	d.Style = generated.Style
	return d, nil
}

// selection is a decoded raw selection: an index, or a key (name/style)
// possibly backed by a full object.
type selection struct {
	index  *int
	key    string
	object json.RawMessage
	stub   bool
}

func parseSelection(raw json.RawMessage, keyField string) (selection, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return selection{}, fmt.Errorf("%w: empty selection", domain.ErrInvalidSelection)
	}

	switch raw[0] {
	case '"':
		var key string
		if err := json.Unmarshal(raw, &key); err != nil {
			return selection{}, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
		}
		if strings.TrimSpace(key) == "" {
			return selection{}, fmt.Errorf("%w: empty selection", domain.ErrInvalidSelection)
		}
		return selection{key: key}, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return selection{}, fmt.Errorf("%w: %v", domain.ErrInvalidSelection, err)
		}
		if len(fields) == 0 {
			return selection{}, fmt.Errorf("%w: empty selection", domain.ErrInvalidSelection)
		}
		var key string
		if v, ok := fields[keyField]; ok {
			_ = json.Unmarshal(v, &key)
		}
		_, hasKey := fields[keyField]
		return selection{key: key, object: raw, stub: hasKey && len(fields) == 1}, nil
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return selection{}, fmt.Errorf("%w: expected an object, a string or an index", domain.ErrInvalidSelection)
	}
	return selection{index: &idx}, nil
}
