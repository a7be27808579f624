package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/workflow"
)

const (
	startID = "start"
	endID   = "completed"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
	Failed       bool
}

// OverlayFor marks the steps s has finished and where it stands now.
func OverlayFor(def workflow.Definition, s *domain.State) *GraphOverlay {
	o := &GraphOverlay{VisitedNodes: []string{startID}}
	pos := def.Locate(s)
	for _, step := range def.Steps {
		if field, ok := def.Gates[step]; ok && s.HasSelection(field) {
			o.VisitedNodes = append(o.VisitedNodes, gateID(step))
		}
		if s.HasOutput(step) {
			o.VisitedNodes = append(o.VisitedNodes, string(step))
		}
	}

	switch pos.Phase {
	case workflow.PhaseCompleted:
		o.CurrentNode = endID
	case workflow.PhasePaused:
		o.CurrentNode = gateID(pos.Step)
	case workflow.PhaseFailed:
		o.CurrentNode = string(pos.Step)
		o.Failed = true
	default:
		o.CurrentNode = string(pos.Step)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of a pipeline definition.
// It applies semantic styling:
// - Start/End: ((Circle))
// - Human checkpoint: [/Parallelogram/]
// - Step: [Rectangle]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(def workflow.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", startID, startID)
	prev := startID
	for _, step := range def.Steps {
		id := sanitizeMermaidID(string(step))
		if field, ok := def.Gates[step]; ok {
			gate := gateID(step)
			fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", gate, field)
			fmt.Fprintf(&sb, "    %s -- \"pause\" --> %s\n", prev, gate)
			prev = gate
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, step)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id
	}
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", endID, endID)
	fmt.Fprintf(&sb, "    %s --> %s\n", prev, endID)

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			class := "current"
			if overlay.Failed {
				class = "failed"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(overlay.CurrentNode), class)
		}
	}

	return sb.String()
}

func gateID(step domain.Step) string {
	return "gate_" + sanitizeMermaidID(string(step))
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
