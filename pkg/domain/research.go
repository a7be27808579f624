package domain

import "strings"

// DefaultPersonaName is used by downstream steps when no persona was selected.
const DefaultPersonaName = "General Audience"

type Demographics struct {
	AgeRange       string `json:"age_range"`
	GenderIdentity string `json:"gender_identity"`
	Location       string `json:"location"`
	IncomeLevel    string `json:"income_level"`
	Occupation     string `json:"occupation"`
}

type Psychographics struct {
	Interests      []string `json:"interests"`
	Values         []string `json:"values"`
	PainPoints     []string `json:"pain_points"`
	Goals          []string `json:"goals"`
	OnlineBehavior string   `json:"online_behavior"`
}

type MarketingInsights struct {
	PreferredChannels      []string `json:"preferred_channels"`
	MessagingStyle         string   `json:"messaging_style"`
	CallToActionPreference string   `json:"call_to_action_preference"`
}

// Persona is a target-audience profile proposed by the research step.
type Persona struct {
	PersonaName       string            `json:"persona_name" jsonschema:"description=Short memorable name for the persona"`
	Demographics      Demographics      `json:"demographics"`
	Psychographics    Psychographics    `json:"psychographics"`
	MarketingInsights MarketingInsights `json:"marketing_insights"`
	Quote             string            `json:"quote"`
}

// MarketResearch is the output of the research step.
type MarketResearch struct {
	TargetAudiencePersonas []Persona      `json:"target_audience_personas" jsonschema:"minItems=1"`
	CompetitorSummary      map[string]any `json:"competitor_summary"`
	ResearchSources        []string       `json:"research_sources"`
}

// FindPersona looks a persona up by name, ignoring case and surrounding space.
func (m *MarketResearch) FindPersona(name string) (Persona, bool) {
	if m == nil {
		return Persona{}, false
	}
	name = strings.TrimSpace(name)
	for _, p := range m.TargetAudiencePersonas {
		if strings.EqualFold(strings.TrimSpace(p.PersonaName), name) {
			return p, true
		}
	}
	return Persona{}, false
}

// PersonaName returns the name of a selected persona, falling back to
// DefaultPersonaName when the selection is missing or unnamed.
func PersonaName(p *Persona) string {
	if p == nil || strings.TrimSpace(p.PersonaName) == "" {
		return DefaultPersonaName
	}
	return p.PersonaName
}
