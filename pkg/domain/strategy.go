package domain

type Keyword struct {
	Keyword            string   `json:"keyword"`
	SearchIntent       string   `json:"search_intent"`
	RelevanceToPersona string   `json:"relevance_to_persona"`
	ContentIdeas       []string `json:"content_ideas"`
}

type CategorizedKeywords struct {
	Informational           []Keyword `json:"informational_keywords"`
	CommercialInvestigation []Keyword `json:"commercial_investigation_keywords"`
	Transactional           []Keyword `json:"transactional_keywords"`
	LongTail                []Keyword `json:"long_tail_keywords"`
}

// All returns every keyword across the categories, in category order.
func (c CategorizedKeywords) All() []Keyword {
	out := make([]Keyword, 0, len(c.Informational)+len(c.CommercialInvestigation)+len(c.Transactional)+len(c.LongTail))
	out = append(out, c.Informational...)
	out = append(out, c.CommercialInvestigation...)
	out = append(out, c.Transactional...)
	return append(out, c.LongTail...)
}

type KeywordResearch struct {
	Overview                     string              `json:"overview"`
	CategorizedKeywords          CategorizedKeywords `json:"categorized_keywords"`
	SearchTrendsAndOpportunities map[string][]string `json:"search_trends_and_opportunities"`
}

type ContentRecommendation struct {
	Recommendation    string `json:"recommendation"`
	TargetContentType string `json:"target_content_type"`
}

type SEOContentRecommendations struct {
	GeneralGuidelines            []string                `json:"general_guidelines"`
	OnPageOptimization           []ContentRecommendation `json:"on_page_optimization"`
	ContentRefinementSuggestions []ContentRecommendation `json:"content_refinement_suggestions"`
}

// KeywordStrategy is the output of the strategy step.
type KeywordStrategy struct {
	KeywordResearch           KeywordResearch           `json:"keyword_research"`
	SEOContentRecommendations SEOContentRecommendations `json:"seo_content_recommendations"`
	ResearchSources           []string                  `json:"research_sources"`
}
