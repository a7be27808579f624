package domain

import "strings"

// DefaultStyles is the style set the creative step fans out over unless
// configured otherwise. Order is preserved in the drafts.
var DefaultStyles = []string{
	"Bold & Modern",
	"Professional & Trustworthy",
	"Playful & Engaging",
}

type ProductDescription struct {
	DescriptionType       string   `json:"description_type"`
	TargetPersona         string   `json:"target_persona"`
	WordCountTarget       string   `json:"word_count_target"`
	Copy                  string   `json:"copy"`
	SEOKeywordsIntegrated []string `json:"seo_keywords_integrated"`
	CallToAction          string   `json:"call_to_action"`
}

type AdCopy struct {
	AdPlatform             string   `json:"ad_platform"`
	TargetPersona          string   `json:"target_persona"`
	AdGoal                 string   `json:"ad_goal"`
	HeadlineSuggestions    []string `json:"headline_suggestions"`
	DescriptionSuggestions []string `json:"description_suggestions"`
	CallToActionOptions    []string `json:"call_to_action_options"`
	SEOKeywordsIntegrated  []string `json:"seo_keywords_integrated"`
	Notes                  string   `json:"notes"`
}

type SocialMediaPost struct {
	Platform          string   `json:"platform"`
	Captions          []string `json:"captions"`
	HashtagsSuggested []string `json:"hashtags_suggested"`
	CallToAction      string   `json:"call_to_action"`
}

type EmailTemplate struct {
	EmailType              string   `json:"email_type"`
	TargetPersona          string   `json:"target_persona"`
	SubjectLineSuggestions []string `json:"subject_line_suggestions"`
	PreviewTextSuggestion  string   `json:"preview_text_suggestion"`
	BodyCopy               string   `json:"body_copy"`
	CallToAction           string   `json:"call_to_action"`
}

type ContentGeneration struct {
	ProductDescriptions []ProductDescription `json:"product_descriptions"`
	AdCopyVariations    []AdCopy             `json:"ad_copy_variations"`
	SocialMediaPosts    []SocialMediaPost    `json:"social_media_posts"`
	EmailTemplates      []EmailTemplate      `json:"email_templates"`
}

// Wordsmith holds the copywriting half of a creative draft.
type Wordsmith struct {
	ContentGeneration ContentGeneration `json:"content_generation"`
}

type Color struct {
	Name            string `json:"name"`
	HexCode         string `json:"hex_code" jsonschema:"description=Hex colour such as #1A2B3C"`
	MoodAssociation string `json:"mood_association"`
	UsageContext    string `json:"usage_context"`
}

type ColorPalette struct {
	PrimaryColors   []Color `json:"primary_colors"`
	SecondaryColors []Color `json:"secondary_colors"`
	AccentColors    []Color `json:"accent_colors"`
	ColorUsageNotes string  `json:"color_usage_notes"`
}

type AdCreativeConcept struct {
	ConceptName            string   `json:"concept_name"`
	TargetPersona          string   `json:"target_persona"`
	VisualDescription      string   `json:"visual_description"`
	KeyElements            []string `json:"key_elements"`
	MoodAndTone            string   `json:"mood_and_tone"`
	ExampleAdTextAlignment string   `json:"example_ad_text_alignment"`
}

type PlatformImageDescription struct {
	Platform          string   `json:"platform"`
	ImageDescriptions []string `json:"image_descriptions" jsonschema:"description=Standalone prompts for an image generator"`
}

type VisualIdentityProposal struct {
	OverallVision             string                     `json:"overall_vision"`
	ColorPalette              ColorPalette               `json:"color_palette"`
	AdCreativeConcepts        []AdCreativeConcept        `json:"ad_creative_concepts"`
	PlatformImageDescriptions []PlatformImageDescription `json:"platform_image_descriptions"`
}

// Muse holds the visual half of a creative draft.
type Muse struct {
	VisualIdentityProposal    VisualIdentityProposal `json:"visual_identity_proposal"`
	VisualInspirationKeywords []string               `json:"visual_inspiration_keywords"`
}

// CreativeAssets is what the model produces for one style.
type CreativeAssets struct {
	Wordsmith Wordsmith `json:"wordsmith"`
	Muse      Muse      `json:"muse"`
}

// CreativeDraft is one styled candidate produced by the creative step.
type CreativeDraft struct {
	Wordsmith Wordsmith `json:"wordsmith"`
	Muse      Muse      `json:"muse"`
	Style     string    `json:"style"`
}

// FindDraft returns the draft whose style matches, ignoring case.
func FindDraft(drafts []CreativeDraft, style string) (CreativeDraft, bool) {
	style = strings.TrimSpace(style)
	for _, d := range drafts {
		if strings.EqualFold(d.Style, style) {
			return d, true
		}
	}
	return CreativeDraft{}, false
}

// ImagePrompts flattens every platform image description of the draft.
func (d CreativeDraft) ImagePrompts() []string {
	var out []string
	for _, p := range d.Muse.VisualIdentityProposal.PlatformImageDescriptions {
		out = append(out, p.ImageDescriptions...)
	}
	return out
}
