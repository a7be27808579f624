package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/aretw0/souqra/pkg/schema"
)

var (
	productLine = regexp.MustCompile(`(?m)^Product: (.+)$`)
	personaLine = regexp.MustCompile(`(?m)^(?:Target )?Persona(?: Name)?: (.+)$`)
	styleLine   = regexp.MustCompile(`(?m)^TARGET STYLE: (.+)$`)
)

// DryRun is a Generator that returns canned, schema-valid artifacts without
// calling any model. It is used for offline runs and demos.
type DryRun struct{}

// NewDryRun creates a DryRun generator.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// Generate implements ports.Generator.
func (DryRun) Generate(ctx context.Context, req ports.GenerateRequest) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product := match(productLine, req.Prompt, "the product")
	persona := match(personaLine, req.Prompt, domain.DefaultPersonaName)
	style := match(styleLine, req.System, domain.DefaultStyles[0])

	var v any
	switch req.Name {
	case ports.ArtifactMarketResearch:
		v = SampleMarketResearch(product)
	case ports.ArtifactKeywordStrategy:
		v = SampleKeywordStrategy(product, persona)
	case ports.ArtifactCreativeDraft:
		v = SampleCreativeAssets(product, persona, style)
	case ports.ArtifactCampaignPlan:
		v = SampleCampaignPlan(product)
	default:
		return nil, fmt.Errorf("dry run: unknown artifact %q", req.Name)
	}

	doc, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(req.Schema, doc); err != nil {
		return nil, fmt.Errorf("dry run %s: %w", req.Name, err)
	}
	return doc, nil
}

func match(re *regexp.Regexp, text, fallback string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}

func samplePersona(name, age, occupation, quote string) domain.Persona {
	return domain.Persona{
		PersonaName: name,
		Demographics: domain.Demographics{
			AgeRange:       age,
			GenderIdentity: "Any",
			Location:       "Urban areas",
			IncomeLevel:    "Middle",
			Occupation:     occupation,
		},
		Psychographics: domain.Psychographics{
			Interests:      []string{"design", "productivity"},
			Values:         []string{"quality", "convenience"},
			PainPoints:     []string{"cluttered options", "unclear pricing"},
			Goals:          []string{"save time", "buy once"},
			OnlineBehavior: "Researches on social media before buying",
		},
		MarketingInsights: domain.MarketingInsights{
			PreferredChannels:      []string{"Instagram", "Email"},
			MessagingStyle:         "Direct and friendly",
			CallToActionPreference: "Try it free",
		},
		Quote: quote,
	}
}

// SampleMarketResearch returns a canned research output for product.
func SampleMarketResearch(product string) domain.MarketResearch {
	return domain.MarketResearch{
		TargetAudiencePersonas: []domain.Persona{
			samplePersona("Busy Professional", "28-40", "Manager", "I need "+product+" to just work."),
			samplePersona("Budget Student", "18-24", "Student", "Is "+product+" worth the money?"),
			samplePersona("Early Adopter", "25-35", "Engineer", "I want to be first to try "+product+"."),
		},
		CompetitorSummary: map[string]any{
			"overview": "Dry-run summary of competitors for " + product,
		},
		ResearchSources: []string{},
	}
}

// SampleKeywordStrategy returns a canned strategy output.
func SampleKeywordStrategy(product, persona string) domain.KeywordStrategy {
	kw := func(k, intent string) domain.Keyword {
		return domain.Keyword{
			Keyword:            k,
			SearchIntent:       intent,
			RelevanceToPersona: "Matches what " + persona + " searches for",
			ContentIdeas:       []string{"Guide: choosing " + product},
		}
	}
	return domain.KeywordStrategy{
		KeywordResearch: domain.KeywordResearch{
			Overview: "Keyword themes for " + product + " targeting " + persona,
			CategorizedKeywords: domain.CategorizedKeywords{
				Informational:           []domain.Keyword{kw("what is "+product, "informational")},
				CommercialInvestigation: []domain.Keyword{kw(product+" review", "commercial")},
				Transactional:           []domain.Keyword{kw("buy "+product, "transactional")},
				LongTail:                []domain.Keyword{kw("best "+product+" for beginners", "commercial")},
			},
			SearchTrendsAndOpportunities: map[string][]string{
				"rising": {product + " alternatives"},
			},
		},
		SEOContentRecommendations: domain.SEOContentRecommendations{
			GeneralGuidelines: []string{"Lead with the main benefit"},
			OnPageOptimization: []domain.ContentRecommendation{
				{Recommendation: "Use the primary keyword in the H1", TargetContentType: "landing page"},
			},
			ContentRefinementSuggestions: []domain.ContentRecommendation{
				{Recommendation: "Add an FAQ block", TargetContentType: "product page"},
			},
		},
		ResearchSources: []string{},
	}
}

// SampleCreativeAssets returns canned copy and visuals for one style.
func SampleCreativeAssets(product, persona, style string) domain.CreativeAssets {
	color := func(name, hex string) domain.Color {
		return domain.Color{Name: name, HexCode: hex, MoodAssociation: style, UsageContext: "Headlines"}
	}
	return domain.CreativeAssets{
		Wordsmith: domain.Wordsmith{ContentGeneration: domain.ContentGeneration{
			ProductDescriptions: []domain.ProductDescription{{
				DescriptionType:       "short",
				TargetPersona:         persona,
				WordCountTarget:       "50",
				Copy:                  product + ", made for " + persona + ". " + style + ".",
				SEOKeywordsIntegrated: []string{product},
				CallToAction:          "Get yours today",
			}},
			AdCopyVariations: []domain.AdCopy{{
				AdPlatform:             "Instagram",
				TargetPersona:          persona,
				AdGoal:                 "Awareness",
				HeadlineSuggestions:    []string{"Meet " + product},
				DescriptionSuggestions: []string{"The " + strings.ToLower(style) + " way to get started."},
				CallToActionOptions:    []string{"Shop now"},
				SEOKeywordsIntegrated:  []string{product},
				Notes:                  "Dry-run copy",
			}},
			SocialMediaPosts: []domain.SocialMediaPost{{
				Platform:          "Instagram",
				Captions:          []string{product + " is here."},
				HashtagsSuggested: []string{"#launch"},
				CallToAction:      "Link in bio",
			}},
			EmailTemplates: []domain.EmailTemplate{{
				EmailType:              "launch announcement",
				TargetPersona:          persona,
				SubjectLineSuggestions: []string{"Say hello to " + product},
				PreviewTextSuggestion:  "It's finally here",
				BodyCopy:               "We built " + product + " for people like you.",
				CallToAction:           "Learn more",
			}},
		}},
		Muse: domain.Muse{
			VisualIdentityProposal: domain.VisualIdentityProposal{
				OverallVision: style + " visual identity for " + product,
				ColorPalette: domain.ColorPalette{
					PrimaryColors:   []domain.Color{color("Ink", "#1A1A2E")},
					SecondaryColors: []domain.Color{color("Mist", "#E9ECEF")},
					AccentColors:    []domain.Color{color("Spark", "#FF6B35")},
					ColorUsageNotes: "Accent for calls to action only",
				},
				AdCreativeConcepts: []domain.AdCreativeConcept{{
					ConceptName:            "Hero shot",
					TargetPersona:          persona,
					VisualDescription:      product + " centered on a clean background",
					KeyElements:            []string{"product", "logo"},
					MoodAndTone:            style,
					ExampleAdTextAlignment: "Headline top left",
				}},
				PlatformImageDescriptions: []domain.PlatformImageDescription{{
					Platform:          "Instagram",
					ImageDescriptions: []string{product + " on a desk, soft studio lighting, " + strings.ToLower(style) + ", 4k"},
				}},
			},
			VisualInspirationKeywords: []string{"minimal", "bright"},
		},
	}
}

// SampleCampaignPlan returns a canned 30-day plan.
func SampleCampaignPlan(product string) domain.CampaignPlan {
	return domain.CampaignPlan{LaunchCampaignStrategy: domain.LaunchStrategy{
		OverallObjective:     "Launch " + product + " and reach the first 1,000 customers",
		KeyMetricsForSuccess: []string{"signups", "conversion rate"},
		RecommendedChannels: []domain.RecommendedChannel{{
			ChannelName:               "Instagram",
			Reasoning:                 "Where the selected persona spends time",
			PrimaryRoleInFunnel:       "Awareness",
			EstimatedBudgetAllocation: "40%",
			KeyActionables:            []string{"Run launch ads"},
			ExpectedKPIs:              []string{"reach", "CTR"},
		}},
		LaunchPlan30Days: map[string]domain.LaunchPlanPhase{
			"Week 1":    {Focus: "Teasers", Tasks: []string{"Announce launch date"}},
			"Week 2":    {Focus: "Launch", Tasks: []string{"Go live"}},
			"Weeks 3-4": {Focus: "Optimize", Tasks: []string{"Review KPIs"}},
		},
		ResourceConsiderations: "One marketer part time",
		NextSteps:              []string{"Approve budget"},
	}}
}
