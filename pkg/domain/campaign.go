package domain

import "sort"

type RecommendedChannel struct {
	ChannelName               string   `json:"channel_name"`
	Reasoning                 string   `json:"reasoning"`
	PrimaryRoleInFunnel       string   `json:"primary_role_in_funnel"`
	EstimatedBudgetAllocation string   `json:"estimated_budget_allocation"`
	KeyActionables            []string `json:"key_actionables"`
	ExpectedKPIs              []string `json:"expected_kpis"`
}

type LaunchPlanPhase struct {
	Focus string   `json:"focus"`
	Tasks []string `json:"tasks"`
}

type LaunchStrategy struct {
	OverallObjective       string                     `json:"overall_objective"`
	KeyMetricsForSuccess   []string                   `json:"key_metrics_for_success"`
	RecommendedChannels    []RecommendedChannel       `json:"recommended_channels"`
	LaunchPlan30Days       map[string]LaunchPlanPhase `json:"high_level_launch_plan_30_days" jsonschema:"description=Phases keyed by label such as Week 1"`
	ResourceConsiderations string                     `json:"resource_considerations"`
	NextSteps              []string                   `json:"next_steps"`
}

// Phases returns the launch plan phase labels in sorted order.
func (l LaunchStrategy) Phases() []string {
	keys := make([]string, 0, len(l.LaunchPlan30Days))
	for k := range l.LaunchPlan30Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CampaignPlan is the output of the planning step.
type CampaignPlan struct {
	LaunchCampaignStrategy LaunchStrategy `json:"launch_campaign_strategy"`
}
