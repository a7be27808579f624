package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/souqra/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_Prompt(t *testing.T) {
	_, repo := testutils.PromptRepo(t, map[string]string{
		"market_research.md": `---
temperature: 0.7
description: Research tuned for B2B
---
You research B2B buyers only.`,
		"strategy.md": `---
id: keyword_strategy
---
Focus on long-tail keywords.`,
		"creative_draft.md": `---
description: placeholder
---
`,
	})

	lib := New(loam.NewTypedRepository[PromptMetadata](repo))
	ctx := context.Background()

	t.Run("File Name ID", func(t *testing.T) {
		p, ok, err := lib.Prompt(ctx, "market_research")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "You research B2B buyers only.", p.System)
		require.NotNil(t, p.Temperature)
		assert.InDelta(t, 0.7, *p.Temperature, 1e-9)
	})

	t.Run("Front Matter ID", func(t *testing.T) {
		p, ok, err := lib.Prompt(ctx, "keyword_strategy")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Focus on long-tail keywords.", p.System)
		assert.Nil(t, p.Temperature)
	})

	t.Run("Empty Body Falls Back", func(t *testing.T) {
		_, ok, err := lib.Prompt(ctx, "creative_draft")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := lib.Prompt(ctx, "campaign_plan")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := lib.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"market_research", "keyword_strategy"}, ids)
	})
}

func TestLibrary_Collision(t *testing.T) {
	_, repo := testutils.PromptRepo(t, map[string]string{
		"a.md":             "---\nid: campaign_plan\n---\nOne",
		"campaign_plan.md": "Two",
	})

	lib := New(loam.NewTypedRepository[PromptMetadata](repo))
	_, _, err := lib.Prompt(context.Background(), "campaign_plan")
	assert.ErrorContains(t, err, "collision detected")
}
