package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FormatsRecommendation(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptRecommendationV1)
	require.NoError(t, err)

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"max_items":    10,
		"genres_block": "- Fantasy\n- Mystery",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[1].Content, "- Fantasy\n- Mystery")
	assert.Contains(t, msgs[1].Content, "up to 10 books")

	again, err := r.ChatTemplate(PromptRecommendationV1)
	require.NoError(t, err)
	assert.Same(t, tpl, again)
}

func TestRegistry_UnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope")
	assert.Error(t, err)
}
