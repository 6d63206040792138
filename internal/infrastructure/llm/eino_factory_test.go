package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/config"
)

func TestEinoFactory_Get(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "openai",
		Providers: map[string]config.ProviderConfig{
			"openai": {APIKey: "sk-test", Model: "gpt-4o-mini", MaxTokens: 256, Temperature: 0.7},
			"local":  {Model: "llama"},
		},
	}}
	f := NewEinoFactory(cfg)
	ctx := context.Background()

	m, err := f.Get(ctx, "")
	require.NoError(t, err)
	again, err := f.Get(ctx, "openai")
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, err = f.Get(ctx, "missing")
	assert.Error(t, err)

	_, err = f.Get(ctx, "local")
	assert.Error(t, err)
}
