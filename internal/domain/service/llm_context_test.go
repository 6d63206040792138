package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowProviderContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))

	ctx = WithWorkflowProvider(ctx, " recommendation ", "openai")
	assert.Equal(t, "recommendation", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))

	// 空值不覆盖已有标记
	ctx = WithProvider(ctx, "  ")
	assert.Equal(t, "openai", ProviderFromContext(ctx))
}
