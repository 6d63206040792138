package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "bookhatch-api/internal/workflow/model"
	wfnode "bookhatch-api/internal/workflow/node"
	workflowport "bookhatch-api/internal/workflow/port"
	workflowprompt "bookhatch-api/internal/workflow/prompt"
)

// ErrEmptyContinuation 模型没有返回新内容
var ErrEmptyContinuation = errors.New("empty continuation")

// ContinuationChain 续写下一段
type ContinuationChain struct {
	chain *promptChain[*wfmodel.ContinuationInput, *wfmodel.ContinuationOutput]
}

func NewContinuationChain(factory workflowport.ChatModelFactory) *ContinuationChain {
	return &ContinuationChain{chain: newPromptChain(factory, promptChainSpec[*wfmodel.ContinuationInput, *wfmodel.ContinuationOutput]{
		name:     "continuation",
		promptID: workflowprompt.PromptContinuationV1,
		provider: func(in *wfmodel.ContinuationInput) string { return in.Provider },
		vars: func(in *wfmodel.ContinuationInput) map[string]any {
			return map[string]any{"existing_text": strings.TrimSpace(in.ExistingText)}
		},
		options: func(in *wfmodel.ContinuationInput) []model.Option {
			return baseModelOptions(in.Model, in.Temperature, in.MaxTokens)
		},
		finalize: func(in *wfmodel.ContinuationInput, msg *schema.Message) (*wfmodel.ContinuationOutput, error) {
			text := wfnode.StripEcho(in.ExistingText, msg.Content)
			if text == "" {
				return nil, ErrEmptyContinuation
			}
			return &wfmodel.ContinuationOutput{Text: text}, nil
		},
	})}
}

func (c *ContinuationChain) Invoke(ctx context.Context, in *wfmodel.ContinuationInput) (*wfmodel.ContinuationOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.ExistingText) == "" {
		return nil, fmt.Errorf("existing text is required")
	}
	return c.chain.invoke(ctx, in)
}
