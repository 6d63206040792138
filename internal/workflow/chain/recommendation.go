package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "bookhatch-api/internal/workflow/model"
	wfnode "bookhatch-api/internal/workflow/node"
	workflowport "bookhatch-api/internal/workflow/port"
	workflowprompt "bookhatch-api/internal/workflow/prompt"
)

// ErrNoRecommendations 模型输出中没有可用的书名
var ErrNoRecommendations = errors.New("no recommendations returned")

// RecommendationChain 根据偏好题材生成书单
type RecommendationChain struct {
	chain *promptChain[*wfmodel.RecommendationInput, *wfmodel.RecommendationOutput]
}

func NewRecommendationChain(factory workflowport.ChatModelFactory) *RecommendationChain {
	return &RecommendationChain{chain: newPromptChain(factory, promptChainSpec[*wfmodel.RecommendationInput, *wfmodel.RecommendationOutput]{
		name:     "recommendation",
		promptID: workflowprompt.PromptRecommendationV1,
		provider: func(in *wfmodel.RecommendationInput) string { return in.Provider },
		vars: func(in *wfmodel.RecommendationInput) map[string]any {
			return map[string]any{
				"max_items":    in.MaxItems,
				"genres_block": wfnode.BulletBlock(in.Genres),
			}
		},
		options: func(in *wfmodel.RecommendationInput) []model.Option {
			return baseModelOptions(in.Model, in.Temperature, nil)
		},
		finalize: func(in *wfmodel.RecommendationInput, msg *schema.Message) (*wfmodel.RecommendationOutput, error) {
			titles := wfnode.ParseTitleList(msg.Content, in.MaxItems)
			if len(titles) == 0 {
				return nil, ErrNoRecommendations
			}
			return &wfmodel.RecommendationOutput{Titles: titles, Raw: msg.Content}, nil
		},
	})}
}

func (c *RecommendationChain) Invoke(ctx context.Context, in *wfmodel.RecommendationInput) (*wfmodel.RecommendationOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if len(in.Genres) == 0 {
		return nil, fmt.Errorf("genres are required")
	}
	return c.chain.invoke(ctx, in)
}
