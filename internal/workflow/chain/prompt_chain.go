// Package chain 基于 Eino compose 构建 LLM 调用链
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "bookhatch-api/internal/domain/service"
	workflowport "bookhatch-api/internal/workflow/port"
	workflowprompt "bookhatch-api/internal/workflow/prompt"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// promptChainSpec 描述一条 "模板 -> LLM -> 解析" 调用链
type promptChainSpec[I, O any] struct {
	name     string
	promptID workflowprompt.PromptID
	provider func(I) string
	vars     func(I) map[string]any
	options  func(I) []model.Option
	finalize func(I, *schema.Message) (O, error)
}

type promptChainState[I any] struct {
	In       I
	Messages []*schema.Message
	OutMsg   *schema.Message
}

// promptChain 惰性编译并复用 compose.Runnable
type promptChain[I, O any] struct {
	factory workflowport.ChatModelFactory
	spec    promptChainSpec[I, O]

	once     sync.Once
	runnable compose.Runnable[I, O]
	err      error
}

func newPromptChain[I, O any](factory workflowport.ChatModelFactory, spec promptChainSpec[I, O]) *promptChain[I, O] {
	return &promptChain[I, O]{factory: factory, spec: spec}
}

func (c *promptChain[I, O]) invoke(ctx context.Context, in I) (O, error) {
	var zero O
	if c == nil || c.factory == nil {
		return zero, fmt.Errorf("llm factory not configured")
	}
	c.once.Do(func() {
		c.runnable, c.err = c.build(context.Background())
	})
	if c.err != nil {
		return zero, c.err
	}
	return c.runnable.Invoke(ctx, in)
}

func (c *promptChain[I, O]) build(ctx context.Context) (compose.Runnable[I, O], error) {
	spec := c.spec
	chain := compose.NewChain[I, O]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in I) (*promptChainState[I], error) {
			tpl, err := defaultPromptRegistry.ChatTemplate(spec.promptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, spec.vars(in))
			if err != nil {
				return nil, err
			}
			return &promptChainState[I]{In: in, Messages: msgs}, nil
		}),
		compose.WithNodeName(spec.name+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *promptChainState[I]) (*promptChainState[I], error) {
			provider := strings.TrimSpace(spec.provider(st.In))
			ctx = llmctx.WithWorkflowProvider(ctx, spec.name, provider)

			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			var opts []model.Option
			if spec.options != nil {
				opts = spec.options(st.In)
			}
			outMsg, err := chatModel.Generate(ctx, st.Messages, opts...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(spec.name+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *promptChainState[I]) (O, error) {
			return spec.finalize(st.In, st.OutMsg)
		}),
		compose.WithNodeName(spec.name+".finalize"),
	)

	return chain.Compile(ctx)
}

func baseModelOptions(modelName string, temperature *float32, maxTokens *int) []model.Option {
	opts := make([]model.Option, 0, 3)
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	if m := strings.TrimSpace(modelName); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	return opts
}
