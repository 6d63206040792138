package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmctx "bookhatch-api/internal/domain/service"
	wfmodel "bookhatch-api/internal/workflow/model"
)

type fakeChatModel struct {
	reply    string
	err      error
	got      []*schema.Message
	workflow string
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.got = in
	m.workflow = llmctx.WorkflowFromContext(ctx)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakeFactory struct {
	model *fakeChatModel
	asked string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.asked = name
	if f.model == nil {
		return nil, errors.New("provider not found")
	}
	return f.model, nil
}

func TestRecommendationChain_Invoke(t *testing.T) {
	fm := &fakeChatModel{reply: "1. Dune\n2. **Hyperion**\n3. dune\n4. Foundation"}
	f := &fakeFactory{model: fm}
	c := NewRecommendationChain(f)

	out, err := c.Invoke(context.Background(), &wfmodel.RecommendationInput{
		Provider: "openai",
		Genres:   []string{"Science Fiction", "Fantasy"},
		MaxItems: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Hyperion"}, out.Titles)
	assert.Equal(t, "openai", f.asked)
	assert.Equal(t, "recommendation", fm.workflow)

	require.Len(t, fm.got, 2)
	assert.Contains(t, fm.got[1].Content, "- Science Fiction\n- Fantasy")
}

func TestRecommendationChain_EmptyOutput(t *testing.T) {
	c := NewRecommendationChain(&fakeFactory{model: &fakeChatModel{reply: "  \n"}})

	_, err := c.Invoke(context.Background(), &wfmodel.RecommendationInput{Genres: []string{"Horror"}, MaxItems: 5})
	assert.ErrorIs(t, err, ErrNoRecommendations)
}

func TestRecommendationChain_RequiresGenres(t *testing.T) {
	c := NewRecommendationChain(&fakeFactory{model: &fakeChatModel{reply: "1. Dune"}})

	_, err := c.Invoke(context.Background(), &wfmodel.RecommendationInput{})
	assert.Error(t, err)
}

func TestContinuationChain_StripsEcho(t *testing.T) {
	fm := &fakeChatModel{reply: "The door creaked. A hand reached out of the dark."}
	c := NewContinuationChain(&fakeFactory{model: fm})

	out, err := c.Invoke(context.Background(), &wfmodel.ContinuationInput{ExistingText: "The door creaked."})
	require.NoError(t, err)
	assert.Equal(t, "A hand reached out of the dark.", out.Text)
	assert.Contains(t, fm.got[1].Content, "The door creaked.")
}

func TestContinuationChain_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	c := NewContinuationChain(&fakeFactory{model: &fakeChatModel{err: boom}})

	_, err := c.Invoke(context.Background(), &wfmodel.ContinuationInput{ExistingText: "Once"})
	assert.ErrorIs(t, err, boom)
}

func TestContinuationChain_OnlyEcho(t *testing.T) {
	c := NewContinuationChain(&fakeFactory{model: &fakeChatModel{reply: "Once upon a time."}})

	_, err := c.Invoke(context.Background(), &wfmodel.ContinuationInput{ExistingText: "Once upon a time."})
	assert.ErrorIs(t, err, ErrEmptyContinuation)
}
