package assist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/infrastructure/messaging"
	"bookhatch-api/internal/infrastructure/persistence/memory"
	"bookhatch-api/internal/infrastructure/persistence/redis"
	"bookhatch-api/internal/workflow/chain"
	wfmodel "bookhatch-api/internal/workflow/model"
	"bookhatch-api/internal/workflow/port"
	apperrors "bookhatch-api/pkg/errors"
)

type fakeRecommender struct {
	calls  atomic.Int32
	titles []string
	err    error
	last   *wfmodel.RecommendationInput
}

func (f *fakeRecommender) Invoke(_ context.Context, in *wfmodel.RecommendationInput) (*wfmodel.RecommendationOutput, error) {
	f.calls.Add(1)
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &wfmodel.RecommendationOutput{Titles: f.titles}, nil
}

type fakeContinuer struct {
	last *wfmodel.ContinuationInput
	text string
	err  error
}

func (f *fakeContinuer) Invoke(_ context.Context, in *wfmodel.ContinuationInput) (*wfmodel.ContinuationOutput, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &wfmodel.ContinuationOutput{Text: f.text}, nil
}

type fakeImages struct {
	prompt string
	err    error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string) (*port.Image, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &port.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

type fakeSpeech struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSpeech) Synthesize(_ context.Context, _ string) (*port.Speech, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &port.Speech{Data: []byte{0, 1, 2, 3}, MIMEType: "audio/L16;codec=pcm;rate=24000"}, nil
}

type fakePublisher struct {
	published []*messaging.NarrationJobMessage
	err       error
}

func (f *fakePublisher) PublishNarrationJob(_ context.Context, job *messaging.NarrationJobMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, job)
	return "1-0", nil
}

type fixture struct {
	store       *memory.Store
	stories     *story.Service
	cache       *redis.Cache
	recommender *fakeRecommender
	continuer   *fakeContinuer
	images      *fakeImages
	speech      *fakeSpeech
	publisher   *fakePublisher
	user        *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memory.NewStore()
	user := entity.NewUser("ada@example.com", "Ada")
	user.PreferredGenres = []string{"Fantasy"}
	require.NoError(t, store.Users().Create(context.Background(), user))

	return &fixture{
		store:       store,
		stories:     story.NewService(store, store.Stories(), store.Chapters(), store.Users(), nil),
		cache:       redis.NewCache(redis.NewClientWithRedis(rdb)),
		recommender: &fakeRecommender{titles: []string{"Dune", "Hyperion"}},
		continuer:   &fakeContinuer{text: "And then the wind changed."},
		images:      &fakeImages{},
		speech:      &fakeSpeech{},
		publisher:   &fakePublisher{},
		user:        user,
	}
}

func (f *fixture) service(coverProvider string) *Service {
	cfg := config.AssistConfig{
		Recommendation: config.RecommendationConfig{MaxItems: 5, CacheTTL: time.Hour},
		Continuation:   config.ContinuationConfig{MaxContextRunes: 10},
		Cover:          config.CoverConfig{Provider: coverProvider},
	}
	return NewService(cfg, f.recommender, f.continuer, f.images, f.cache, f.stories, f.store.Users())
}

func (f *fixture) narration() *NarrationService {
	cfg := config.NarrationConfig{CacheTTL: time.Hour, MaxRunes: 1000}
	return NewNarrationService(cfg, f.store.Jobs(), f.store.Stories(), f.store.Chapters(), f.publisher, f.speech, f.cache)
}

func TestNormalizeGenres(t *testing.T) {
	assert.Equal(t, []string{"Fantasy", "Horror"}, NormalizeGenres([]string{" Horror", "Fantasy", "", "Horror"}))
	assert.Empty(t, NormalizeGenres(nil))
}

func TestRecommend_CachesByGenreSet(t *testing.T) {
	f := newFixture(t)
	svc := f.service(CoverProviderPlaceholder)
	ctx := context.Background()

	first, err := svc.Recommend(ctx, "", []string{"Horror", "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Hyperion"}, first.Titles)
	assert.False(t, first.Cached)
	assert.Equal(t, 5, f.recommender.last.MaxItems)

	second, err := svc.Recommend(ctx, "", []string{"Fantasy", "Horror", "Fantasy"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, int32(1), f.recommender.calls.Load())
}

func TestRecommend_FallsBackToPreferredGenres(t *testing.T) {
	f := newFixture(t)
	svc := f.service(CoverProviderPlaceholder)

	res, err := svc.Recommend(context.Background(), f.user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy"}, res.Genres)

	_, err = svc.Recommend(context.Background(), "", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

func TestRecommend_Errors(t *testing.T) {
	f := newFixture(t)
	f.recommender.err = chain.ErrNoRecommendations
	svc := f.service(CoverProviderPlaceholder)

	_, err := svc.Recommend(context.Background(), "", []string{"Mystery"})
	require.ErrorIs(t, err, apperrors.ErrRecommendationFailed)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "no recommendations returned", appErr.Detail)

	// 失败结果不缓存
	f.recommender.err = nil
	res, err := svc.Recommend(context.Background(), "", []string{"Mystery"})
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestContinue(t *testing.T) {
	f := newFixture(t)
	svc := f.service(CoverProviderPlaceholder)

	out, err := svc.Continue(context.Background(), "<p>Once upon a time, far away</p>")
	require.NoError(t, err)
	assert.Equal(t, "And then the wind changed.", out)
	assert.Equal(t, ", far away", f.continuer.last.ExistingText)

	_, err = svc.Continue(context.Background(), "<p>  </p>")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	f.continuer.err = errors.New("provider down")
	_, err = svc.Continue(context.Background(), "text")
	assert.ErrorIs(t, err, apperrors.ErrContinuationFailed)
}

func TestGenerateCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placeholder, err := f.service(CoverProviderPlaceholder).GenerateCover(ctx, CoverRequest{Title: "Night Tide", Genre: "Horror"})
	require.NoError(t, err)
	assert.Equal(t, "https://picsum.photos/seed/Night%20Tide-Horror/400/600", placeholder.URL)
	assert.Equal(t, CoverProviderPlaceholder, placeholder.Provider)

	generated, err := f.service(CoverProviderGenAI).GenerateCover(ctx, CoverRequest{Title: "Night Tide", Genre: "Horror", Summary: "<p>Waves</p>"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", generated.URL)
	assert.Contains(t, f.images.prompt, `"Night Tide"`)
	assert.Contains(t, f.images.prompt, "Waves")

	_, err = f.service(CoverProviderGenAI).GenerateCover(ctx, CoverRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	f.images.err = errors.New("quota")
	_, err = f.service(CoverProviderGenAI).GenerateCover(ctx, CoverRequest{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrCoverFailed)
}

func TestPlaceholderCoverURL_EscapesComponent(t *testing.T) {
	assert.Equal(t, "https://picsum.photos/seed/Tom%20%26%20Jerry-Comedy/400/600", PlaceholderCoverURL("Tom & Jerry", "Comedy"))
	assert.Equal(t, "https://picsum.photos/seed/1%2B1%3D2%3A%20%40home-Drama/400/600", PlaceholderCoverURL("1+1=2: @home", "Drama"))
	assert.Equal(t, "https://picsum.photos/seed/Don't%20Panic!%20(*)-Humor/400/600", PlaceholderCoverURL("Don't Panic! (*)", "Humor"))
}

func TestGenerateStoryCover_Apply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.stories.CreateStory(ctx, f.user.ID, story.CreateInput{Title: "Sea", Summary: "Salt", Genre: "Adventure"})
	require.NoError(t, err)
	svc := f.service(CoverProviderPlaceholder)

	cover, updated, err := svc.GenerateStoryCover(ctx, f.user.ID, st.ID, CoverRequest{}, true)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderCoverURL("Sea", "Adventure"), cover.URL)
	assert.Equal(t, cover.URL, updated.CoverImage)

	_, _, err = svc.GenerateStoryCover(ctx, "intruder", st.ID, CoverRequest{}, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func (f *fixture) narratableChapter(t *testing.T, content string, enabled bool) *entity.Chapter {
	t.Helper()
	ctx := context.Background()
	st, err := f.stories.CreateStory(ctx, f.user.ID, story.CreateInput{Title: "Loud Story", Summary: "s", Genre: "Romance"})
	require.NoError(t, err)
	_, err = f.stories.UpdateSettings(ctx, f.user.ID, st.ID, story.SettingsInput{AudioNarrationEnabled: &enabled})
	require.NoError(t, err)
	ch, err := f.stories.AddChapter(ctx, f.user.ID, st.ID, "")
	require.NoError(t, err)
	ch, err = f.stories.UpdateChapter(ctx, f.user.ID, ch.ID, story.ChapterInput{Content: &content})
	require.NoError(t, err)
	return ch
}

func TestNarration_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.narration()
	ch := f.narratableChapter(t, "<p>Read me aloud</p>", true)

	job, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, job.ID, f.publisher.published[0].JobID)

	require.NoError(t, svc.Process(ctx, f.publisher.published[0]))

	done, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, done.Status)

	var result NarrationResult
	require.NoError(t, json.Unmarshal(done.OutputResult, &result))
	assert.Equal(t, "audio/wav", result.MIMEType)
	assert.True(t, strings.HasPrefix(result.AudioDataURI, "data:audio/wav;base64,UklGR"))
	assert.False(t, result.Cached)

	// 相同文本复用缓存
	again, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, f.publisher.published[1]))
	cached, err := svc.GetJob(ctx, f.user.ID, again.ID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(cached.OutputResult, &result))
	assert.True(t, result.Cached)
	assert.Equal(t, int32(1), f.speech.calls.Load())

	_, err = svc.GetJob(ctx, "someone-else", job.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	_, err = svc.CancelJob(ctx, f.user.ID, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobAlreadyFinished)
}

func TestNarration_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.narration()

	disabled := f.narratableChapter(t, "<p>quiet</p>", false)
	_, err := svc.RequestNarration(ctx, f.user.ID, disabled.ID)
	assert.ErrorIs(t, err, apperrors.ErrNarrationDisabled)

	unpublished := f.narratableChapter(t, "<p>secret</p>", true)
	_, err = svc.RequestNarration(ctx, "reader", unpublished.ID)
	assert.ErrorIs(t, err, apperrors.ErrChapterNotFound)

	_, err = svc.RequestNarration(ctx, f.user.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrChapterNotFound)
}

func TestNarration_EmptyChapterFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.narration()
	ch := f.narratableChapter(t, "<p></p>", true)

	job, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, f.publisher.published[0]))

	failed, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, failed.Status)
	assert.Equal(t, "chapter has no text", failed.ErrorMessage)
	assert.Zero(t, f.speech.calls.Load())
}

func TestNarration_NoSynthesizerFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := config.NarrationConfig{CacheTTL: time.Hour, MaxRunes: 1000}
	svc := NewNarrationService(cfg, f.store.Jobs(), f.store.Stories(), f.store.Chapters(), f.publisher, nil, f.cache)
	ch := f.narratableChapter(t, "<p>The tide came in.</p>", true)

	job, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, f.publisher.published[0]))

	failed, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, failed.Status)
	assert.Equal(t, "speech synthesis not configured", failed.ErrorMessage)
}

func TestNarration_ProviderErrorRetriesThenDeadLetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.speech.err = errors.New("tts unavailable")
	svc := f.narration()
	ch := f.narratableChapter(t, "<p>try again</p>", true)

	job, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	msg := f.publisher.published[0]

	assert.Error(t, svc.Process(ctx, msg))
	running, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusRunning, running.Status)

	assert.Error(t, svc.Process(ctx, msg))
	retried, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, retried.RetryCount)

	svc.HandleDeadLetter(ctx, msg, errors.New("tts unavailable"))
	dead, err := svc.GetJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, dead.Status)
}

func TestNarration_CancelBeforeProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.narration()
	ch := f.narratableChapter(t, "<p>never mind</p>", true)

	job, err := svc.RequestNarration(ctx, f.user.ID, ch.ID)
	require.NoError(t, err)
	cancelled, err := svc.CancelJob(ctx, f.user.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCancelled, cancelled.Status)

	require.NoError(t, svc.Process(ctx, f.publisher.published[0]))
	assert.Zero(t, f.speech.calls.Load())
}

func TestNarration_PublishFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("redis down")
	svc := f.narration()
	ch := f.narratableChapter(t, "<p>hello</p>", true)

	_, err := svc.RequestNarration(context.Background(), f.user.ID, ch.ID)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}
