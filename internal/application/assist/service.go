// Package assist 封装生成式 AI 能力：阅读推荐、续写、封面与朗读
package assist

import (
	"context"
	"time"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	wfmodel "bookhatch-api/internal/workflow/model"
	"bookhatch-api/internal/workflow/port"
)

// Cache 带防击穿的结果缓存
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, bool, error)
}

// RecommendationRunner 推荐链
type RecommendationRunner interface {
	Invoke(ctx context.Context, in *wfmodel.RecommendationInput) (*wfmodel.RecommendationOutput, error)
}

// ContinuationRunner 续写链
type ContinuationRunner interface {
	Invoke(ctx context.Context, in *wfmodel.ContinuationInput) (*wfmodel.ContinuationOutput, error)
}

// StoryEditor 封面写回所需的故事操作
type StoryEditor interface {
	LoadOwned(ctx context.Context, userID, storyID string) (*entity.Story, error)
	SetCover(ctx context.Context, userID, storyID, coverURL string) (*entity.Story, error)
}

// Service 辅助服务
type Service struct {
	cfg         config.AssistConfig
	recommender RecommendationRunner
	continuer   ContinuationRunner
	images      port.ImageGenerator
	cache       Cache
	stories     StoryEditor
	users       repository.UserRepository
}

// NewService 创建辅助服务，images 为 nil 时封面使用占位图
func NewService(
	cfg config.AssistConfig,
	recommender RecommendationRunner,
	continuer ContinuationRunner,
	images port.ImageGenerator,
	cache Cache,
	stories StoryEditor,
	users repository.UserRepository,
) *Service {
	return &Service{
		cfg:         cfg,
		recommender: recommender,
		continuer:   continuer,
		images:      images,
		cache:       cache,
		stories:     stories,
		users:       users,
	}
}
