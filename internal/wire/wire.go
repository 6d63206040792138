//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"bookhatch-api/internal/application/assist"
	"bookhatch-api/internal/application/catalog"
	"bookhatch-api/internal/application/draft"
	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/internal/infrastructure/llm"
	"bookhatch-api/internal/infrastructure/messaging"
	"bookhatch-api/internal/infrastructure/persistence/redis"
	"bookhatch-api/internal/interfaces/http/handler"
	"bookhatch-api/internal/interfaces/http/middleware"
	"bookhatch-api/internal/interfaces/http/router"
	"bookhatch-api/internal/workflow/chain"
	"bookhatch-api/internal/workflow/port"
)

// InitializeApp 初始化 API 网关
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		ServiceSet,
		NarrationSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeWorker 初始化朗读任务执行器
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		NarrationSet,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化迁移与种子数据
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	wire.Build(
		StoreSet,
		ProvideJWTManager,
		ProvideAccountService,
		catalog.NewService,
		wire.Struct(new(Bootstrap), "*"),
	)
	return nil, nil, nil
}

// StoreSet 文档存储提供者集合
var StoreSet = wire.NewSet(
	ProvideStore,
	ProvideTransactor,
	ProvideStoryRepository,
	ProvideChapterRepository,
	ProvideUserRepository,
	ProvideJobRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideDraftStore,
	ProvideMessagingProducer,
	wire.Bind(new(assist.Cache), new(*redis.Cache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
	wire.Bind(new(repository.DraftRepository), new(*redis.DraftStore)),
	wire.Bind(new(assist.NarrationPublisher), new(*messaging.Producer)),
)

// NarrationSet 朗读任务提供者集合
var NarrationSet = wire.NewSet(
	ProvideGenAIClient,
	ProvideSpeechSynthesizer,
	ProvideNarrationService,
	ProvideNarrationConsumer,
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideJWTManager,
	ProvideAccountService,
	catalog.NewService,
	story.NewService,
	draft.NewService,
	llm.NewEinoFactory,
	chain.NewRecommendationChain,
	chain.NewContinuationChain,
	ProvideImageGenerator,
	ProvideAssistService,
	wire.Bind(new(port.ChatModelFactory), new(*llm.EinoFactory)),
	wire.Bind(new(assist.RecommendationRunner), new(*chain.RecommendationChain)),
	wire.Bind(new(assist.ContinuationRunner), new(*chain.ContinuationChain)),
	wire.Bind(new(assist.StoryEditor), new(*story.Service)),
	wire.Bind(new(draft.StoryOwner), new(*story.Service)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideAuthHandler,
	handler.NewUserHandler,
	handler.NewCatalogHandler,
	handler.NewStoryHandler,
	handler.NewDraftHandler,
	handler.NewAssistHandler,
	handler.NewJobHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
