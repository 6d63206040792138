// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"os"

	"github.com/google/uuid"

	"bookhatch-api/internal/application/account"
	"bookhatch-api/internal/application/assist"
	"bookhatch-api/internal/application/catalog"
	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/internal/infrastructure/genai"
	"bookhatch-api/internal/infrastructure/messaging"
	"bookhatch-api/internal/infrastructure/persistence/memory"
	"bookhatch-api/internal/infrastructure/persistence/postgres"
	"bookhatch-api/internal/infrastructure/persistence/redis"
	"bookhatch-api/internal/interfaces/http/handler"
	"bookhatch-api/internal/interfaces/http/router"
	"bookhatch-api/internal/workflow/port"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/utils"
)

// Store 按 database.driver 选定的文档存储
type Store struct {
	// PG 为 nil 表示内存存储
	PG       *postgres.Client
	Tx       repository.Transactor
	Stories  repository.StoryRepository
	Chapters repository.ChapterRepository
	Users    repository.UserRepository
	Jobs     repository.JobRepository
}

// IsMemory 是否为内存存储
func (s *Store) IsMemory() bool {
	return s.PG == nil
}

// App API 网关依赖
type App struct {
	Router    *router.Router
	Store     *Store
	Catalog   *catalog.Service
	Narration *assist.NarrationService
	Consumer  *messaging.Consumer
}

// Worker 朗读任务执行器依赖
type Worker struct {
	Store     *Store
	Narration *assist.NarrationService
	Consumer  *messaging.Consumer
}

// Bootstrap 初始化脚本依赖
type Bootstrap struct {
	Store    *Store
	Catalog  *catalog.Service
	Accounts *account.Service
}

// ProvideStore 提供文档存储
func ProvideStore(ctx context.Context, cfg *config.Config) (*Store, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn(ctx, "using in-memory document store, data is lost on restart")
		m := memory.NewStore()
		return &Store{
			Tx:       m,
			Stories:  m.Stories(),
			Chapters: m.Chapters(),
			Users:    m.Users(),
			Jobs:     m.Jobs(),
		}, func() {}, nil
	}

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return &Store{
		PG:       client,
		Tx:       postgres.NewTxManager(client),
		Stories:  postgres.NewStoryRepository(client),
		Chapters: postgres.NewChapterRepository(client),
		Users:    postgres.NewUserRepository(client),
		Jobs:     postgres.NewJobRepository(client),
	}, cleanup, nil
}

// ProvideTransactor 提供事务管理器
func ProvideTransactor(s *Store) repository.Transactor { return s.Tx }

// ProvideStoryRepository 提供故事仓储
func ProvideStoryRepository(s *Store) repository.StoryRepository { return s.Stories }

// ProvideChapterRepository 提供章节仓储
func ProvideChapterRepository(s *Store) repository.ChapterRepository { return s.Chapters }

// ProvideUserRepository 提供用户仓储
func ProvideUserRepository(s *Store) repository.UserRepository { return s.Users }

// ProvideJobRepository 提供任务仓储
func ProvideJobRepository(s *Store) repository.JobRepository { return s.Jobs }

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideDraftStore 提供草稿缓冲
func ProvideDraftStore(client *redis.Client, cfg *config.Config) *redis.DraftStore {
	return redis.NewDraftStore(client, cfg.Drafts.KeyPrefix, cfg.Drafts.TTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(client *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	stream := messaging.StreamNarrationJobs
	if cfg.Assist.Narration.Stream != "" {
		stream = messaging.Stream(cfg.Assist.Narration.Stream)
	}
	return messaging.NewProducer(client.Redis(), int64(maxLen), stream)
}

// ProvideJWTManager 提供 JWT 管理器
func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

// ProvideGenAIClient 提供 GenAI 客户端，未配置 api_key 时返回 nil
func ProvideGenAIClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if cfg.GenAI.APIKey == "" {
		logger.Warn(ctx, "genai api key not configured, covers use placeholders and narration is unavailable")
		return nil, nil
	}
	return genai.NewClient(ctx, &cfg.GenAI)
}

// ProvideImageGenerator nil 客户端返回 nil 接口
func ProvideImageGenerator(c *genai.Client) port.ImageGenerator {
	if c == nil {
		return nil
	}
	return c
}

// ProvideSpeechSynthesizer nil 客户端返回 nil 接口
func ProvideSpeechSynthesizer(c *genai.Client) port.SpeechSynthesizer {
	if c == nil {
		return nil
	}
	return c
}

// ProvideAccountService 提供账户服务
func ProvideAccountService(users repository.UserRepository, jwt *utils.JWTManager, cfg *config.Config) *account.Service {
	return account.NewService(users, jwt, cfg.Security.JWT)
}

// ProvideAssistService 提供辅助服务
func ProvideAssistService(
	cfg *config.Config,
	recommender assist.RecommendationRunner,
	continuer assist.ContinuationRunner,
	images port.ImageGenerator,
	cache assist.Cache,
	stories assist.StoryEditor,
	users repository.UserRepository,
) *assist.Service {
	return assist.NewService(cfg.Assist, recommender, continuer, images, cache, stories, users)
}

// ProvideNarrationService 提供朗读服务
func ProvideNarrationService(
	cfg *config.Config,
	jobs repository.JobRepository,
	stories repository.StoryRepository,
	chapters repository.ChapterRepository,
	publisher assist.NarrationPublisher,
	speech port.SpeechSynthesizer,
	cache assist.Cache,
) *assist.NarrationService {
	return assist.NewNarrationService(cfg.Assist.Narration, jobs, stories, chapters, publisher, speech, cache)
}

// ProvideNarrationConsumer 提供朗读任务消费者，失败重试耗尽后将任务标记为失败
func ProvideNarrationConsumer(client *redis.Client, cfg *config.Config, narration *assist.NarrationService) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	stream := messaging.StreamNarrationJobs
	if cfg.Assist.Narration.Stream != "" {
		stream = messaging.Stream(cfg.Assist.Narration.Stream)
	}
	group := messaging.ConsumerGroupNarrationWorker
	if rs.ConsumerGroupPrefix != "" {
		group = messaging.ConsumerGroup(rs.ConsumerGroupPrefix + string(group))
	}

	consumer := messaging.NewConsumer(client.Redis(), messaging.ConsumerConfig{
		Stream:        stream,
		Group:         group,
		ConsumerName:  consumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
		OnDeadLetter: func(ctx context.Context, msg *messaging.Message, err error) {
			var payload messaging.NarrationJobMessage
			if uerr := msg.UnmarshalPayload(&payload); uerr != nil {
				logger.Error(ctx, "failed to decode dead-lettered narration job", uerr, "message_id", msg.ID)
				return
			}
			narration.HandleDeadLetter(ctx, &payload, err)
		},
	})

	consumer.RegisterHandler(messaging.MessageTypeNarration, func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.NarrationJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return narration.Process(ctx, &payload)
	})
	return consumer
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return host + "-" + uuid.NewString()[:8]
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, s *Store, client *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, s.PG, client)
}

// ProvideAuthHandler 提供认证处理器，生产环境使用 Secure Cookie
func ProvideAuthHandler(cfg *config.Config, accounts *account.Service) *handler.AuthHandler {
	return handler.NewAuthHandler(accounts, cfg.App.Env == "production")
}
