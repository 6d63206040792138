// Package redis 提供 Redis 草稿缓冲实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookhatch-api/internal/domain/entity"
)

// DraftStore 以 JSON 保存每个用户、每个故事的草稿快照
type DraftStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewDraftStore 创建草稿缓冲
func NewDraftStore(client *Client, prefix string, ttl time.Duration) *DraftStore {
	if prefix == "" {
		prefix = "draft"
	}
	return &DraftStore{client: client, prefix: prefix, ttl: ttl}
}

// Key 构建草稿键：{prefix}:{userID}:{storyID}
func (s *DraftStore) Key(userID, storyID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, userID, storyID)
}

// Save 保存草稿
func (s *DraftStore) Save(ctx context.Context, draft *entity.Draft) error {
	key := s.Key(draft.UserID, draft.StoryID)
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Save",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	data, err := json.Marshal(draft)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := s.client.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get 获取草稿
func (s *DraftStore) Get(ctx context.Context, userID, storyID string) (*entity.Draft, error) {
	key := s.Key(userID, storyID)
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Get",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft entity.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete 删除草稿
func (s *DraftStore) Delete(ctx context.Context, userID, storyID string) error {
	key := s.Key(userID, storyID)
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Delete",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
