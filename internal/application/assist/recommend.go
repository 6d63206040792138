package assist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"strings"

	"bookhatch-api/internal/workflow/chain"
	wfmodel "bookhatch-api/internal/workflow/model"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/metrics"
)

const recommendationKeyPrefix = "assist:recommend:v1:"

// Recommendations 推荐结果
type Recommendations struct {
	Genres []string `json:"genres"`
	Titles []string `json:"titles"`
	Cached bool     `json:"cached"`
}

// NormalizeGenres 去空白、去重并排序，作为缓存键
func NormalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Recommend 根据题材生成书单；未指定题材时使用用户的偏好题材
func (s *Service) Recommend(ctx context.Context, userID string, genres []string) (*Recommendations, error) {
	normalized := NormalizeGenres(genres)
	if len(normalized) == 0 && userID != "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			normalized = NormalizeGenres(user.PreferredGenres)
		}
	}
	if len(normalized) == 0 {
		return nil, errors.InvalidParam("select at least one genre")
	}

	key := recommendationKeyPrefix + strings.ToLower(strings.Join(normalized, "|"))
	data, hit, err := s.cache.GetOrLoad(ctx, key, s.cfg.Recommendation.CacheTTL, func(ctx context.Context) (any, error) {
		out, err := s.recommender.Invoke(ctx, &wfmodel.RecommendationInput{
			Provider: s.cfg.Recommendation.Provider,
			Genres:   normalized,
			MaxItems: s.cfg.Recommendation.MaxItems,
		})
		if err != nil {
			return nil, err
		}
		return out.Titles, nil
	})
	if err != nil {
		logger.Error(ctx, "recommendation failed", err, "genres", normalized)
		if stderrors.Is(err, chain.ErrNoRecommendations) {
			return nil, errors.ErrRecommendationFailed.WithDetail("no recommendations returned")
		}
		return nil, errors.ErrRecommendationFailed.WithError(err)
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.RecommendationCacheTotal.WithLabelValues(result).Inc()

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, errors.ErrRecommendationFailed.WithError(err)
	}
	return &Recommendations{Genres: normalized, Titles: titles, Cached: hit}, nil
}
