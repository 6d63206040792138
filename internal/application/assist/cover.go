package assist

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bookhatch-api/internal/domain/entity"
	wfnode "bookhatch-api/internal/workflow/node"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/metrics"
	"bookhatch-api/pkg/richtext"
)

// 封面提供方
const (
	CoverProviderGenAI       = "genai"
	CoverProviderPlaceholder = "placeholder"
)

// CoverRequest 封面生成参数
type CoverRequest struct {
	Title   string
	Genre   string
	Summary string
}

// Cover 生成的封面
type Cover struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// GenerateCover 生成封面，返回图片的 data URL 或占位图地址
func (s *Service) GenerateCover(ctx context.Context, req CoverRequest) (*Cover, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Genre = strings.TrimSpace(req.Genre)
	req.Summary = strings.TrimSpace(richtext.PlainText(req.Summary))
	if req.Title == "" {
		return nil, errors.InvalidParam("title is required")
	}

	provider := s.coverProvider()
	start := time.Now()
	defer func() {
		metrics.AssetGenerationDuration.WithLabelValues("cover").Observe(time.Since(start).Seconds())
	}()

	if provider == CoverProviderPlaceholder {
		metrics.AssetGenerationTotal.WithLabelValues("cover", provider, "ok").Inc()
		return &Cover{URL: PlaceholderCoverURL(req.Title, req.Genre), Provider: provider}, nil
	}

	img, err := s.images.GenerateImage(ctx, coverPrompt(req))
	if err != nil {
		metrics.AssetGenerationTotal.WithLabelValues("cover", provider, "error").Inc()
		logger.Error(ctx, "cover generation failed", err, "title", req.Title)
		return nil, errors.ErrCoverFailed.WithError(err)
	}
	metrics.AssetGenerationTotal.WithLabelValues("cover", provider, "ok").Inc()

	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
	return &Cover{URL: dataURL, Provider: provider}, nil
}

// GenerateStoryCover 以故事信息补全缺失参数生成封面，apply 为 true 时写回故事
func (s *Service) GenerateStoryCover(ctx context.Context, userID, storyID string, req CoverRequest, apply bool) (*Cover, *entity.Story, error) {
	story, err := s.stories.LoadOwned(ctx, userID, storyID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = story.Title
	}
	if strings.TrimSpace(req.Genre) == "" {
		req.Genre = story.Genre
	}
	if strings.TrimSpace(req.Summary) == "" {
		req.Summary = story.Description
	}

	cover, err := s.GenerateCover(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if !apply {
		return cover, story, nil
	}

	story, err = s.stories.SetCover(ctx, userID, storyID, cover.URL)
	if err != nil {
		return nil, nil, err
	}
	return cover, story, nil
}

// PlaceholderCoverURL 以标题与题材为种子的占位封面
func PlaceholderCoverURL(title, genre string) string {
	seed := escapeComponent(title + "-" + genre)
	return "https://picsum.photos/seed/" + seed + "/400/600"
}

// componentUnescape 还原 QueryEscape 会转义、而 URI 组件编码保留的字符
var componentUnescape = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// escapeComponent 按 URI 组件规则编码，与浏览器 encodeURIComponent 一致
func escapeComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}

func (s *Service) coverProvider() string {
	if s.cfg.Cover.Provider == CoverProviderGenAI && s.images != nil {
		return CoverProviderGenAI
	}
	return CoverProviderPlaceholder
}

func coverPrompt(req CoverRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A book cover illustration for a %s novel titled %q.", strings.ToLower(req.Genre), req.Title)
	if req.Summary != "" {
		fmt.Fprintf(&b, " The story: %s", wfnode.TruncateByRunes(req.Summary, 500))
	}
	b.WriteString(" Portrait orientation, no text or lettering.")
	return b.String()
}
