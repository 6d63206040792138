package assist

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
	"bookhatch-api/internal/infrastructure/messaging"
	wfnode "bookhatch-api/internal/workflow/node"
	"bookhatch-api/internal/workflow/port"
	"bookhatch-api/pkg/audio"
	"bookhatch-api/pkg/errors"
	"bookhatch-api/pkg/logger"
	"bookhatch-api/pkg/metrics"
	"bookhatch-api/pkg/richtext"
)

const narrationKeyPrefix = "assist:narration:v1:"

// 任务失败原因
const (
	reasonChapterMissing = "chapter not found"
	reasonNoText         = "chapter has no text"
	reasonNoSynthesizer  = "speech synthesis not configured"
)

// NarrationPublisher 朗读任务投递
type NarrationPublisher interface {
	PublishNarrationJob(ctx context.Context, job *messaging.NarrationJobMessage) (string, error)
}

// NarrationResult 写入任务结果的内容
type NarrationResult struct {
	AudioDataURI string `json:"audio_data_uri"`
	MIMEType     string `json:"mime_type"`
	Cached       bool   `json:"cached"`
}

type narrationParams struct {
	ChapterID string `json:"chapter_id"`
}

// NarrationService 章节朗读：接口侧创建任务，worker 侧执行合成
type NarrationService struct {
	cfg       config.NarrationConfig
	jobs      repository.JobRepository
	stories   repository.StoryRepository
	chapters  repository.ChapterRepository
	publisher NarrationPublisher
	speech    port.SpeechSynthesizer
	cache     Cache
}

// NewNarrationService 创建朗读服务；仅投递任务的进程可传 nil speech
func NewNarrationService(
	cfg config.NarrationConfig,
	jobs repository.JobRepository,
	stories repository.StoryRepository,
	chapters repository.ChapterRepository,
	publisher NarrationPublisher,
	speech port.SpeechSynthesizer,
	cache Cache,
) *NarrationService {
	return &NarrationService{
		cfg:       cfg,
		jobs:      jobs,
		stories:   stories,
		chapters:  chapters,
		publisher: publisher,
		speech:    speech,
		cache:     cache,
	}
}

// RequestNarration 创建章节朗读任务并投递到队列。
// 读者只能朗读已发布章节，作者可以朗读自己的任意章节。
func (s *NarrationService) RequestNarration(ctx context.Context, userID, chapterID string) (*entity.GenerationJob, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, errors.ErrChapterNotFound
	}
	story, err := s.stories.GetByID(ctx, chapter.StoryID)
	if err != nil {
		return nil, err
	}
	if story == nil || (!chapter.IsPublished && !story.IsOwnedBy(userID)) {
		return nil, errors.ErrChapterNotFound
	}
	if !story.AudioNarrationEnabled {
		return nil, errors.ErrNarrationDisabled
	}

	params, _ := json.Marshal(narrationParams{ChapterID: chapter.ID})
	job := entity.NewGenerationJob(userID, story.ID, chapter.ID, entity.JobTypeChapterAudio, params)
	job.Provider = "genai"
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create narration job: %w", err)
	}

	if _, err := s.publisher.PublishNarrationJob(ctx, &messaging.NarrationJobMessage{
		JobID:     job.ID,
		UserID:    userID,
		StoryID:   story.ID,
		ChapterID: chapter.ID,
	}); err != nil {
		logger.Error(ctx, "failed to enqueue narration job", err, "job_id", job.ID)
		job.Fail("failed to enqueue job")
		if uerr := s.jobs.Update(ctx, job); uerr != nil {
			logger.Error(ctx, "failed to mark job failed", uerr, "job_id", job.ID)
		}
		return nil, errors.ErrServiceUnavailable.WithError(err)
	}

	logger.Info(ctx, "narration job enqueued", "job_id", job.ID, "chapter_id", chapter.ID)
	return job, nil
}

// GetJob 获取任务，只对发起人可见
func (s *NarrationService) GetJob(ctx context.Context, userID, jobID string) (*entity.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.UserID != userID {
		return nil, errors.ErrJobNotFound
	}
	return job, nil
}

// ListJobs 当前用户的任务列表
func (s *NarrationService) ListJobs(ctx context.Context, userID string, filter *repository.JobFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	return s.jobs.ListByUser(ctx, userID, filter, pagination)
}

// CancelJob 取消未结束的任务
func (s *NarrationService) CancelJob(ctx context.Context, userID, jobID string) (*entity.GenerationJob, error) {
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsFinished() {
		return nil, errors.ErrJobAlreadyFinished
	}
	job.Cancel()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to cancel job: %w", err)
	}
	metrics.NarrationJobsTotal.WithLabelValues(string(entity.JobStatusCancelled)).Inc()
	return job, nil
}

// Process 执行朗读任务。返回错误时消息留在队列中重试；
// 无法完成的任务直接标记失败并返回 nil。
func (s *NarrationService) Process(ctx context.Context, msg *messaging.NarrationJobMessage) error {
	ctx = logger.WithContext(ctx, logger.JobIDKey, msg.JobID)

	job, err := s.jobs.GetByID(ctx, msg.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		logger.Warn(ctx, "narration job no longer exists")
		return nil
	}
	if job.IsFinished() {
		logger.Info(ctx, "skipping finished narration job", "status", job.Status)
		return nil
	}

	if job.Status == entity.JobStatusPending {
		job.Start()
	} else {
		job.RetryCount++
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}

	chapter, err := s.chapters.GetByID(ctx, job.ChapterID)
	if err != nil {
		return err
	}
	if chapter == nil {
		return s.fail(ctx, job, reasonChapterMissing)
	}

	if s.speech == nil {
		return s.fail(ctx, job, reasonNoSynthesizer)
	}

	text := strings.TrimSpace(richtext.PlainText(chapter.Content))
	if text == "" {
		return s.fail(ctx, job, reasonNoText)
	}
	if s.cfg.MaxRunes > 0 {
		text = wfnode.TruncateByRunes(text, s.cfg.MaxRunes)
	}

	job.UpdateProgress(30)
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}

	start := time.Now()
	sum := sha256.Sum256([]byte(text))
	data, hit, err := s.cache.GetOrLoad(ctx, narrationKeyPrefix+hex.EncodeToString(sum[:]), s.cfg.CacheTTL,
		func(ctx context.Context) (any, error) {
			speech, err := s.speech.Synthesize(ctx, text)
			if err != nil {
				return nil, err
			}
			wav, mime := audio.ToWAV(speech.Data, speech.MIMEType)
			return NarrationResult{
				AudioDataURI: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(wav)),
				MIMEType:     mime,
			}, nil
		})
	metrics.AssetGenerationDuration.WithLabelValues("narration").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AssetGenerationTotal.WithLabelValues("narration", job.Provider, "error").Inc()
		job.ErrorMessage = err.Error()
		if uerr := s.jobs.Update(ctx, job); uerr != nil {
			logger.Error(ctx, "failed to record narration error", uerr)
		}
		return fmt.Errorf("failed to synthesize chapter audio: %w", err)
	}
	metrics.AssetGenerationTotal.WithLabelValues("narration", job.Provider, "ok").Inc()

	var result NarrationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return s.fail(ctx, job, "invalid cached audio")
	}
	result.Cached = hit
	out, _ := json.Marshal(result)

	// 合成期间任务可能已被取消
	latest, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if latest != nil && latest.Status == entity.JobStatusCancelled {
		logger.Info(ctx, "narration job cancelled during synthesis")
		return nil
	}

	job.ErrorMessage = ""
	job.Complete(out)
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	metrics.NarrationJobsTotal.WithLabelValues(string(entity.JobStatusCompleted)).Inc()
	logger.Info(ctx, "narration job completed", "cached", hit, "duration_ms", job.DurationMs)
	return nil
}

// HandleDeadLetter 重试耗尽后将任务标记为失败
func (s *NarrationService) HandleDeadLetter(ctx context.Context, msg *messaging.NarrationJobMessage, cause error) {
	job, err := s.jobs.GetByID(ctx, msg.JobID)
	if err != nil || job == nil || job.IsFinished() {
		return
	}
	if err := s.fail(ctx, job, errors.ErrNarrationFailed.Message); err != nil {
		logger.Error(ctx, "failed to mark dead-lettered job", err, "job_id", job.ID)
	}
	logger.Warn(ctx, "narration job dead-lettered", "job_id", job.ID, "cause", fmt.Sprint(cause))
}

func (s *NarrationService) fail(ctx context.Context, job *entity.GenerationJob, reason string) error {
	job.Fail(reason)
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	metrics.NarrationJobsTotal.WithLabelValues(string(entity.JobStatusFailed)).Inc()
	logger.Warn(ctx, "narration job failed", "reason", reason)
	return nil
}
