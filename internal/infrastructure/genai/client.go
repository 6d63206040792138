// Package genai 封装 Google GenAI 的 Imagen 封面生成与 Gemini TTS 朗读
package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/workflow/port"
	apptrace "bookhatch-api/pkg/tracer"
)

var tracer = otel.Tracer("genai")

const (
	defaultImageModel = "imagen-3.0-generate-002"
	defaultTTSModel   = "gemini-2.5-flash-preview-tts"
	defaultVoice      = "Algenib"
	coverAspectRatio  = "3:4"
)

// ErrEmptyResponse 响应中没有可用的图片或音频
var ErrEmptyResponse = errors.New("genai returned no content")

// Client GenAI 客户端
type Client struct {
	client     *genai.Client
	imageModel string
	ttsModel   string
	voice      string
	timeout    time.Duration
}

// NewClient 创建 GenAI 客户端
func NewClient(ctx context.Context, cfg *config.GenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		client:     client,
		imageModel: cfg.ImageModel,
		ttsModel:   cfg.TTSModel,
		voice:      cfg.Voice,
		timeout:    cfg.Timeout,
	}
	if c.imageModel == "" {
		c.imageModel = defaultImageModel
	}
	if c.ttsModel == "" {
		c.ttsModel = defaultTTSModel
	}
	if c.voice == "" {
		c.voice = defaultVoice
	}
	return c, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GenerateImage 生成一张 3:4 封面
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*port.Image, error) {
	ctx, span := tracer.Start(ctx, "genai.GenerateImage",
		trace.WithAttributes(attribute.String("genai.model", c.imageModel)))
	defer span.End()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    coverAspectRatio,
	})
	if err != nil {
		apptrace.RecordError(span, err)
		return nil, fmt.Errorf("genai generate images failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		apptrace.RecordError(span, ErrEmptyResponse)
		return nil, ErrEmptyResponse
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &port.Image{Data: img.ImageBytes, MIMEType: mime}, nil
}

// Synthesize 将文本合成为语音，返回 PCM 数据
func (c *Client) Synthesize(ctx context.Context, text string) (*port.Speech, error) {
	ctx, span := tracer.Start(ctx, "genai.Synthesize",
		trace.WithAttributes(
			attribute.String("genai.model", c.ttsModel),
			attribute.Int("genai.text_runes", len([]rune(text))),
		))
	defer span.End()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.ttsModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	})
	if err != nil {
		apptrace.RecordError(span, err)
		return nil, fmt.Errorf("genai text to speech failed: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &port.Speech{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	apptrace.RecordError(span, ErrEmptyResponse)
	return nil, ErrEmptyResponse
}
