package port

import "context"

// Image 生成的图片
type Image struct {
	Data     []byte
	MIMEType string
}

// Speech 合成的音频，MIMEType 形如 audio/L16;codec=pcm;rate=24000
type Speech struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator 文生图
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// SpeechSynthesizer 文本转语音
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*Speech, error)
}
