// Package audio 将 TTS 返回的原始 PCM 封装为 WAV
package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

// PCM 默认参数：16 位、24kHz、单声道
const (
	DefaultSampleRate    = 24000
	DefaultChannels      = 1
	DefaultBitsPerSample = 16
)

// Format PCM 格式
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// ParsePCMFormat 解析 audio/L16;codec=pcm;rate=24000 形式的 MIME，非 PCM 返回 false
func ParsePCMFormat(mime string) (Format, bool) {
	f := Format{SampleRate: DefaultSampleRate, Channels: DefaultChannels, BitsPerSample: DefaultBitsPerSample}

	parts := strings.Split(mime, ";")
	base := strings.ToLower(strings.TrimSpace(parts[0]))
	if base != "audio/l16" && base != "audio/pcm" {
		return f, false
	}
	for _, p := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			continue
		}
		switch strings.ToLower(key) {
		case "rate":
			f.SampleRate = n
		case "channels":
			f.Channels = n
		}
	}
	return f, true
}

// EncodeWAV 为小端 PCM 数据加上 44 字节的 RIFF 头
func EncodeWAV(pcm []byte, f Format) []byte {
	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// ToWAV PCM 数据封装为 WAV，其他格式原样返回
func ToWAV(data []byte, mime string) ([]byte, string) {
	f, ok := ParsePCMFormat(mime)
	if !ok {
		if mime == "" {
			mime = "application/octet-stream"
		}
		return data, mime
	}
	return EncodeWAV(data, f), "audio/wav"
}
