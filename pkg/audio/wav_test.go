package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePCMFormat(t *testing.T) {
	f, ok := ParsePCMFormat("audio/L16;codec=pcm;rate=16000")
	require.True(t, ok)
	assert.Equal(t, 16000, f.SampleRate)
	assert.Equal(t, 1, f.Channels)

	f, ok = ParsePCMFormat("audio/L16")
	require.True(t, ok)
	assert.Equal(t, DefaultSampleRate, f.SampleRate)

	_, ok = ParsePCMFormat("audio/mpeg")
	assert.False(t, ok)
}

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	out := EncodeWAV(pcm, Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16})

	require.Len(t, out, 48)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(out[4:8]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(out[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(out[28:32]))
	assert.Equal(t, "data", string(out[36:40]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(out[40:44]))
	assert.Equal(t, pcm, out[44:])
}

func TestToWAV(t *testing.T) {
	out, mime := ToWAV([]byte{0, 0}, "audio/L16;codec=pcm;rate=24000")
	assert.Equal(t, "audio/wav", mime)
	assert.Len(t, out, 46)

	out, mime = ToWAV([]byte("mp3"), "audio/mpeg")
	assert.Equal(t, "audio/mpeg", mime)
	assert.Equal(t, []byte("mp3"), out)
}
