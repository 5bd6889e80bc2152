package transcode

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmBytes(samples ...float64) []byte {
	data := make([]byte, 8*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(s))
	}
	return data
}

func TestDeinterleaveStereo(t *testing.T) {
	// Interleaved L R L R
	data := pcmBytes(0.1, -0.1, 0.2, -0.2)

	audio, err := deinterleave(data, 2, 48000)
	require.NoError(t, err)

	require.Len(t, audio.Channels, 2)
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, audio.Channels[0], 1e-12)
	assert.InDeltaSlice(t, []float64{-0.1, -0.2}, audio.Channels[1], 1e-12)
	assert.Equal(t, 48000, audio.SampleRate)
}

func TestDeinterleaveMono(t *testing.T) {
	data := pcmBytes(0.5, 0.25, -0.5, -0.25)

	audio, err := deinterleave(data, 1, 8000)
	require.NoError(t, err)

	require.Len(t, audio.Channels, 1)
	assert.InDeltaSlice(t, []float64{0.5, 0.25, -0.5, -0.25}, audio.Channels[0], 1e-12)
	assert.Equal(t, 500*time.Microsecond, audio.Duration)
}

func TestDeinterleaveErrors(t *testing.T) {
	_, err := deinterleave([]byte{1, 2, 3}, 1, 8000)
	assert.Error(t, err)

	_, err = deinterleave(nil, 2, 8000)
	assert.Error(t, err)
}

func TestDecodeEmptyInput(t *testing.T) {
	decoder := NewDecoder(nil)

	_, _, err := decoder.DecodeBytes(context.Background(), nil, "empty.wav")
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestDefaultDecoderConfig(t *testing.T) {
	config := DefaultDecoderConfig()

	assert.Equal(t, "ffmpeg", config.FFmpegPath)
	assert.Equal(t, "ffprobe", config.FFprobePath)
	assert.Positive(t, config.Timeout)
}
