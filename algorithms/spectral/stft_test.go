package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectroview/spectroview/algorithms/windowing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestSTFTShape(t *testing.T) {
	s := NewSTFT()

	result, err := s.Compute(sine(440, 48000, 4800), Config{
		WindowLength: 480,
		HopLength:    120,
		FFTSize:      512,
		SampleRate:   48000,
		Window:       windowing.NewHann(480, false),
	})

	require.NoError(t, err)
	assert.Equal(t, 4800/120+1, result.TimeFrames)
	assert.Equal(t, 257, result.FreqBins)
	require.Len(t, result.Magnitude, 257)
	for _, row := range result.Magnitude {
		require.Len(t, row, result.TimeFrames)
	}
	assert.InDelta(t, 48000.0/512.0, result.FreqResolution, 1e-9)
	assert.InDelta(t, 120.0/48000.0, result.TimeResolution, 1e-9)
}

func TestSTFTSinePeakBin(t *testing.T) {
	s := NewSTFT()

	// 1 kHz lands exactly on bin 32 with a 256-point transform at 8 kHz
	result, err := s.Compute(sine(1000, 8000, 2048), Config{
		WindowLength: 256,
		HopLength:    64,
		FFTSize:      256,
		SampleRate:   8000,
		Window:       windowing.NewHann(256, false),
	})
	require.NoError(t, err)

	frame := result.TimeFrames / 2
	peakBin := 0
	for bin := 0; bin < result.FreqBins; bin++ {
		if result.Magnitude[bin][frame] > result.Magnitude[peakBin][frame] {
			peakBin = bin
		}
	}

	assert.Equal(t, 32, peakBin)
}

func TestSTFTWorkerCapMatchesDefault(t *testing.T) {
	s := NewSTFT()
	signal := sine(500, 16000, 3200)

	cfg := Config{
		WindowLength: 320,
		HopLength:    80,
		FFTSize:      512,
		SampleRate:   16000,
		Window:       windowing.NewHann(320, false),
	}

	unbounded, err := s.Compute(signal, cfg)
	require.NoError(t, err)

	cfg.MaxWorkers = 1
	bounded, err := s.Compute(signal, cfg)
	require.NoError(t, err)

	require.Equal(t, unbounded.TimeFrames, bounded.TimeFrames)
	for bin := range unbounded.Magnitude {
		assert.InDeltaSlice(t, unbounded.Magnitude[bin], bounded.Magnitude[bin], 1e-12)
	}
}

func TestSTFTErrors(t *testing.T) {
	s := NewSTFT()
	cfg := Config{WindowLength: 64, HopLength: 16, FFTSize: 64, SampleRate: 8000}

	_, err := s.Compute(nil, cfg)
	assert.Error(t, err)

	bad := cfg
	bad.HopLength = 0
	_, err = s.Compute(sine(100, 8000, 256), bad)
	assert.Error(t, err)

	bad = cfg
	bad.WindowLength = 0
	_, err = s.Compute(sine(100, 8000, 256), bad)
	assert.Error(t, err)

	bad = cfg
	bad.FFTSize = 32
	_, err = s.Compute(sine(100, 8000, 256), bad)
	assert.Error(t, err)
}

func TestReflectPad(t *testing.T) {
	padded := reflectPad([]float64{1, 2, 3, 4}, 2)

	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 3, 2}, padded)
}

func TestReflectPadShortSignal(t *testing.T) {
	// Padding wider than the signal keeps bouncing between the ends
	padded := reflectPad([]float64{1, 2}, 3)

	assert.Len(t, padded, 8)
	for _, v := range padded {
		assert.Contains(t, []float64{1, 2}, v)
	}

	assert.Equal(t, []float64{5, 5, 5}, reflectPad([]float64{5}, 1))
}
