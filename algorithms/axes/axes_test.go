package axes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAxis(t *testing.T) {
	axis := TimeAxis(4, 480, 48000)

	require.Len(t, axis, 4)
	assert.InDeltaSlice(t, []float64{0, 0.01, 0.02, 0.03}, axis, 1e-12)
}

func TestTimeAxisDegenerate(t *testing.T) {
	assert.Empty(t, TimeAxis(0, 480, 48000))
	assert.Empty(t, TimeAxis(4, 480, 0))
}

func TestLinearFrequencies(t *testing.T) {
	freqs := LinearFrequencies(2048, 48000)

	require.Len(t, freqs, 1025)
	assert.Equal(t, 0.0, freqs[0])
	assert.Equal(t, 24000.0, freqs[1024])
}

func TestLinearFrequenciesOddRate(t *testing.T) {
	// Nyquist is truncated to an integer before spacing
	freqs := LinearFrequencies(1024, 44101)

	require.Len(t, freqs, 513)
	assert.Equal(t, 22050.0, freqs[512])
}

func TestFreqLabels(t *testing.T) {
	labels := FreqLabels([]float64{0, 440, 999.4, 1000, 1500, 22050})

	assert.Equal(t, []string{"0", "440", "999", "1.00k", "1.50k", "22.05k"}, labels)
}

func TestBroadcastLabels(t *testing.T) {
	tiled := BroadcastLabels([]string{"0", "1.00k"}, 3)

	require.Len(t, tiled, 2)
	assert.Equal(t, []string{"0", "0", "0"}, tiled[0])
	assert.Equal(t, []string{"1.00k", "1.00k", "1.00k"}, tiled[1])
}
