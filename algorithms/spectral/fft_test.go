package spectral

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFTComputeDC(t *testing.T) {
	f := NewFFT()

	result := f.Compute([]float64{1, 1, 1, 1, 1, 1, 1, 1})

	require.Len(t, result, 8)
	assert.InDelta(t, 8.0, cmplx.Abs(result[0]), 1e-9)
	for i := 1; i < 8; i++ {
		assert.InDelta(t, 0.0, cmplx.Abs(result[i]), 1e-9)
	}
}

func TestFFTInverseRoundTrip(t *testing.T) {
	f := NewFFT()
	signal := []float64{0.5, -0.25, 0.75, 0.0, -1.0, 0.25, 0.3, -0.6}

	restored := f.ComputeInverseReal(f.Compute(signal))

	require.Len(t, restored, len(signal))
	assert.InDeltaSlice(t, signal, restored, 1e-9)
}

func TestFFTEmpty(t *testing.T) {
	f := NewFFT()

	assert.Empty(t, f.Compute(nil))
	assert.Empty(t, f.ComputeInverseReal(nil))
}
