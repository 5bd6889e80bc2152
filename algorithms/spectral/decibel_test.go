package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmplitudeToDBFloorsAtAmin(t *testing.T) {
	db := AmplitudeToDB([][]float64{{1.0, 1e-12}}, -120)

	require.Len(t, db, 1)
	assert.InDelta(t, 0.0, db[0][0], 1e-9)
	// 1e-12 floors at amin=1e-6 -> -120 dB, inside the top_db range
	assert.InDelta(t, -120.0, db[0][1], 1e-9)
}

func TestAmplitudeToDBCapsDynamicRange(t *testing.T) {
	// Peak at 140 dB, so anything below 20 dB is clamped to peak-120
	db := AmplitudeToDB([][]float64{{1e7, 1.0}}, -120)

	assert.InDelta(t, 140.0, db[0][0], 1e-9)
	assert.InDelta(t, 20.0, db[0][1], 1e-9)
}

func TestAmplitudeToDBAllSilence(t *testing.T) {
	db := AmplitudeToDB([][]float64{{0, 0}, {0, 0}}, -120)

	for _, row := range db {
		for _, v := range row {
			assert.InDelta(t, -120.0, v, 1e-9)
		}
	}
}

func TestPowerToDB(t *testing.T) {
	db := PowerToDB([][]float64{{1.0, 0.01, 1e-30}}, -120)

	assert.InDelta(t, 0.0, db[0][0], 1e-9)
	assert.InDelta(t, -20.0, db[0][1], 1e-9)
	// Floors at amin=1e-12 -> -120 dB
	assert.InDelta(t, -120.0, db[0][2], 1e-9)
}

func TestToDBEmpty(t *testing.T) {
	assert.Empty(t, AmplitudeToDB(nil, -120))
}
