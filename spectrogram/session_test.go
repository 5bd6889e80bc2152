package spectrogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionApplyMutatesInPlace(t *testing.T) {
	session := NewSession()

	first := testEngine(t, 48000, AnalysisParams{WindowMS: 40, Overlap: 4, NMel: 128})
	second := testEngine(t, 44100, AnalysisParams{WindowMS: 40, Overlap: 4, NMel: 128})
	session.Add("a.wav", first)
	session.Add("b.flac", second)

	require.Equal(t, 2, session.Len())
	require.Equal(t, []string{"a.wav", "b.flac"}, session.Names())

	err := session.Apply(AnalysisParams{WindowMS: 20, Overlap: 8, NMel: 64})
	require.NoError(t, err)

	// Same engine instances, new parameters, no re-ingestion
	assert.Same(t, first, session.Engines()[0])
	assert.Same(t, second, session.Engines()[1])

	for _, engine := range session.Engines() {
		assert.Equal(t, 20, engine.WindowMS())
		assert.Equal(t, 8, engine.Overlap())
		assert.Equal(t, 64, engine.NMel())
	}
}

func TestSessionApplySkipsUnsetNMel(t *testing.T) {
	session := NewSession()
	engine := testEngine(t, 48000, AnalysisParams{WindowMS: 40, Overlap: 4, NMel: 128})
	session.Add("a.wav", engine)

	require.NoError(t, session.Apply(AnalysisParams{WindowMS: 40, Overlap: 4}))

	assert.Equal(t, 128, engine.NMel())
}

func TestSessionApplyMinimalRecompute(t *testing.T) {
	session := NewSession()
	engine := testEngine(t, 48000, AnalysisParams{WindowMS: 40, Overlap: 4, NMel: 128})
	session.Add("a.wav", engine)

	// Only the mel count changes: the linear stage must not rebuild
	require.NoError(t, session.Apply(AnalysisParams{WindowMS: 40, Overlap: 4, NMel: 32}))

	assert.Equal(t, 1, engine.LinearRecomputes())
	assert.Equal(t, 2, engine.MelRecomputes())
}

func TestSessionApplyPropagatesFailure(t *testing.T) {
	session := NewSession()
	engine := testEngine(t, 10000, AnalysisParams{WindowMS: 10, Overlap: 4, NMel: 20})
	session.Add("a.wav", engine)

	err := session.Apply(AnalysisParams{WindowMS: 10, Overlap: 1000, NMel: 20})
	assert.ErrorIs(t, err, ErrInvalidHopLength)
}

func TestSessionClear(t *testing.T) {
	session := NewSession()
	session.Add("a.wav", testEngine(t, 48000, DefaultAnalysisParams()))

	session.Clear()

	assert.Zero(t, session.Len())
	assert.Empty(t, session.Engines())
}
