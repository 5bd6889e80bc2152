package spectrogram

import (
	"fmt"
	"math"

	"github.com/spectroview/spectroview/algorithms/axes"
	"github.com/spectroview/spectroview/algorithms/common"
	"github.com/spectroview/spectroview/algorithms/spectral"
	"github.com/spectroview/spectroview/algorithms/windowing"
	"github.com/spectroview/spectroview/logging"
)

// floorDB bounds the displayed dynamic range: amplitudes are floored at
// 10^(floorDB/20) before log conversion and clipped -floorDB below the peak
const floorDB = -120.0

// referenceWindowLength and referenceSampleRate anchor the amplitude
// normalization so dB ranges stay visually comparable across window sizes
// and sample rates
const (
	referenceWindowLength = 1024.0
	referenceSampleRate   = 48000.0
)

// Engine owns one decoded waveform and its derived spectral products. Window
// length and overlap changes rebuild the linear and mel stages; a mel bin
// count change rebuilds only the mel stage against the cached linear
// magnitudes. Instances are not safe for concurrent mutation.
type Engine struct {
	wav        []float64
	sampleRate int

	winLength int
	hopLength int
	fftSize   int
	nMel      int

	// Cached products. spec holds the scaled pre-dB magnitude spectrogram
	// that the mel stage re-reads on SetNMel.
	spec          [][]float64
	linearDB      [][]float64
	melDB         [][]float64
	tAxis         []float64
	fLinear       []float64
	fLinearLabels [][]string
	fMel          []float64
	fMelLabels    [][]string

	stft     *spectral.STFT
	melScale *spectral.MelScale

	// stftWorkers caps transform fan-out for the initial analysis only;
	// interactive recomputes run with the default heuristic
	stftWorkers int

	linearRecomputes int
	melRecomputes    int

	logger logging.Logger
}

// Option configures an Engine at construction
type Option func(*Engine)

// WithSTFTWorkers caps the transform goroutines used for the initial
// analysis. Batch dispatch uses this to share CPUs across concurrent files.
func WithSTFTWorkers(n int) Option {
	return func(e *Engine) {
		e.stftWorkers = n
	}
}

// WithLogger sets the engine's logger
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New builds an engine from channel-separated samples, mixing down to mono,
// and performs the full linear and mel analysis
func New(channels [][]float64, sampleRate int, params AnalysisParams, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", sampleRate, ErrInvalidSampleRate)
	}

	wav := common.MixToMono(channels)
	if len(wav) == 0 {
		return nil, ErrEmptyWaveform
	}

	if params.WindowMS <= 0 || params.Overlap < 1 || params.NMel <= 0 {
		return nil, fmt.Errorf("non-positive analysis parameters %+v", params)
	}

	e := &Engine{
		wav:        wav,
		sampleRate: sampleRate,
		nMel:       params.NMel,
		stft:       spectral.NewSTFT(),
		melScale:   spectral.NewMelScale(),
		logger:     logging.GetGlobalLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.winLength = int(math.RoundToEven(float64(sampleRate) * params.WindowMS / 1000.0))
	if e.winLength <= 0 {
		return nil, fmt.Errorf("window %v ms at %d Hz: %w", params.WindowMS, sampleRate, ErrInvalidWindowLength)
	}

	e.fftSize = common.NextPowerOfTwo(e.winLength)

	e.hopLength = int(math.RoundToEven(float64(e.winLength) / float64(params.Overlap)))
	if e.hopLength <= 0 {
		return nil, fmt.Errorf("overlap %d on window of %d samples: %w", params.Overlap, e.winLength, ErrInvalidHopLength)
	}

	if err := e.updateLinear(); err != nil {
		return nil, err
	}

	// The fan-out cap applies to the construction-time analysis only
	e.stftWorkers = 0

	return e, nil
}

// updateLinear rebuilds the STFT, the linear dB matrix and all axes, then
// cascades into the mel stage (which shares the STFT time framing)
func (e *Engine) updateLinear() error {
	result, err := e.stft.Compute(e.wav, spectral.Config{
		WindowLength: e.winLength,
		HopLength:    e.hopLength,
		FFTSize:      e.fftSize,
		SampleRate:   e.sampleRate,
		Window:       windowing.NewHann(e.winLength, false),
		MaxWorkers:   e.stftWorkers,
	})
	if err != nil {
		return fmt.Errorf("stft: %w", err)
	}

	// Normalize so different window sizes and sample rates land in a
	// comparable dB range
	gain := referenceWindowLength / float64(e.winLength) * float64(e.sampleRate) / referenceSampleRate
	for _, row := range result.Magnitude {
		for i := range row {
			row[i] *= gain
		}
	}

	e.spec = result.Magnitude
	e.linearDB = spectral.AmplitudeToDB(e.spec, floorDB)
	e.tAxis = axes.TimeAxis(result.TimeFrames, e.hopLength, e.sampleRate)
	e.fLinear = axes.LinearFrequencies(e.fftSize, e.sampleRate)
	e.fLinearLabels = axes.BroadcastLabels(axes.FreqLabels(e.fLinear), result.TimeFrames)
	e.linearRecomputes++

	e.logger.Debug("linear spectrogram rebuilt", logging.Fields{
		"frames":     result.TimeFrames,
		"bins":       result.FreqBins,
		"fft_size":   e.fftSize,
		"hop_length": e.hopLength,
	})

	e.updateMel()
	return nil
}

// updateMel reprojects the cached linear magnitudes through the mel
// filterbank. The linear products are left untouched.
func (e *Engine) updateMel() {
	filterBank := e.melScale.FilterBank(e.nMel, e.fftSize, e.sampleRate)
	mel := e.melScale.ApplyFilterBank(e.spec, filterBank)

	e.melDB = spectral.AmplitudeToDB(mel, floorDB)
	e.fMel = e.melScale.MelFrequencies(e.nMel, 0.0, float64(e.sampleRate/2))
	e.fMelLabels = axes.BroadcastLabels(axes.FreqLabels(e.fMel), len(e.tAxis))
	e.melRecomputes++
}

// SetOverlap re-derives the hop length. Two overlap values that round to the
// same hop length are equivalent and skip recomputation.
func (e *Engine) SetOverlap(overlap int) error {
	if overlap < 1 {
		return fmt.Errorf("overlap %d must be >= 1", overlap)
	}

	hopLength := int(math.RoundToEven(float64(e.winLength) / float64(overlap)))
	if hopLength == e.hopLength {
		return nil
	}
	if hopLength <= 0 {
		return fmt.Errorf("overlap %d on window of %d samples: %w", overlap, e.winLength, ErrInvalidHopLength)
	}

	e.hopLength = hopLength
	return e.updateLinear()
}

// SetWindowMS re-derives the window length and FFT size. The hop length is
// left as previously derived, so the effective overlap drifts until the next
// SetOverlap (known quirk, kept for parity with the stored-hop data model).
func (e *Engine) SetWindowMS(windowMS float64) error {
	if windowMS <= 0 {
		return fmt.Errorf("window length %v ms must be positive", windowMS)
	}

	winLength := int(math.RoundToEven(float64(e.sampleRate) * windowMS / 1000.0))
	if winLength == e.winLength {
		return nil
	}
	if winLength <= 0 {
		return fmt.Errorf("window %v ms at %d Hz: %w", windowMS, e.sampleRate, ErrInvalidWindowLength)
	}

	e.winLength = winLength
	e.fftSize = common.NextPowerOfTwo(winLength)
	return e.updateLinear()
}

// SetNMel rebuilds only the mel stage; the linear matrix and axes are reused
// as-is
func (e *Engine) SetNMel(nMel int) error {
	if nMel <= 0 {
		return fmt.Errorf("n_mel %d must be positive", nMel)
	}

	if nMel == e.nMel {
		return nil
	}

	e.nMel = nMel
	e.updateMel()
	return nil
}

// Waveform returns the mono waveform. Callers must treat it as read-only.
func (e *Engine) Waveform() []float64 {
	return e.wav
}

// SampleRate returns the waveform sample rate in Hz
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// FFTSize returns the current transform size (power of two >= window length)
func (e *Engine) FFTSize() int {
	return e.fftSize
}

// WindowLength returns the analysis window length in samples
func (e *Engine) WindowLength() int {
	return e.winLength
}

// HopLength returns the distance between consecutive frames in samples
func (e *Engine) HopLength() int {
	return e.hopLength
}

// Overlap derives the current overlap back from the stored hop length. After
// SetOverlap this may differ from the value passed in (lossy rounding).
func (e *Engine) Overlap() int {
	return int(math.RoundToEven(float64(e.winLength) / float64(e.hopLength)))
}

// WindowMS derives the current window length in milliseconds
func (e *Engine) WindowMS() int {
	return int(math.RoundToEven(float64(e.winLength) * 1000.0 / float64(e.sampleRate)))
}

// NMel returns the mel filterbank count
func (e *Engine) NMel() int {
	return e.nMel
}

// PeakAmplitude returns the largest absolute sample value, used for shared
// waveform y-range scaling
func (e *Engine) PeakAmplitude() float64 {
	return common.PeakAbs(e.wav)
}

// TimeAxis returns the timestamp of each frame in seconds
func (e *Engine) TimeAxis() []float64 {
	return e.tAxis
}

// LinearDB returns the linear spectrogram in dB, bin-major
func (e *Engine) LinearDB() [][]float64 {
	return e.linearDB
}

// MelDB returns the mel spectrogram in dB, bin-major
func (e *Engine) MelDB() [][]float64 {
	return e.melDB
}

// LinearFrequencies returns the linear frequency axis in Hz
func (e *Engine) LinearFrequencies() []float64 {
	return e.fLinear
}

// MelFrequencies returns the mel frequency axis in Hz
func (e *Engine) MelFrequencies() []float64 {
	return e.fMel
}

// LinearLabels returns tooltip labels shaped like LinearDB
func (e *Engine) LinearLabels() [][]string {
	return e.fLinearLabels
}

// MelLabels returns tooltip labels shaped like MelDB
func (e *Engine) MelLabels() [][]string {
	return e.fMelLabels
}

// LinearRecomputes counts full linear+mel rebuilds since construction
// (including the initial one)
func (e *Engine) LinearRecomputes() int {
	return e.linearRecomputes
}

// MelRecomputes counts mel stage rebuilds since construction (including the
// initial one)
func (e *Engine) MelRecomputes() int {
	return e.melRecomputes
}
