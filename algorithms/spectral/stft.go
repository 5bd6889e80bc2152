package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"
)

// STFT provides Short-Time Fourier Transform functionality with centered
// framing: the signal is reflect-padded by FFTSize/2 on both ends so frame t
// is centered on sample t*HopLength, and the analysis window is zero-padded
// symmetrically from WindowLength up to FFTSize.
type STFT struct {
	fft *FFT
}

// Config holds the framing parameters for one STFT computation
type Config struct {
	WindowLength int    // analysis window length in samples
	HopLength    int    // samples between consecutive frames
	FFTSize      int    // transform size, must be >= WindowLength
	SampleRate   int    // sample rate in Hz
	Window       Window // window function applied to each frame
	MaxWorkers   int    // cap on frame-processing goroutines; 0 uses the CPU heuristic
}

// STFTResult holds the result of STFT analysis. The magnitude matrix is
// bin-major ([frequency bin][time frame]) so each row maps directly onto a
// heatmap row.
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Frequency x Time magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowLength   int         `json:"window_length"`   // Analysis window length
	FFTSize        int         `json:"fft_size"`        // Transform size
	HopLength      int         `json:"hop_length"`      // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute computes a centered magnitude STFT with parallel frame processing
func (s *STFT) Compute(signal []float64, cfg Config) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if cfg.WindowLength <= 0 {
		return nil, fmt.Errorf("window length must be positive")
	}

	if cfg.HopLength <= 0 {
		return nil, fmt.Errorf("hop length must be positive")
	}

	if cfg.FFTSize < cfg.WindowLength {
		return nil, fmt.Errorf("fft size (%d) smaller than window length (%d)", cfg.FFTSize, cfg.WindowLength)
	}

	// Centered framing: one frame per hop, first frame centered on sample 0
	numFrames := len(signal)/cfg.HopLength + 1
	freqBins := cfg.FFTSize/2 + 1

	padded := reflectPad(signal, cfg.FFTSize/2)

	magnitude := make([][]float64, freqBins)
	for i := range magnitude {
		magnitude[i] = make([]float64, numFrames)
	}

	// The window sits centered inside the FFT frame, zero elsewhere
	windowOffset := (cfg.FFTSize - cfg.WindowLength) / 2

	numWorkers := optimalWorkerCount(numFrames, cfg.MaxWorkers)

	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, cfg.FFTSize)

			for frameIdx := range jobs {
				start := frameIdx * cfg.HopLength

				for i := range frameBuffer {
					frameBuffer[i] = 0.0
				}
				copy(frameBuffer[windowOffset:windowOffset+cfg.WindowLength],
					padded[start+windowOffset:start+windowOffset+cfg.WindowLength])

				if cfg.Window != nil {
					if err := cfg.Window.ApplyInPlace(frameBuffer[windowOffset : windowOffset+cfg.WindowLength]); err != nil {
						continue
					}
				}

				fftResult := s.fft.Compute(frameBuffer)

				// Keep positive frequencies only
				for bin := 0; bin < freqBins; bin++ {
					magnitude[bin][frameIdx] = cmplx.Abs(fftResult[bin])
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
			jobs <- frameIdx
		}
	}()

	wg.Wait()

	result := &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     cfg.SampleRate,
		WindowLength:   cfg.WindowLength,
		FFTSize:        cfg.FFTSize,
		HopLength:      cfg.HopLength,
		FreqResolution: float64(cfg.SampleRate) / float64(cfg.FFTSize),
		TimeResolution: float64(cfg.HopLength) / float64(cfg.SampleRate),
	}

	return result, nil
}

// reflectPad pads the signal by pad samples on both ends, mirroring around the
// first and last samples without repeating them
func reflectPad(signal []float64, pad int) []float64 {
	n := len(signal)
	padded := make([]float64, n+2*pad)

	for i := range padded {
		padded[i] = signal[reflectIndex(i-pad, n)]
	}

	return padded
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}

	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}

	return i
}

// optimalWorkerCount determines the number of frame workers based on workload.
// maxWorkers caps the count so concurrent analyses don't oversubscribe the CPUs.
func optimalWorkerCount(numFrames, maxWorkers int) int {
	numCPU := runtime.NumCPU()

	var workers int
	switch {
	case numFrames < 100:
		workers = min(numCPU/2, numFrames)
	case numFrames < 1000:
		workers = min(numCPU, 8)
	default:
		workers = numCPU
	}

	if maxWorkers > 0 {
		workers = min(workers, maxWorkers)
	}

	return max(workers, 1)
}
