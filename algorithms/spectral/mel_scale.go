package spectral

import (
	"math"
)

// Slaney mel scale constants: linear spacing below the break frequency,
// logarithmic above it
const (
	melFreqStep  = 200.0 / 3.0
	melBreakHz   = 1000.0
	melBreakMels = melBreakHz / melFreqStep
)

var melLogStep = math.Log(6.4) / 27.0

// MelScale provides mel frequency conversion utilities using the Slaney
// auditory toolbox formulation
type MelScale struct {
	// No state needed - pure conversions
}

// NewMelScale creates a new mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// HzToMel converts frequency in Hz to mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	if hz < melBreakHz {
		return hz / melFreqStep
	}
	return melBreakMels + math.Log(hz/melBreakHz)/melLogStep
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	if mel < melBreakMels {
		return mel * melFreqStep
	}
	return melBreakHz * math.Exp(melLogStep*(mel-melBreakMels))
}

// MelFrequencies returns n center frequencies evenly spaced on the mel scale
// between lowFreq and highFreq inclusive
func (ms *MelScale) MelFrequencies(n int, lowFreq, highFreq float64) []float64 {
	if n <= 0 {
		return []float64{}
	}

	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)

	freqs := make([]float64, n)
	if n == 1 {
		freqs[0] = lowFreq
		return freqs
	}

	melStep := (highMel - lowMel) / float64(n-1)
	for i := range freqs {
		freqs[i] = ms.MelToHz(lowMel + float64(i)*melStep)
	}

	return freqs
}

// FilterBank creates a mel filter bank of shape [numFilters][fftSize/2+1]
// spanning 0 Hz to Nyquist. Filters are triangular in the Hz domain and
// area-normalized so each row integrates to roughly constant energy.
func (ms *MelScale) FilterBank(numFilters, fftSize, sampleRate int) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 {
		return nil
	}

	numBins := fftSize/2 + 1
	nyquist := float64(sampleRate) / 2.0

	// Bin center frequencies and mel band edges
	fftFreqs := make([]float64, numBins)
	for i := range fftFreqs {
		fftFreqs[i] = float64(i) * nyquist / float64(numBins-1)
	}

	melFreqs := ms.MelFrequencies(numFilters+2, 0.0, nyquist)

	filterBank := make([][]float64, numFilters)
	for m := range filterBank {
		filterBank[m] = make([]float64, numBins)

		lower := melFreqs[m]
		center := melFreqs[m+1]
		upper := melFreqs[m+2]

		for k, f := range fftFreqs {
			rising := (f - lower) / (center - lower)
			falling := (upper - f) / (upper - center)

			weight := math.Min(rising, falling)
			if weight > 0 {
				filterBank[m][k] = weight
			}
		}

		// Slaney-style area normalization
		enorm := 2.0 / (upper - lower)
		for k := range filterBank[m] {
			filterBank[m][k] *= enorm
		}
	}

	return filterBank
}

// ApplyFilterBank projects a bin-major spectrogram [freqBins][timeFrames]
// through the filter bank, producing [numFilters][timeFrames]
func (ms *MelScale) ApplyFilterBank(spectrogram [][]float64, filterBank [][]float64) [][]float64 {
	if len(filterBank) == 0 || len(spectrogram) == 0 {
		return [][]float64{}
	}

	numFrames := len(spectrogram[0])

	melSpectrogram := make([][]float64, len(filterBank))
	for m, filter := range filterBank {
		melSpectrogram[m] = make([]float64, numFrames)

		for k := 0; k < len(filter) && k < len(spectrogram); k++ {
			weight := filter[k]
			if weight == 0 {
				continue
			}
			row := spectrogram[k]
			for t := range melSpectrogram[m] {
				melSpectrogram[m][t] += weight * row[t]
			}
		}
	}

	return melSpectrogram
}
