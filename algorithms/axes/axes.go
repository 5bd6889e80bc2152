package axes

import (
	"fmt"

	"github.com/spectroview/spectroview/algorithms/common"
)

// Axis generation for spectrogram display: one time value per analysis frame,
// one frequency value per bin, and the matching tooltip label strings.

// TimeAxis returns the timestamp in seconds of each analysis frame
func TimeAxis(numFrames, hopLength, sampleRate int) []float64 {
	if numFrames <= 0 || sampleRate <= 0 {
		return []float64{}
	}

	axis := make([]float64, numFrames)
	for i := range axis {
		axis[i] = float64(i*hopLength) / float64(sampleRate)
	}

	return axis
}

// LinearFrequencies returns fftSize/2+1 evenly spaced frequencies from 0 Hz
// up to the (truncated) Nyquist frequency
func LinearFrequencies(fftSize, sampleRate int) []float64 {
	if fftSize <= 0 {
		return []float64{}
	}

	return common.Linspace(0.0, float64(sampleRate/2), fftSize/2+1)
}

// FreqLabels formats frequencies for tooltips: plain Hz below 1 kHz,
// otherwise "X.XXk"
func FreqLabels(freqs []float64) []string {
	labels := make([]string, len(freqs))
	for i, f := range freqs {
		if f < 1000.0 {
			labels[i] = fmt.Sprintf("%.0f", f)
		} else {
			labels[i] = fmt.Sprintf("%.2fk", f/1000.0)
		}
	}

	return labels
}

// BroadcastLabels tiles per-bin labels across all time frames, matching the
// shape of the spectrogram matrix they annotate
func BroadcastLabels(labels []string, numFrames int) [][]string {
	tiled := make([][]string, len(labels))
	for i, label := range labels {
		tiled[i] = make([]string, numFrames)
		for t := range tiled[i] {
			tiled[i][t] = label
		}
	}

	return tiled
}
