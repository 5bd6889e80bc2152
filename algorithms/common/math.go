package common

import (
	"gonum.org/v1/gonum/floats"
)

// Numeric helpers shared across the analysis packages, using gonum for the
// vector operations

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Linspace returns num evenly spaced values from start to stop inclusive
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return []float64{}
	}
	if num == 1 {
		return []float64{start}
	}

	values := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	// Pin the endpoint to avoid accumulated rounding drift
	values[num-1] = stop

	return values
}

// MixToMono averages multi-channel samples down to a single channel.
// Channels shorter than the first channel truncate the mix to the shortest length.
func MixToMono(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return []float64{}
	}

	if len(channels) == 1 {
		mono := make([]float64, len(channels[0]))
		copy(mono, channels[0])
		return mono
	}

	length := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < length {
			length = len(ch)
		}
	}

	mono := make([]float64, length)
	for _, ch := range channels {
		floats.Add(mono, ch[:length])
	}
	floats.Scale(1.0/float64(len(channels)), mono)

	return mono
}

// PeakAbs returns the largest absolute sample value
func PeakAbs(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	peak := floats.Max(signal)
	if low := -floats.Min(signal); low > peak {
		peak = low
	}
	return peak
}
