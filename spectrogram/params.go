package spectrogram

import (
	"fmt"
	"slices"
)

// Parameter choices offered by the control surface. The engine itself only
// re-checks positivity; membership in these sets is the caller's contract.
var (
	WindowChoicesMS = []float64{5, 10, 20, 30, 40, 50, 80, 160}
	OverlapChoices  = []int{2, 4, 8, 16}
)

// MinNMel is the smallest accepted mel filterbank count
const MinNMel = 10

// AnalysisParams holds the shared spectrogram parameters applied to every
// loaded file
type AnalysisParams struct {
	WindowMS float64 `json:"window_ms"` // analysis window length in milliseconds
	Overlap  int     `json:"overlap"`   // window/hop ratio
	NMel     int     `json:"n_mel"`     // mel filterbank count
}

// DefaultAnalysisParams returns the parameter set selected at startup
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		WindowMS: 40,
		Overlap:  4,
		NMel:     128,
	}
}

// Validate checks the params against the control surface's choice sets
func (p AnalysisParams) Validate() error {
	if !slices.Contains(WindowChoicesMS, p.WindowMS) {
		return fmt.Errorf("window length %v ms not in %v", p.WindowMS, WindowChoicesMS)
	}

	if !slices.Contains(OverlapChoices, p.Overlap) {
		return fmt.Errorf("overlap %d not in %v", p.Overlap, OverlapChoices)
	}

	if p.NMel < MinNMel {
		return fmt.Errorf("n_mel %d below minimum %d", p.NMel, MinNMel)
	}

	return nil
}
