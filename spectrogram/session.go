package spectrogram

import (
	"github.com/spectroview/spectroview/logging"
)

// Session holds the ordered set of engines for one request scope. It replaces
// ambient shared state: batch loading and parameter changes both operate on
// an explicit session.
type Session struct {
	names   []string
	engines []*Engine
	logger  logging.Logger
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{
		logger: logging.GetGlobalLogger(),
	}
}

// Add appends an engine under a display name, preserving load order
func (s *Session) Add(name string, engine *Engine) {
	s.names = append(s.names, name)
	s.engines = append(s.engines, engine)
}

// Len returns the number of loaded engines
func (s *Session) Len() int {
	return len(s.engines)
}

// Names returns the display names in load order
func (s *Session) Names() []string {
	return s.names
}

// Engines returns the engines in load order
func (s *Session) Engines() []*Engine {
	return s.engines
}

// Apply mutates every engine in place with the shared parameters. No
// re-decode or re-dispatch happens; each engine recomputes only the stages
// the change invalidates. The first loud failure aborts and is returned.
func (s *Session) Apply(params AnalysisParams) error {
	for i, engine := range s.engines {
		if err := engine.SetWindowMS(params.WindowMS); err != nil {
			return err
		}
		if err := engine.SetOverlap(params.Overlap); err != nil {
			return err
		}
		if params.NMel > 0 {
			if err := engine.SetNMel(params.NMel); err != nil {
				return err
			}
		}

		s.logger.Debug("parameters applied", logging.Fields{
			"file":     s.names[i],
			"fft_size": engine.FFTSize(),
		})
	}

	return nil
}

// Clear drops all engines, ending their lifecycle for this session
func (s *Session) Clear() {
	s.names = nil
	s.engines = nil
}
