package spectrogram

import "errors"

// Construction fails fast on these; parameter mutations that derive an
// unusable framing also fail loudly since they indicate a caller contract
// violation rather than bad input data.
var (
	ErrEmptyWaveform       = errors.New("empty waveform")
	ErrInvalidSampleRate   = errors.New("sample rate must be positive")
	ErrInvalidWindowLength = errors.New("derived window length must be positive")
	ErrInvalidHopLength    = errors.New("derived hop length must be positive")
)
