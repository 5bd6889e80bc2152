package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"time"

	"github.com/spectroview/spectroview/logging"
)

// ErrDecodeFailed wraps every decode failure so callers can classify
// per-file errors without inspecting ffmpeg output
var ErrDecodeFailed = errors.New("audio decode failed")

// AudioData represents decoded audio: channel-separated float64 PCM at the
// file's native sample rate
type AudioData struct {
	Channels   [][]float64   `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Duration   time.Duration `json:"duration"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath  string        `json:"ffmpeg_path"`  // Path to ffmpeg binary
	FFprobePath string        `json:"ffprobe_path"` // Path to ffprobe binary
	Timeout     time.Duration `json:"timeout"`      // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg",  // Assume in PATH
		FFprobePath: "ffprobe", // Assume in PATH
		Timeout:     30 * time.Second,
	}
}

// Decoder handles audio decoding using FFmpeg. The analysis core never
// parses container or codec formats itself.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder; a nil config uses defaults
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}

	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "transcode"}),
	}
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// probe reads the sample rate and channel count of the first audio stream
func (d *Decoder) probe(ctx context.Context, data []byte) (sampleRate, channels int, err error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		"pipe:0",
	}

	cmd := exec.CommandContext(ctx, d.config.FFprobePath, args...)
	cmd.Stdin = bytes.NewReader(data)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return 0, 0, fmt.Errorf("ffprobe output: %w", err)
	}

	for _, stream := range probed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if _, err := fmt.Sscanf(stream.SampleRate, "%d", &sampleRate); err != nil {
			return 0, 0, fmt.Errorf("sample rate %q: %w", stream.SampleRate, err)
		}
		return sampleRate, stream.Channels, nil
	}

	return 0, 0, fmt.Errorf("no audio stream found")
}

// Decode converts opaque encoded bytes to channel-separated PCM at the
// file's native sample rate and channel layout
func (d *Decoder) Decode(ctx context.Context, data []byte, filename string) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input %q", ErrDecodeFailed, filename)
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	sampleRate, channels, err := d.probe(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, filename, err)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %s: unusable stream (sr=%d, channels=%d)", ErrDecodeFailed, filename, sampleRate, channels)
	}

	args := []string{
		"-i", "pipe:0",
		"-f", "f64le", // Raw float64 little-endian
		"-acodec", "pcm_f64le",
		"-v", "quiet",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	cmd.Stdin = bytes.NewReader(data)

	pcm, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s: ffmpeg: %s", ErrDecodeFailed, filename, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("%w: %s: ffmpeg: %v", ErrDecodeFailed, filename, err)
	}

	audio, err := deinterleave(pcm, channels, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, filename, err)
	}

	d.logger.Debug("decoded audio", logging.Fields{
		"file":        filename,
		"sample_rate": audio.SampleRate,
		"channels":    len(audio.Channels),
		"duration":    audio.Duration,
	})

	return audio, nil
}

// DecodeBytes implements the batch ingestion boundary
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte, filename string) ([][]float64, int, error) {
	audio, err := d.Decode(ctx, data, filename)
	if err != nil {
		return nil, 0, err
	}

	return audio.Channels, audio.SampleRate, nil
}

// deinterleave splits interleaved f64le PCM into per-channel sample slices
func deinterleave(pcm []byte, channels, sampleRate int) (*AudioData, error) {
	if len(pcm)%8 != 0 {
		return nil, fmt.Errorf("pcm length %d not a multiple of 8", len(pcm))
	}

	totalSamples := len(pcm) / 8
	frames := totalSamples / channels
	if frames == 0 {
		return nil, fmt.Errorf("no decodable samples")
	}

	chans := make([][]float64, channels)
	for c := range chans {
		chans[c] = make([]float64, frames)
	}

	for i := 0; i < frames*channels; i++ {
		bits := binary.LittleEndian.Uint64(pcm[i*8 : i*8+8])
		chans[i%channels][i/channels] = math.Float64frombits(bits)
	}

	return &AudioData{
		Channels:   chans,
		SampleRate: sampleRate,
		Duration:   time.Duration(frames) * time.Second / time.Duration(sampleRate),
	}, nil
}
