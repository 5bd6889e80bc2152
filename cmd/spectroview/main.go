package main

import (
	"context"
	"fmt"
	"os"

	"github.com/integrii/flaggy"

	"github.com/spectroview/spectroview/batch"
	"github.com/spectroview/spectroview/logging"
	"github.com/spectroview/spectroview/spectrogram"
	"github.com/spectroview/spectroview/transcode"
)

const (
	AppName = "spectroview"
	AppDesc = "compute linear and mel spectrograms for a batch of audio files"
)

var version = "dev"

type config struct {
	windowMS float64
	overlap  int
	nMel     int
	workers  int
	verbose  bool
	files    []string
}

func chk(err error, msg string) {
	if err != nil {
		logging.Fatal(err, msg)
	}
}

func doFlags(cfg *config) {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.Version = version
	// Audio file paths arrive as trailing arguments
	parser.ShowHelpOnUnexpected = false

	parser.Float64(&cfg.windowMS, "w", "window", "analysis window length in ms (5, 10, 20, 30, 40, 50, 80, 160)")
	parser.Int(&cfg.overlap, "o", "overlap", "window/hop overlap factor (2, 4, 8, 16)")
	parser.Int(&cfg.nMel, "m", "mel", "number of mel filterbanks (>= 10)")
	parser.Int(&cfg.workers, "j", "workers", "worker pool size (0 for half the CPUs)")
	parser.Bool(&cfg.verbose, "v", "verbose", "enable debug logging")

	chk(parser.Parse(), "failed to parse arguments")

	cfg.files = parser.TrailingArguments
}

func main() {
	defaults := spectrogram.DefaultAnalysisParams()
	cfg := config{
		windowMS: defaults.WindowMS,
		overlap:  defaults.Overlap,
		nMel:     defaults.NMel,
	}

	doFlags(&cfg)

	if cfg.verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	if len(cfg.files) == 0 {
		logging.Fatal(nil, "no input files given")
	}

	params := spectrogram.AnalysisParams{
		WindowMS: cfg.windowMS,
		Overlap:  cfg.overlap,
		NMel:     cfg.nMel,
	}
	chk(params.Validate(), "invalid analysis parameters")

	inputs := make([]batch.Input, 0, len(cfg.files))
	for _, path := range cfg.files {
		data, err := os.ReadFile(path)
		chk(err, "failed to read input file")
		inputs = append(inputs, batch.Input{Data: data, Filename: path})
	}

	// One pool for the process lifetime
	pool := batch.NewPool(cfg.workers)
	defer pool.Close()

	dispatcher := batch.NewDispatcher(pool, transcode.NewDecoder(nil))
	results := dispatcher.Dispatch(context.Background(), inputs, params)

	session := spectrogram.NewSession()
	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Printf("%s: there was an error processing this file: %v\n", result.Filename, result.Err)
			continue
		}
		session.Add(result.Filename, result.Engine)
	}

	for i, engine := range session.Engines() {
		frames := len(engine.TimeAxis())
		duration := 0.0
		if frames > 0 {
			duration = engine.TimeAxis()[frames-1]
		}

		fmt.Printf("%s (sr=%d Hz) (n_fft: %d)\n", session.Names()[i], engine.SampleRate(), engine.FFTSize())
		fmt.Printf("  window: %d ms, overlap: %dx, mel bins: %d\n",
			engine.WindowMS(), engine.Overlap(), engine.NMel())
		fmt.Printf("  frames: %d, span: %.3f sec, peak amplitude: %.4f\n",
			frames, duration, engine.PeakAmplitude())
	}

	if failures > 0 {
		os.Exit(1)
	}
}
