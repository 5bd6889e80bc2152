package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/spectroview/spectroview/logging"
	"github.com/spectroview/spectroview/spectrogram"
)

// Decoder is the ingestion boundary: it turns opaque encoded bytes into
// channel-separated samples and a sample rate. The dispatcher never parses
// container or codec formats itself.
type Decoder interface {
	DecodeBytes(ctx context.Context, data []byte, filename string) (channels [][]float64, sampleRate int, err error)
}

// Input is one encoded file submitted for analysis
type Input struct {
	Data     []byte
	Filename string
}

// Result is the per-input outcome. Exactly one of Engine or Err is set; Err
// marks a placeholder for a file that failed to decode or analyze.
type Result struct {
	Filename string
	Engine   *spectrogram.Engine
	Err      error
}

// Dispatcher fans decode-and-analyze jobs for a batch of files out over a
// shared pool, capping each job's internal transform fan-out so concurrent
// files don't oversubscribe the CPUs
type Dispatcher struct {
	pool    *Pool
	decoder Decoder
	logger  logging.Logger
}

// NewDispatcher wires a dispatcher to a long-lived pool and a decode
// collaborator
func NewDispatcher(pool *Pool, decoder Decoder) *Dispatcher {
	return &Dispatcher{
		pool:    pool,
		decoder: decoder,
		logger:  logging.WithFields(logging.Fields{"component": "batch"}),
	}
}

// ThreadBudget returns the per-job transform fan-out cap for a batch of the
// given size: an even split of the CPUs with a floor of two
func ThreadBudget(batchSize int) int {
	return threadBudget(runtime.NumCPU(), batchSize)
}

func threadBudget(numCPU, batchSize int) int {
	if batchSize <= 0 {
		return numCPU
	}
	return max(numCPU/batchSize, 2)
}

// Dispatch decodes and analyzes every input on the pool and blocks until the
// whole batch is done. Results come back in submission order regardless of
// completion order. A per-file failure becomes an error placeholder at that
// file's position; sibling jobs are unaffected. There is no cancellation or
// timeout: a hung decode stalls the whole batch (known limitation).
func (d *Dispatcher) Dispatch(ctx context.Context, inputs []Input, params spectrogram.AnalysisParams) []Result {
	if len(inputs) == 0 {
		return nil
	}

	// Computed once per batch from this batch's size, shared by every job
	budget := ThreadBudget(len(inputs))

	d.logger.Info("dispatching batch", logging.Fields{
		"files":         len(inputs),
		"workers":       d.pool.Workers(),
		"thread_budget": budget,
	})

	results := make([]Result, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		i, input := i, input
		wg.Add(1)
		d.pool.submit(func() {
			defer wg.Done()
			results[i] = d.process(ctx, input, params, budget)
		})
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) process(ctx context.Context, input Input, params spectrogram.AnalysisParams, budget int) Result {
	channels, sampleRate, err := d.decoder.DecodeBytes(ctx, input.Data, input.Filename)
	if err != nil {
		d.logger.Error(err, "decode failed", logging.Fields{"file": input.Filename})
		return Result{
			Filename: input.Filename,
			Err:      fmt.Errorf("decode %s: %w", input.Filename, err),
		}
	}

	engine, err := spectrogram.New(channels, sampleRate, params,
		spectrogram.WithSTFTWorkers(budget))
	if err != nil {
		d.logger.Error(err, "analysis failed", logging.Fields{"file": input.Filename})
		return Result{
			Filename: input.Filename,
			Err:      fmt.Errorf("analyze %s: %w", input.Filename, err),
		}
	}

	return Result{
		Filename: input.Filename,
		Engine:   engine,
	}
}
