package batch

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool meant to be allocated once at process
// start and reused for every batch. Workers are long-lived goroutines pulling
// tasks off a shared queue.
type Pool struct {
	tasks     chan func()
	workers   int
	closeOnce sync.Once
}

// DefaultWorkers returns the pool size used at process start: half the
// available CPUs, at least one
func DefaultWorkers() int {
	return max(runtime.NumCPU()/2, 1)
}

// NewPool starts a pool with the given number of workers; workers <= 0 uses
// DefaultWorkers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	p := &Pool{
		tasks:   make(chan func()),
		workers: workers,
	}

	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	for task := range p.tasks {
		task()
	}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// submit enqueues one task; it blocks while all workers are busy and the
// queue is full
func (p *Pool) submit(task func()) {
	p.tasks <- task
}

// Close stops the workers once queued tasks drain. Submitting after Close
// panics; the pool is meant to live for the whole process.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
}
