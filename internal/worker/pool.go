// Package worker is a fixed-size pool for fire-and-forget jobs (audit event
// writes). Stop drains the queue, so shutdown and tests can wait for all
// submitted work to land.
package worker

import (
	"sync"

	"github.com/azrilhafizi/kirim-backend/internal/metrics"
)

type task func()

type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
			}
		}()
	}
	return p
}

func (p *Pool) Submit(f task) {
	p.jobs <- f
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
}

// Stop closes the queue and blocks until every queued job has run.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
