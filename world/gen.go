package world

import (
	"context"
	"sync"
)

// inflightJob tracks one asynchronous generation job and its cancellation.
type inflightJob struct {
	cancel context.CancelFunc
}

type genJob struct {
	ctx context.Context
	pos ChunkPos
}

type genResult struct {
	pos ChunkPos
	// c is nil when the job was cancelled mid-build.
	c *Chunk
}

// genPool materialises chunks off the tick goroutine. Workers only touch the
// sampler, the hydrology map and the provider, all of which are safe for
// concurrent use, so jobs need no locking. The tick goroutine folds results
// back into the chunk table through loader.integrate.
type genPool struct {
	jobs    chan genJob
	results chan genResult
	wg      sync.WaitGroup
}

func newGenPool(w *World, workers, queueSize, budget int) *genPool {
	p := &genPool{
		jobs: make(chan genJob, queueSize),
		// At most budget jobs are in flight at once, so a buffer of
		// workers+budget guarantees result sends never block, close included.
		results: make(chan genResult, workers+budget),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- genResult{pos: job.pos, c: w.buildChunk(job.ctx, job.pos)}
			}
		}()
	}
	return p
}

// close drains the pool: no more jobs are accepted and close returns once all
// workers have exited. In-flight contexts must be cancelled first or close
// waits for them to finish.
func (p *genPool) close() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}
