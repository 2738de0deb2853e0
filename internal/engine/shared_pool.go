package engine

import (
	"context"
	"sync"

	"github.com/stellarlinkco/qa-bench/internal/llm"
)

// DefaultWorkerCap bounds the shared pool. The pool never spawns more
// workers than it has tasks.
const DefaultWorkerCap = 20

// runShared fans tasks for concurrent-safe models out over a bounded worker
// pool. All workers call the same client instance.
func (e *Engine) runShared(ctx context.Context, client llm.Client, tasks []Task, rs *ResultSet) {
	if len(tasks) == 0 {
		return
	}

	workers := e.workerCap()
	if workers > len(tasks) {
		workers = len(tasks)
	}

	ch := make(chan Task)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for t := range ch {
				rs.Put(e.execute(ctx, client, t))
			}
		}()
	}

feed:
	for _, t := range tasks {
		select {
		case ch <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(ch)
	wg.Wait()
}

func (e *Engine) workerCap() int {
	if e != nil && e.WorkerCap > 0 {
		return e.WorkerCap
	}
	return DefaultWorkerCap
}
