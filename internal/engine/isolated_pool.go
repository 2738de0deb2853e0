package engine

import (
	"context"
)

// runIsolated runs one model's tasks serially on a client constructed
// privately for this worker. The client is never shared, so stateful
// implementations are safe here. Construction failure marks every task of
// this model as failed without touching any other model.
func (e *Engine) runIsolated(ctx context.Context, tasks []Task, rs *ResultSet) {
	if len(tasks) == 0 {
		return
	}

	spec := tasks[0].Model
	client, err := e.Clients.NewIsolated(spec)
	if err != nil {
		e.logger().Error("isolated client init failed", "model", spec.Name, "error", err)
		for _, t := range tasks {
			rs.Put(errorResult(t, err))
		}
		return
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		rs.Put(e.execute(ctx, client, t))
	}
}
