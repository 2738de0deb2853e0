// Package engine executes the cross product of examples and models and
// collects exactly one result per pair. Concurrent-safe models share one
// client behind a bounded worker pool; models marked isolated each get a
// dedicated worker with a private client, serial within the model and
// parallel across models.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stellarlinkco/qa-bench/internal/config"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
	"github.com/stellarlinkco/qa-bench/internal/llm"
)

type Engine struct {
	Clients   llm.Factory
	WorkerCap int // 0 means DefaultWorkerCap
	Logger    *slog.Logger
}

func New(clients llm.Factory) *Engine {
	return &Engine{Clients: clients}
}

func (e *Engine) logger() *slog.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Run evaluates every example against every model and returns one result
// per pair, ordered by example then by model. The only error return is a
// ConfigError raised before dispatch; once dispatch starts, every failure
// is folded into its task's result. Tasks left unresolved by cancellation
// or a lost worker are filled with error results so the output is always
// complete.
func (e *Engine) Run(ctx context.Context, examples []dataset.Example, models []config.ModelSpec) ([]TaskResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := BuildPlan(examples, models)
	if err != nil {
		return nil, err
	}

	log := e.logger()
	log.Info("run started",
		"examples", len(examples),
		"models", len(models),
		"shared_tasks", len(plan.Shared),
		"isolated_models", len(plan.IsolatedOrder))

	rs := NewResultSet(log)
	start := time.Now()

	var wg sync.WaitGroup
	if len(plan.Shared) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shared, err := e.Clients.NewShared()
			if err != nil {
				log.Error("shared client init failed", "error", err)
				for _, t := range plan.Shared {
					rs.Put(errorResult(t, err))
				}
				return
			}
			e.runShared(ctx, shared, plan.Shared, rs)
		}()
	}
	for _, name := range plan.IsolatedOrder {
		tasks := plan.Isolated[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runIsolated(ctx, tasks, rs)
		}()
	}
	wg.Wait()

	out := e.collect(ctx, plan, examples, models, rs)

	log.Info("run finished",
		"results", len(out),
		"duplicates", rs.Duplicates(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// collect orders results by example then model, filling any gap with an
// error result. A gap after a clean run means a worker lost a task; after
// cancellation it carries the context error.
func (e *Engine) collect(ctx context.Context, plan *Plan, examples []dataset.Example, models []config.ModelSpec, rs *ResultSet) []TaskResult {
	out := make([]TaskResult, 0, plan.Total)
	for _, ex := range examples {
		for _, m := range models {
			r, ok := rs.Get(ex.ID, m.Name)
			if !ok {
				err := ctx.Err()
				if err == nil {
					err = errMissingResult
				}
				e.logger().Warn("missing result",
					"example_id", ex.ID, "model", m.Name, "error", err)
				r = errorResult(Task{Example: ex, Model: m}, err)
			}
			out = append(out, r)
		}
	}
	return out
}

// execute runs one task and never returns an error; failures become error
// results with zero calls and zero latency.
func (e *Engine) execute(ctx context.Context, client llm.Client, t Task) TaskResult {
	if err := ctx.Err(); err != nil {
		return errorResult(t, err)
	}

	start := time.Now()
	res, err := client.Evaluate(ctx, t.Model, t.Example.Question, t.Example.Context)
	if err != nil {
		e.logger().Warn("task failed",
			"example_id", t.Example.ID, "model", t.Model.Name, "error", err)
		return errorResult(t, err)
	}
	if res == nil {
		return errorResult(t, errNilResult)
	}

	return TaskResult{
		ExampleID: t.Example.ID,
		ModelName: t.Model.Name,
		Question:  t.Example.Question,
		Gold:      t.Example.GoldAnswer,
		Answer:    res.Answer,
		Calls:     res.Calls,
		LatencyMS: time.Since(start).Milliseconds(),
		Usage:     res.Usage,
	}
}
