package engine

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/qa-bench/internal/config"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
)

// ConfigError marks a problem that must abort a run before any task is
// dispatched. Everything after dispatch is reported as result data, never
// as an error return.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Task is one (example, model) evaluation unit.
type Task struct {
	Example dataset.Example
	Model   config.ModelSpec
}

// Plan is the full cross product of examples and models, partitioned by
// dispatch mode. Isolated tasks are grouped per model name; within a group
// tasks run serially, groups run in parallel.
type Plan struct {
	Shared        []Task
	Isolated      map[string][]Task
	IsolatedOrder []string
	Total         int
}

// BuildPlan validates inputs and expands the cross product. Model-list
// problems (duplicates, empty names) surface here as ConfigError so a
// broken configuration never produces a partial run. Zero examples is not
// an error; it yields an empty plan.
func BuildPlan(examples []dataset.Example, models []config.ModelSpec) (*Plan, error) {
	if len(models) == 0 {
		return nil, configErrorf("engine: no models configured")
	}

	seenModels := make(map[string]struct{}, len(models))
	for i, m := range models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, configErrorf("engine: model %d: empty name", i)
		}
		if _, ok := seenModels[name]; ok {
			return nil, configErrorf("engine: duplicate model name %q", name)
		}
		seenModels[name] = struct{}{}
	}

	seenExamples := make(map[string]struct{}, len(examples))
	for i, ex := range examples {
		id := strings.TrimSpace(ex.ID)
		if id == "" {
			return nil, configErrorf("engine: example %d: empty id", i)
		}
		if _, ok := seenExamples[id]; ok {
			return nil, configErrorf("engine: duplicate example id %q", id)
		}
		seenExamples[id] = struct{}{}
	}

	p := &Plan{Isolated: make(map[string][]Task)}
	for _, m := range models {
		if m.Isolated {
			p.IsolatedOrder = append(p.IsolatedOrder, m.Name)
		}
	}
	for _, ex := range examples {
		for _, m := range models {
			t := Task{Example: ex, Model: m}
			if m.Isolated {
				p.Isolated[m.Name] = append(p.Isolated[m.Name], t)
			} else {
				p.Shared = append(p.Shared, t)
			}
			p.Total++
		}
	}
	return p, nil
}
