package engine

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/stellarlinkco/qa-bench/internal/llm"
)

var (
	errMissingResult = errors.New("engine: task produced no result")
	errNilResult     = errors.New("engine: client returned nil result")
)

// Key joins a result back to its task. Every task in a plan maps to exactly
// one key, and a completed run holds exactly one result per key.
type Key struct {
	ExampleID string
	ModelName string
}

// TaskResult is the outcome of one (example, model) evaluation. Failures
// are results, not errors: Err carries the message and Answer carries the
// "Error: ..." form so downstream scoring treats the task as answered
// wrongly rather than missing.
type TaskResult struct {
	ExampleID string     `json:"example_id"`
	ModelName string     `json:"model_name"`
	Question  string     `json:"question"`
	Gold      string     `json:"gold"`
	Answer    string     `json:"answer"`
	Calls     int        `json:"llm_calls"`
	LatencyMS int64      `json:"time_ms"`
	Usage     *llm.Usage `json:"usage,omitempty"`
	Err       string     `json:"error,omitempty"`
}

func errorResult(t Task, err error) TaskResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return TaskResult{
		ExampleID: t.Example.ID,
		ModelName: t.Model.Name,
		Question:  t.Example.Question,
		Gold:      t.Example.GoldAnswer,
		Answer:    "Error: " + msg,
		Err:       msg,
	}
}

// ResultSet is an insert-once concurrent map from Key to TaskResult. The
// first write for a key wins; later writes are dropped and counted, since a
// duplicate means two workers ran the same task.
type ResultSet struct {
	mu     sync.Mutex
	m      map[Key]TaskResult
	dups   int
	logger *slog.Logger
}

func NewResultSet(logger *slog.Logger) *ResultSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultSet{m: make(map[Key]TaskResult), logger: logger}
}

// Put records r and reports whether it was the first write for its key.
func (s *ResultSet) Put(r TaskResult) bool {
	k := Key{ExampleID: r.ExampleID, ModelName: r.ModelName}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[k]; ok {
		s.dups++
		s.logger.Warn("duplicate result dropped",
			"example_id", k.ExampleID, "model", k.ModelName)
		return false
	}
	s.m[k] = r
	return true
}

func (s *ResultSet) Get(exampleID, modelName string) (TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[Key{ExampleID: exampleID, ModelName: modelName}]
	return r, ok
}

func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Duplicates reports how many writes were dropped for already-present keys.
func (s *ResultSet) Duplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dups
}
