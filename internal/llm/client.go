package llm

import (
	"context"

	"github.com/stellarlinkco/qa-bench/internal/config"
)

// Usage is token accounting for one task, summed over sub-calls.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result is the outcome of one model evaluation. Calls counts the
// underlying LLM calls issued (1 for direct chat, more for agentic
// clients).
type Result struct {
	Answer string
	Calls  int
	Usage  *Usage
}

// Client answers a question given a context passage. Implementations used
// by the shared pool must be safe for concurrent invocation; isolated
// clients may keep per-call mutable state and are invoked serially by a
// single owner.
type Client interface {
	Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error)
}

// Factory constructs clients for the two dispatch strategies: one shared
// client reused by every shared-pool worker, and a fresh client per
// isolated-model worker.
type Factory interface {
	NewShared() (Client, error)
	NewIsolated(spec config.ModelSpec) (Client, error)
}

func qaPrompt(question, contextText string) string {
	return "Context:\n" + contextText + "\n\nQuestion: " + question + "\n\nAnswer the question based on the context. Be concise."
}
