package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/qa-bench/internal/config"
)

const (
	defaultChunkSize = 8000 // characters per extraction chunk
	defaultMaxChunks = 8
)

type chatFunc func(ctx context.Context, modelID, prompt string) (string, Usage, error)

// RecursiveClient answers long-context questions with a map-reduce loop:
// one extraction sub-call per context chunk, then a synthesis call over
// the collected notes. Call counts and token usage accumulate in mutable
// fields across sub-calls, so a single instance must never be invoked
// concurrently; the isolated dispatcher gives each instance exactly one
// owning worker.
type RecursiveClient struct {
	chat      chatFunc
	chunkSize int
	maxChunks int

	calls int
	usage Usage
}

func NewRecursiveClient(apiKey string, baseURL string) *RecursiveClient {
	inner := NewOpenAIClient(apiKey, baseURL)
	return &RecursiveClient{
		chat:      inner.chat,
		chunkSize: defaultChunkSize,
		maxChunks: defaultMaxChunks,
	}
}

func (c *RecursiveClient) Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error) {
	if c == nil || c.chat == nil {
		return nil, errors.New("llm: recursive: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: recursive: nil context")
	}

	c.calls = 0
	c.usage = Usage{}

	chunks := splitChunks(contextText, c.chunkSize, c.maxChunks)
	if len(chunks) <= 1 {
		answer, err := c.sub(ctx, spec.ModelID, qaPrompt(question, contextText))
		if err != nil {
			return nil, err
		}
		return c.result(answer), nil
	}

	var notes strings.Builder
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := c.sub(ctx, spec.ModelID, extractPrompt(question, chunk))
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&notes, "Note %d: %s\n", i+1, strings.TrimSpace(out))
	}

	answer, err := c.sub(ctx, spec.ModelID, synthesizePrompt(question, notes.String()))
	if err != nil {
		return nil, err
	}
	return c.result(answer), nil
}

func (c *RecursiveClient) sub(ctx context.Context, modelID, prompt string) (string, error) {
	out, usage, err := c.chat(ctx, modelID, prompt)
	c.calls++
	c.usage.InputTokens += usage.InputTokens
	c.usage.OutputTokens += usage.OutputTokens
	return out, err
}

func (c *RecursiveClient) result(answer string) *Result {
	u := c.usage
	return &Result{
		Answer: strings.TrimSpace(answer),
		Calls:  c.calls,
		Usage:  &u,
	}
}

func extractPrompt(question, chunk string) string {
	return "You are reading one part of a longer document.\n\nPart:\n" + chunk +
		"\n\nQuestion: " + question +
		"\n\nList any facts from this part that help answer the question. If none, reply \"no relevant facts\"."
}

func synthesizePrompt(question, notes string) string {
	return "Notes collected from parts of a document:\n" + notes +
		"\nQuestion: " + question +
		"\n\nAnswer the question using only the notes. Be concise."
}

// splitChunks cuts text into at most maxChunks pieces of roughly chunkSize
// characters, preferring paragraph boundaries. When the text exceeds the
// total capacity, chunk size grows so the whole text is still covered.
func splitChunks(text string, chunkSize, maxChunks int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	if size := (len(text) + maxChunks - 1) / maxChunks; size > chunkSize {
		chunkSize = size
	}

	var out []string
	rest := text
	for len(rest) > 0 {
		if len(rest) <= chunkSize {
			out = append(out, rest)
			break
		}
		cut := chunkSize
		if idx := strings.LastIndex(rest[:cut], "\n\n"); idx > chunkSize/2 {
			cut = idx
		}
		out = append(out, strings.TrimSpace(rest[:cut]))
		rest = strings.TrimSpace(rest[cut:])
	}
	return out
}
