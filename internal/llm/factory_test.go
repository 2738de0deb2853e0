package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stellarlinkco/qa-bench/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Providers: map[string]config.ProviderConfig{
				config.BackendOpenAI:     {APIKey: "sk-test"},
				config.BackendOpenRouter: {APIKey: "or-test", BaseURL: "https://openrouter.ai/api/v1"},
				config.BackendClaude:     {APIKey: "ant-test"},
			},
		},
	}
}

func TestNewClientFactory_NilConfig(t *testing.T) {
	if _, err := NewClientFactory(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFactory_NewShared_RoutesAllBackends(t *testing.T) {
	f, err := NewClientFactory(testConfig())
	if err != nil {
		t.Fatalf("NewClientFactory: %v", err)
	}
	c, err := f.NewShared()
	if err != nil {
		t.Fatalf("NewShared: %v", err)
	}
	r, ok := c.(*RouterClient)
	if !ok {
		t.Fatalf("shared client type %T", c)
	}
	if r.openAI == nil || r.openRouter == nil || r.claude == nil {
		t.Fatalf("router routes: %#v", r)
	}
}

func TestRouterClient_UnknownBackend(t *testing.T) {
	r := &RouterClient{}
	_, err := r.Evaluate(context.Background(), config.ModelSpec{Backend: "gemini"}, "q", "c")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("err=%v", err)
	}
}

func TestRouterClient_UnconfiguredBackend(t *testing.T) {
	r := &RouterClient{openAI: NewOpenAIClient("k", "")}
	_, err := r.Evaluate(context.Background(), config.ModelSpec{Backend: config.BackendClaude}, "q", "c")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("err=%v", err)
	}
}

func TestRouterClient_DispatchesOnBackend(t *testing.T) {
	called := ""
	fake := func(name string) Client {
		return clientFunc(func(ctx context.Context, spec config.ModelSpec, q, c string) (*Result, error) {
			called = name
			return &Result{Answer: "ok", Calls: 1}, nil
		})
	}
	r := &RouterClient{
		openAI:     fake("openai"),
		openRouter: fake("openrouter"),
		claude:     fake("claude"),
	}

	for _, backend := range []string{config.BackendOpenAI, config.BackendOpenRouter, config.BackendClaude} {
		called = ""
		res, err := r.Evaluate(context.Background(), config.ModelSpec{Backend: backend}, "q", "c")
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if called != backend {
			t.Fatalf("backend %s dispatched to %q", backend, called)
		}
		if res.Answer != "ok" {
			t.Fatalf("answer=%q", res.Answer)
		}
	}
}

func TestFactory_NewIsolated(t *testing.T) {
	f, err := NewClientFactory(testConfig())
	if err != nil {
		t.Fatalf("NewClientFactory: %v", err)
	}

	c, err := f.NewIsolated(config.ModelSpec{Backend: config.BackendOpenRouter, ModelID: "m"})
	if err != nil {
		t.Fatalf("openrouter: %v", err)
	}
	if _, ok := c.(*RecursiveClient); !ok {
		t.Fatalf("openrouter isolated type %T", c)
	}

	c, err = f.NewIsolated(config.ModelSpec{Backend: config.BackendClaude, ModelID: "m"})
	if err != nil {
		t.Fatalf("claude: %v", err)
	}
	if _, ok := c.(*ClaudeClient); !ok {
		t.Fatalf("claude isolated type %T", c)
	}

	if _, err := f.NewIsolated(config.ModelSpec{Backend: "gemini"}); err == nil {
		t.Fatalf("unknown backend: expected error")
	}

	empty := &config.Config{}
	f2, err := NewClientFactory(empty)
	if err != nil {
		t.Fatalf("NewClientFactory: %v", err)
	}
	if _, err := f2.NewIsolated(config.ModelSpec{Backend: config.BackendOpenAI}); err == nil {
		t.Fatalf("unconfigured provider: expected error")
	}
}

// clientFunc adapts a function to the Client interface for tests.
type clientFunc func(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error)

func (f clientFunc) Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error) {
	return f(ctx, spec, question, contextText)
}
