package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/qa-bench/internal/config"
)

// ClientFactory builds clients from configured provider credentials.
type ClientFactory struct {
	cfg *config.Config
}

func NewClientFactory(cfg *config.Config) (*ClientFactory, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	return &ClientFactory{cfg: cfg}, nil
}

// NewShared returns the single client instance used by every shared-pool
// worker. It routes per call on ModelSpec.Backend; each route is stateless
// and safe for concurrent invocation.
func (f *ClientFactory) NewShared() (Client, error) {
	if f == nil || f.cfg == nil {
		return nil, errors.New("llm: nil factory")
	}

	r := &RouterClient{}
	if p, ok := f.provider(config.BackendOpenRouter); ok {
		r.openRouter = NewOpenAIClient(p.APIKey, p.BaseURL)
	}
	if p, ok := f.provider(config.BackendOpenAI); ok {
		r.openAI = NewOpenAIClient(p.APIKey, p.BaseURL)
	}
	if p, ok := f.provider(config.BackendClaude); ok {
		r.claude = NewClaudeClient(p.APIKey, p.BaseURL)
	}
	return r, nil
}

// NewIsolated returns a freshly constructed client owned by one worker.
func (f *ClientFactory) NewIsolated(spec config.ModelSpec) (Client, error) {
	if f == nil || f.cfg == nil {
		return nil, errors.New("llm: nil factory")
	}

	backend := strings.ToLower(strings.TrimSpace(spec.Backend))
	switch backend {
	case config.BackendOpenAI, config.BackendOpenRouter:
		p, ok := f.provider(backend)
		if !ok {
			return nil, fmt.Errorf("llm: provider %q not configured", backend)
		}
		return NewRecursiveClient(p.APIKey, p.BaseURL), nil
	case config.BackendClaude:
		// No recursive loop over the Anthropic API; isolated claude models
		// still get a private direct client per worker.
		p, ok := f.provider(backend)
		if !ok {
			return nil, fmt.Errorf("llm: provider %q not configured", backend)
		}
		return NewClaudeClient(p.APIKey, p.BaseURL), nil
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", spec.Backend)
	}
}

func (f *ClientFactory) provider(name string) (config.ProviderConfig, bool) {
	if f == nil || f.cfg == nil || f.cfg.LLM.Providers == nil {
		return config.ProviderConfig{}, false
	}
	p, ok := f.cfg.LLM.Providers[name]
	if !ok {
		return config.ProviderConfig{}, false
	}
	if strings.TrimSpace(p.APIKey) == "" && strings.TrimSpace(p.BaseURL) == "" {
		return config.ProviderConfig{}, false
	}
	return p, true
}

// RouterClient dispatches Evaluate on the model's backend. It holds one
// stateless sub-client per configured backend.
type RouterClient struct {
	openAI     Client
	openRouter Client
	claude     Client
}

func (r *RouterClient) Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*Result, error) {
	if r == nil {
		return nil, errors.New("llm: nil router")
	}

	backend := strings.ToLower(strings.TrimSpace(spec.Backend))
	var c Client
	switch backend {
	case config.BackendOpenAI:
		c = r.openAI
	case config.BackendOpenRouter:
		c = r.openRouter
	case config.BackendClaude:
		c = r.claude
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", spec.Backend)
	}
	if c == nil {
		return nil, fmt.Errorf("llm: provider %q not configured", backend)
	}
	return c.Evaluate(ctx, spec, question, contextText)
}
