package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor builds a provider with the given sampling options.
type Constructor func(opts Options) Provider

// Registry maps dataset names to provider constructors.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

func (r *Registry) Register(name string, fn Constructor) {
	if r == nil || fn == nil {
		return
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if r.constructors == nil {
		r.constructors = make(map[string]Constructor)
	}
	r.constructors[name] = fn
}

func (r *Registry) New(name string, opts Options) (Provider, error) {
	if r == nil || r.constructors == nil {
		return nil, fmt.Errorf("dataset: empty registry")
	}
	key := strings.ToLower(strings.TrimSpace(name))
	fn, ok := r.constructors[key]
	if !ok {
		return nil, fmt.Errorf("dataset: unknown dataset %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return fn(opts), nil
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.constructors))
	for k := range r.constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry registers all built-in dataset providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("hotpotqa", func(opts Options) Provider { return &HotpotQA{Options: opts} })
	r.Register("squad_v2", func(opts Options) Provider { return &SQuADv2{Options: opts, AnswerableOnly: true} })
	r.Register("drop", func(opts Options) Provider { return &DROP{Options: opts} })
	r.Register("boolq", func(opts Options) Provider { return &BoolQ{Options: opts} })
	r.Register("musique", func(opts Options) Provider { return &Musique{Options: opts} })
	return r
}
