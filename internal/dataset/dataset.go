package dataset

import "context"

// Example is one question-answering item. Examples are loaded once per run
// and treated as read-only afterwards.
type Example struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Context    string `json:"context"`
	GoldAnswer string `json:"gold_answer"`
}

// Provider loads an ordered, finite sequence of examples. Load must be
// deterministic for the same Options.
type Provider interface {
	Name() string
	Description() string
	Load(ctx context.Context) ([]Example, error)
}

// Options controls sampling when constructing a provider.
type Options struct {
	MaxSamples int
	Shuffle    bool
	Seed       int64
}
