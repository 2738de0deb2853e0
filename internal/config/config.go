package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// Known backend names for ModelSpec.Backend.
const (
	BackendOpenAI     = "openai"
	BackendOpenRouter = "openrouter"
	BackendClaude     = "claude"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Run     RunConfig     `yaml:"run"`
	Models  []ModelSpec   `yaml:"models"`
	Storage StorageConfig `yaml:"storage"`
}

type LLMConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ModelSpec identifies one model configuration under comparison. Name is
// the join key for results and must be unique within a run. Isolated marks
// backends whose client is not safe for concurrent use on one instance.
type ModelSpec struct {
	Name     string `yaml:"name"`
	ModelID  string `yaml:"model_id"`
	Backend  string `yaml:"backend"`
	Isolated bool   `yaml:"isolated,omitempty"`
}

type RunConfig struct {
	Datasets    []string `yaml:"datasets,omitempty"`
	MaxSamples  int      `yaml:"max_samples,omitempty"`
	Shuffle     bool     `yaml:"shuffle,omitempty"`
	ShuffleSeed int64    `yaml:"shuffle_seed,omitempty"`
	Workers     int      `yaml:"workers,omitempty"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	if cfg.Run.MaxSamples <= 0 {
		cfg.Run.MaxSamples = 10
	}
	if cfg.Run.ShuffleSeed == 0 {
		cfg.Run.ShuffleSeed = 42
	}
	if strings.TrimSpace(cfg.Run.OutputDir) == "" {
		cfg.Run.OutputDir = "results"
	}
	if len(cfg.Run.Datasets) == 0 {
		cfg.Run.Datasets = []string{"hotpotqa"}
	}
}

func applyEnv(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); v != "" {
		p := cfg.LLM.Providers[BackendOpenRouter]
		p.APIKey = v
		if strings.TrimSpace(p.BaseURL) == "" {
			p.BaseURL = openRouterBaseURL
		}
		cfg.LLM.Providers[BackendOpenRouter] = p
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		p := cfg.LLM.Providers[BackendOpenAI]
		p.APIKey = v
		cfg.LLM.Providers[BackendOpenAI] = p
	}

	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers[BackendClaude]
		p.APIKey = v
		cfg.LLM.Providers[BackendClaude] = p
	} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
		p := cfg.LLM.Providers[BackendClaude]
		p.APIKey = v
		cfg.LLM.Providers[BackendClaude] = p
	}
}

// Validate checks the model list for configuration errors that must abort
// a run before any task is dispatched.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("config: no models configured")
	}

	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return fmt.Errorf("config: model %d: empty name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("config: duplicate model name %q", name)
		}
		seen[name] = struct{}{}

		if strings.TrimSpace(m.ModelID) == "" {
			return fmt.Errorf("config: model %q: empty model_id", name)
		}

		switch strings.ToLower(strings.TrimSpace(m.Backend)) {
		case BackendOpenAI, BackendOpenRouter, BackendClaude:
		case "":
			return fmt.Errorf("config: model %q: empty backend", name)
		default:
			return fmt.Errorf("config: model %q: unknown backend %q", name, m.Backend)
		}
	}
	return nil
}
