package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (IEXPLAIN_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: IEXPLAIN_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider("IEXPLAIN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "IEXPLAIN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
	ProviderOllama:    true,
}

// validWorkflows is the set of recognized workflow values.
var validWorkflows = map[WorkflowType]bool{
	WorkflowSequential: true,
	WorkflowNested:     true,
	WorkflowGroupChat:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, anthropic, ollama", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Mode != ModeAgents && c.Mode != ModeHeuristic {
		return fmt.Errorf("invalid mode %q: must be agents or heuristic", c.Mode)
	}

	if !validWorkflows[c.Workflow] {
		return fmt.Errorf("invalid workflow %q: must be one of sequential, nested, groupchat", c.Workflow)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.IntentsDir == "" {
		return fmt.Errorf("intents_dir is required")
	}

	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}

	if c.GroupChat.MaxRounds < 1 {
		return fmt.Errorf("groupchat.max_rounds must be at least 1")
	}
	if c.Nested.MaxNestedDepth < 1 {
		return fmt.Errorf("nested.max_nested_depth must be at least 1")
	}

	for _, band := range []struct {
		name string
		v    float64
	}{
		{"tolerance.latency_pct", c.Tolerance.LatencyPct},
		{"tolerance.duration_pct", c.Tolerance.DurationPct},
		{"tolerance.default_pct", c.Tolerance.DefaultPct},
	} {
		if band.v < 0 || band.v >= 1 {
			return fmt.Errorf("%s must be in [0, 1)", band.name)
		}
	}

	if len(c.Fields) == 0 {
		return fmt.Errorf("fields schema must not be empty")
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Key == "" {
			return fmt.Errorf("field schema entry with empty key")
		}
		if seen[f.Key] {
			return fmt.Errorf("duplicate field schema key %q", f.Key)
		}
		seen[f.Key] = true
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider. Ollama needs no key.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
