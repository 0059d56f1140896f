package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Workflow != WorkflowSequential {
		t.Errorf("default workflow = %q, want sequential", cfg.Workflow)
	}
	if cfg.Sequential.LogAnalysisTurns != 2 {
		t.Errorf("default log analysis turns = %d, want 2", cfg.Sequential.LogAnalysisTurns)
	}
	if cfg.GroupChat.MaxRounds != 10 {
		t.Errorf("default max rounds = %d, want 10", cfg.GroupChat.MaxRounds)
	}
}

func TestDefaultFieldSchema(t *testing.T) {
	cfg := DefaultConfig()
	want := []string{
		"timestamp", "intent", "outcome", "outcome_explanation",
		"system_interpretation", "key_actions", "analysis",
		"recommendations", "influencing_factors",
	}
	got := cfg.FieldKeys()
	if len(got) != len(want) {
		t.Fatalf("field schema has %d keys, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("field[%d] = %q, want %q", i, got[i], k)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load with missing file should not error: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".iexplain.yml")
	content := []byte("provider: ollama\nmodel: llama3.2:1b\nworkflow: groupchat\ngroupchat:\n  max_rounds: 4\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Workflow != WorkflowGroupChat {
		t.Errorf("workflow = %q, want groupchat", cfg.Workflow)
	}
	if cfg.GroupChat.MaxRounds != 4 {
		t.Errorf("max rounds = %d, want 4", cfg.GroupChat.MaxRounds)
	}
	// Untouched defaults survive.
	if cfg.Sequential.LogAnalysisTurns != 2 {
		t.Errorf("log analysis turns = %d, want 2", cfg.Sequential.LogAnalysisTurns)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("IEXPLAIN_WORKFLOW", "nested")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workflow != WorkflowNested {
		t.Errorf("workflow = %q, want nested (env override)", cfg.Workflow)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "watson" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"bad mode", func(c *Config) { c.Mode = "psychic" }},
		{"bad workflow", func(c *Config) { c.Workflow = "parallel" }},
		{"zero rounds", func(c *Config) { c.GroupChat.MaxRounds = 0 }},
		{"negative rpm", func(c *Config) { c.RateLimitRPM = -1 }},
		{"tolerance out of range", func(c *Config) { c.Tolerance.LatencyPct = 1.5 }},
		{"empty fields", func(c *Config) { c.Fields = nil }},
		{"duplicate field key", func(c *Config) {
			c.Fields = append(c.Fields, FieldSpec{Key: "outcome"})
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".iexplain.yml")

	cfg := DefaultConfig()
	cfg.Workflow = WorkflowNested
	cfg.Nested.MaxNestedDepth = 5
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Workflow != WorkflowNested {
		t.Errorf("workflow = %q, want nested", loaded.Workflow)
	}
	if loaded.Nested.MaxNestedDepth != 5 {
		t.Errorf("max nested depth = %d, want 5", loaded.Nested.MaxNestedDepth)
	}
}
