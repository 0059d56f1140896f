package config

// ProviderType identifies a reasoning service provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// Mode selects how explanations are produced.
type Mode string

const (
	// ModeAgents runs the full reasoning workflow.
	ModeAgents Mode = "agents"
	// ModeHeuristic uses only the built-in log evidence analyzer.
	ModeHeuristic Mode = "heuristic"
)

// WorkflowType identifies an orchestration strategy.
type WorkflowType string

const (
	WorkflowSequential WorkflowType = "sequential"
	WorkflowNested     WorkflowType = "nested"
	WorkflowGroupChat  WorkflowType = "groupchat"
)

// Config is the top-level iexplain configuration, corresponding to .iexplain.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	Mode     Mode         `yaml:"mode" koanf:"mode"`
	Workflow WorkflowType `yaml:"workflow" koanf:"workflow"`

	DataDir    string `yaml:"data_dir" koanf:"data_dir"`
	LogsDir    string `yaml:"logs_dir" koanf:"logs_dir"`
	IntentsDir string `yaml:"intents_dir" koanf:"intents_dir"`
	OutputDir  string `yaml:"output_dir" koanf:"output_dir"`

	RateLimitRPM  int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	MaxLogLines   int `yaml:"max_log_lines" koanf:"max_log_lines"`
	MaxLineLength int `yaml:"max_line_length" koanf:"max_line_length"`

	Sequential SequentialConfig `yaml:"sequential" koanf:"sequential"`
	Nested     NestedConfig     `yaml:"nested" koanf:"nested"`
	GroupChat  GroupChatConfig  `yaml:"groupchat" koanf:"groupchat"`
	Tolerance  ToleranceConfig  `yaml:"tolerance" koanf:"tolerance"`

	Fields []FieldSpec `yaml:"fields" koanf:"fields"`
}

// SequentialConfig holds turn budgets for the sequential workflow.
type SequentialConfig struct {
	IntentParsingTurns   int  `yaml:"intent_parsing_turns" koanf:"intent_parsing_turns"`
	LogAnalysisTurns     int  `yaml:"log_analysis_turns" koanf:"log_analysis_turns"`
	ExplanationTurns     int  `yaml:"explanation_turns" koanf:"explanation_turns"`
	UseReflectionSummary bool `yaml:"use_reflection_summary" koanf:"use_reflection_summary"`
}

// NestedConfig holds budgets for the nested workflow.
type NestedConfig struct {
	MaxNestedDepth     int `yaml:"max_nested_depth" koanf:"max_nested_depth"`
	LogAnalysisTurns   int `yaml:"log_analysis_turns" koanf:"log_analysis_turns"`
	IntentParsingTurns int `yaml:"intent_parsing_turns" koanf:"intent_parsing_turns"`
	ExplanationTurns   int `yaml:"explanation_turns" koanf:"explanation_turns"`
}

// GroupChatConfig holds settings for the group chat workflow.
type GroupChatConfig struct {
	MaxRounds         int    `yaml:"max_rounds" koanf:"max_rounds"`
	SpeakerSelection  string `yaml:"speaker_selection" koanf:"speaker_selection"`
	SendIntroductions bool   `yaml:"send_introductions" koanf:"send_introductions"`
}

// ToleranceConfig holds the violation-ratio bands that separate a partial
// success from a failure, per metric class.
type ToleranceConfig struct {
	LatencyPct  float64 `yaml:"latency_pct" koanf:"latency_pct"`
	DurationPct float64 `yaml:"duration_pct" koanf:"duration_pct"`
	DefaultPct  float64 `yaml:"default_pct" koanf:"default_pct"`
}

// FieldSpec describes one field of the explanation record schema. The
// assembler guarantees every listed field is present in persisted records.
type FieldSpec struct {
	Key         string `yaml:"key" koanf:"key"`
	Title       string `yaml:"title" koanf:"title"`
	Description string `yaml:"description" koanf:"description"`
	DisplayType string `yaml:"display_type" koanf:"display_type"`
	ItemType    string `yaml:"item_type,omitempty" koanf:"item_type"`
	Priority    int    `yaml:"priority" koanf:"priority"`
}

// FieldKeys returns the schema field keys in priority order.
func (c *Config) FieldKeys() []string {
	keys := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
