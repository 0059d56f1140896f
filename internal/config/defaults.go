package config

// DefaultConfig returns a configuration with sensible defaults. Values can be
// overridden by .iexplain.yml and IEXPLAIN_* environment variables.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o-mini",
		Mode:     ModeAgents,
		Workflow: WorkflowSequential,

		DataDir:    "data",
		LogsDir:    "data/logs",
		IntentsDir: "data/intents",
		OutputDir:  "output",

		RateLimitRPM:  60,
		MaxLogLines:   5000,
		MaxLineLength: 2000,

		Sequential: SequentialConfig{
			IntentParsingTurns:   1,
			LogAnalysisTurns:     2,
			ExplanationTurns:     1,
			UseReflectionSummary: true,
		},
		Nested: NestedConfig{
			MaxNestedDepth:     3,
			LogAnalysisTurns:   2,
			IntentParsingTurns: 1,
			ExplanationTurns:   1,
		},
		GroupChat: GroupChatConfig{
			MaxRounds:         10,
			SpeakerSelection:  "auto",
			SendIntroductions: true,
		},
		Tolerance: ToleranceConfig{
			LatencyPct:  0.20,
			DurationPct: 0.10,
			DefaultPct:  0.10,
		},

		Fields: DefaultFields(),
	}
}

// DefaultFields returns the canonical explanation record schema, ordered by
// display priority.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{Key: "timestamp", Title: "Timestamp", Description: "Time when the explanation was generated", DisplayType: "text", Priority: 5},
		{Key: "intent", Title: "Intent", Description: "The intent object containing id and description", DisplayType: "object", Priority: 8},
		{Key: "natural_language_intent", Title: "Natural Language Intent", Description: "The intent as expressed by the operator", DisplayType: "text", Priority: 9},
		{Key: "structured_intent", Title: "Structured Intent", Description: "The machine-readable intent definition", DisplayType: "code", Priority: 10},
		{Key: "outcome", Title: "Outcome", Description: "Whether the intent was fulfilled, either 'Success', 'Partial Success', or 'Failure'", DisplayType: "status", Priority: 15},
		{Key: "outcome_explanation", Title: "Outcome Explanation", Description: "Explanation of the outcome", DisplayType: "text", Priority: 20},
		{Key: "system_interpretation", Title: "System Interpretation", Description: "How the system interpreted the intent", DisplayType: "text", Priority: 30},
		{Key: "key_actions", Title: "Key Actions", Description: "Actions taken by the system", DisplayType: "list", ItemType: "simple", Priority: 40},
		{Key: "analysis", Title: "Analysis Results", Description: "Detailed metrics from logs", DisplayType: "key_value", Priority: 50},
		{Key: "recommendations", Title: "Recommendations", Description: "Suggested improvements, as a list of action/reason pairs", DisplayType: "list", ItemType: "recommendation", Priority: 60},
		{Key: "influencing_factors", Title: "Influencing Factors", Description: "Factors affecting the outcome", DisplayType: "list", ItemType: "factor", Priority: 70},
	}
}
