// Package explanation defines the persisted explanation record and its
// assembly from normalized workflow output.
package explanation

import (
	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/workflow"
)

// Intent identifies the intent an explanation is about.
type Intent struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Record is the persisted explanation of one run. Field names match the
// configured record schema.
type Record struct {
	Timestamp             string                    `json:"timestamp"`
	Intent                Intent                    `json:"intent"`
	NaturalLanguageIntent string                    `json:"natural_language_intent"`
	StructuredIntent      string                    `json:"structured_intent"`
	Outcome               evidence.Outcome          `json:"outcome"`
	OutcomeExplanation    string                    `json:"outcome_explanation"`
	SystemInterpretation  string                    `json:"system_interpretation"`
	KeyActions            []string                  `json:"key_actions"`
	Analysis              map[string]any            `json:"analysis"`
	Recommendations       []evidence.Recommendation `json:"recommendations"`
	InfluencingFactors    []string                  `json:"influencing_factors"`
	Session               *Session                  `json:"session,omitempty"`
}

// Session captures how an explanation was produced.
type Session struct {
	Mode            string             `json:"mode"`
	Workflow        string             `json:"workflow,omitempty"`
	Provider        string             `json:"provider,omitempty"`
	Model           string             `json:"model,omitempty"`
	Rounds          int                `json:"rounds,omitempty"`
	InputTokens     int                `json:"input_tokens,omitempty"`
	OutputTokens    int                `json:"output_tokens,omitempty"`
	EstimatedCost   float64            `json:"estimated_cost,omitempty"`
	DurationSeconds float64            `json:"duration_seconds,omitempty"`
	ExtractionTier  string             `json:"extraction_tier,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	Transcript      []workflow.Message `json:"transcript,omitempty"`
}
