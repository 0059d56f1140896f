package explanation

import (
	"time"

	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/intent"
	"github.com/iexplain/iexplain/internal/normalize"
	"github.com/iexplain/iexplain/internal/workflow"
)

// Assembler builds complete records from normalized drafts. The configured
// field schema decides which fields must be present.
type Assembler struct {
	fields []config.FieldSpec
	// Now is the clock used for the record timestamp. Overridable in tests.
	Now func() time.Time
}

// NewAssembler creates an Assembler for the given record schema.
func NewAssembler(fields []config.FieldSpec) *Assembler {
	return &Assembler{fields: fields, Now: time.Now}
}

// Source carries the intent documents a record was produced from. Both texts
// are persisted verbatim on the record.
type Source struct {
	Natural    string
	Structured string
}

// Assemble builds a record from a draft. The intent identity and source
// documents always come from the catalog, never from model output, and the
// timestamp is taken at assembly time. The session transcript is copied so
// later appends by the caller cannot alter a persisted record.
func (a *Assembler) Assemble(meta intent.Metadata, src Source, draft *normalize.Draft, sess *Session) *Record {
	r := &Record{
		Timestamp: a.Now().Format(time.RFC3339),
		Intent: Intent{
			ID:          meta.ID,
			Description: meta.Description,
		},
		NaturalLanguageIntent: src.Natural,
		StructuredIntent:      src.Structured,
		Outcome:               draft.Outcome,
		OutcomeExplanation:    draft.OutcomeExplanation,
		SystemInterpretation:  draft.SystemInterpretation,
		KeyActions:            draft.KeyActions,
		Analysis:              draft.Analysis,
		Recommendations:       draft.Recommendations,
		InfluencingFactors:    draft.InfluencingFactors,
	}
	if sess != nil {
		copied := *sess
		if sess.Transcript != nil {
			copied.Transcript = make([]workflow.Message, len(sess.Transcript))
			copy(copied.Transcript, sess.Transcript)
		}
		copied.ExtractionTier = string(draft.Tier)
		copied.Warnings = append(copied.Warnings, draft.Warnings...)
		r.Session = &copied
	}
	a.fillDefaults(r)
	return r
}

// fillDefaults guarantees every schema field serializes with a value of its
// declared shape, so downstream consumers never see a missing key.
func (a *Assembler) fillDefaults(r *Record) {
	for _, f := range a.fields {
		switch f.Key {
		case "natural_language_intent":
			if r.NaturalLanguageIntent == "" {
				r.NaturalLanguageIntent = "Not provided."
			}
		case "structured_intent":
			if r.StructuredIntent == "" {
				r.StructuredIntent = "Not provided."
			}
		case "outcome":
			if r.Outcome == "" {
				r.Outcome = evidence.OutcomeUnknown
			}
		case "outcome_explanation":
			if r.OutcomeExplanation == "" {
				r.OutcomeExplanation = "No explanation was produced."
			}
		case "system_interpretation":
			if r.SystemInterpretation == "" {
				r.SystemInterpretation = "Not determined."
			}
		case "key_actions":
			if r.KeyActions == nil {
				r.KeyActions = []string{}
			}
		case "analysis":
			if r.Analysis == nil {
				r.Analysis = map[string]any{}
			}
		case "recommendations":
			if r.Recommendations == nil {
				r.Recommendations = []evidence.Recommendation{}
			}
		case "influencing_factors":
			if r.InfluencingFactors == nil {
				r.InfluencingFactors = []string{}
			}
		}
	}
}
