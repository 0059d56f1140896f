// Package normalize turns free-form workflow output into a structured
// explanation draft. Three tiers are tried in order: a fenced JSON record, a
// regex reconstruction from the transcript, and a placeholder. The pipeline
// never fails outright; a degraded draft carries warnings instead.
package normalize

import (
	"strings"

	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/workflow"
)

// Tier identifies which extraction tier produced a draft.
type Tier string

const (
	TierJSON        Tier = "json"
	TierTranscript  Tier = "transcript"
	TierPlaceholder Tier = "placeholder"
)

// Draft is the normalized explanation content before assembly into a record.
type Draft struct {
	Outcome              evidence.Outcome
	OutcomeExplanation   string
	SystemInterpretation string
	KeyActions           []string
	Analysis             map[string]any
	Recommendations      []evidence.Recommendation
	InfluencingFactors   []string

	Tier     Tier
	Warnings []string
}

// FromWorkflow normalizes a workflow result. The final output is tried first;
// if it yields no parseable record the transcript is reconstructed; if that
// fails too a placeholder draft is returned.
func FromWorkflow(final string, transcript []workflow.Message) *Draft {
	if d, ok := fromJSON(final); ok {
		return d
	}
	if d, ok := fromTranscript(transcript); ok {
		d.Warnings = append(d.Warnings,
			"no parseable JSON record in workflow output; reconstructed from transcript")
		return d
	}
	return placeholder()
}

// placeholder is the last-resort draft when nothing could be extracted.
func placeholder() *Draft {
	return &Draft{
		Outcome:            evidence.OutcomeUnknown,
		OutcomeExplanation: "The reasoning workflow did not produce a parseable explanation.",
		KeyActions:         []string{},
		Analysis:           map[string]any{},
		Recommendations: []evidence.Recommendation{{
			Action: "Re-run the explanation with a different workflow",
			Reason: "The workflow output could not be interpreted",
		}},
		InfluencingFactors: []string{"Log analysis incomplete"},
		Tier:               TierPlaceholder,
		Warnings:           []string{"workflow output unusable; emitting placeholder explanation"},
	}
}

// coerceOutcome maps free-form outcome text onto the canonical values.
// Unrecognized text degrades to Unknown rather than inventing a verdict.
func coerceOutcome(raw string, warnings *[]string) evidence.Outcome {
	s := strings.ToLower(strings.TrimSpace(strings.Trim(raw, `"'.`)))
	switch {
	case s == "success":
		return evidence.OutcomeSuccess
	case strings.Contains(s, "partial"):
		return evidence.OutcomePartial
	case s == "failure" || s == "failed":
		return evidence.OutcomeFailure
	case s == "unknown" || s == "":
		return evidence.OutcomeUnknown
	default:
		*warnings = append(*warnings, "unrecognized outcome value "+strings.TrimSpace(raw))
		return evidence.OutcomeUnknown
	}
}
