package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iexplain/iexplain/internal/evidence"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// rawRecord is the loosely-typed shape accepted from model output. Fields
// arrive in whatever form the model chose; coercion happens afterwards.
type rawRecord struct {
	Outcome              string              `json:"outcome"`
	OutcomeExplanation   string              `json:"outcome_explanation"`
	SystemInterpretation string              `json:"system_interpretation"`
	KeyActions           []json.RawMessage   `json:"key_actions"`
	Analysis             map[string]any      `json:"analysis"`
	Recommendations      []map[string]string `json:"recommendations"`
	InfluencingFactors   []string            `json:"influencing_factors"`
}

// fromJSON extracts the last fenced JSON block from the text and parses it.
// Models sometimes emit earlier draft blocks; the final one is authoritative.
// A parse failure gets one retry with escaping artifacts repaired.
func fromJSON(text string) (*Draft, bool) {
	body := lastJSONBlock(text)
	if body == "" {
		return nil, false
	}

	var raw rawRecord
	var warnings []string
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		if err2 := json.Unmarshal([]byte(repairEscaping(body)), &raw); err2 != nil {
			return nil, false
		}
		warnings = append(warnings, "JSON record required unescaping before parsing")
	}

	d := &Draft{
		OutcomeExplanation:   raw.OutcomeExplanation,
		SystemInterpretation: raw.SystemInterpretation,
		KeyActions:           coerceActions(raw.KeyActions),
		Analysis:             raw.Analysis,
		InfluencingFactors:   raw.InfluencingFactors,
		Tier:                 TierJSON,
		Warnings:             warnings,
	}
	d.Outcome = coerceOutcome(raw.Outcome, &d.Warnings)
	if d.Analysis == nil {
		d.Analysis = map[string]any{}
	}
	for _, r := range raw.Recommendations {
		rec := evidence.Recommendation{Action: r["action"], Reason: r["reason"]}
		if rec.Action == "" && rec.Reason == "" {
			continue
		}
		d.Recommendations = append(d.Recommendations, rec)
	}
	return d, true
}

// repairEscaping undoes the artifacts models wrap records in: one layer of
// surrounding quotes, escaped quotes, and literal \n / \t sequences.
func repairEscaping(body string) string {
	s := strings.TrimSpace(body)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t").Replace(s)
}

// lastJSONBlock returns the content of the last fenced JSON block, or the
// whole text when it is itself a bare JSON object.
func lastJSONBlock(text string) string {
	matches := fencedJSONRe.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		return strings.TrimSpace(matches[len(matches)-1][1])
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}
	return ""
}

// coerceActions accepts key_actions as plain strings or as objects with an
// "action" field.
func coerceActions(raw []json.RawMessage) []string {
	var actions []string
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			actions = append(actions, s)
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(r, &obj); err == nil {
			if a, ok := obj["action"].(string); ok {
				actions = append(actions, a)
			}
		}
	}
	return actions
}
