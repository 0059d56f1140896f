package normalize

import (
	"regexp"
	"strings"

	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/workflow"
)

var (
	outcomeLineRe     = regexp.MustCompile(`(?im)^\s*\**outcome\**\s*:\s*\**(.+?)\**\s*$`)
	explanationLineRe = regexp.MustCompile(`(?im)^\s*\**outcome explanation\**\s*:\s*(.+)$`)
	bulletRe          = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
	sectionRe         = regexp.MustCompile(`(?im)^\s*#*\s*\**(recommendations|influencing factors|key actions)\**\s*:?\s*$`)
)

// fromTranscript reconstructs a draft from prose when no JSON record exists.
// Synthesizer messages are scanned newest-first before any other role, so an
// evaluator quoting the verdict afterwards cannot hijack the reconstruction.
func fromTranscript(transcript []workflow.Message) (*Draft, bool) {
	if d, ok := scanProse(transcript, func(m workflow.Message) bool {
		return m.Role == workflow.RoleSynthesizer
	}); ok {
		return d, true
	}
	return scanProse(transcript, func(m workflow.Message) bool {
		return m.Role != workflow.RoleCoordinator && m.Role != workflow.RoleSynthesizer
	})
}

// scanProse walks the transcript newest-first and parses the first matching
// message that reads as an explanation.
func scanProse(transcript []workflow.Message, match func(workflow.Message) bool) (*Draft, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		if !match(transcript[i]) {
			continue
		}
		if d, ok := parseProse(transcript[i].Content); ok {
			return d, true
		}
	}
	return nil, false
}

// parseProse pulls record fields out of a prose explanation. An outcome line
// is the minimum for the message to count as an explanation.
func parseProse(content string) (*Draft, bool) {
	om := outcomeLineRe.FindStringSubmatch(content)
	if om == nil {
		return nil, false
	}

	d := &Draft{
		Analysis: map[string]any{},
		Tier:     TierTranscript,
	}
	d.Outcome = coerceOutcome(om[1], &d.Warnings)

	if em := explanationLineRe.FindStringSubmatch(content); em != nil {
		d.OutcomeExplanation = strings.TrimSpace(em[1])
	} else {
		d.OutcomeExplanation = "Reconstructed from discussion; see conversation transcript."
	}

	for section, body := range sections(content) {
		switch section {
		case "recommendations":
			for _, b := range bullets(body) {
				action, reason, found := strings.Cut(b, ":")
				rec := evidence.Recommendation{Action: strings.TrimSpace(action)}
				if found {
					rec.Reason = strings.TrimSpace(reason)
				}
				d.Recommendations = append(d.Recommendations, rec)
			}
		case "influencing factors":
			d.InfluencingFactors = append(d.InfluencingFactors, bullets(body)...)
		case "key actions":
			d.KeyActions = append(d.KeyActions, bullets(body)...)
		}
	}
	return d, true
}

// sections splits the content at recognized headings and returns the body
// following each.
func sections(content string) map[string]string {
	out := map[string]string{}
	locs := sectionRe.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range locs {
		name := strings.ToLower(content[loc[2]:loc[3]])
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[name] = content[loc[1]:end]
	}
	return out
}

func bullets(body string) []string {
	var items []string
	for _, m := range bulletRe.FindAllStringSubmatch(body, -1) {
		item := strings.TrimSpace(strings.Trim(m[1], "*"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
