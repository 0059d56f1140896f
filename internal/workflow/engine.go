package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/iexplain/iexplain/internal/config"
)

// Strategy orchestrates a roster of capabilities to produce an explanation.
type Strategy interface {
	// Name returns the strategy identifier, matching config.WorkflowType.
	Name() string
	// Required lists the roles the roster must provide.
	Required() []Role
	// Run executes the workflow. The roster is validated before any
	// capability is invoked.
	Run(ctx context.Context, roster Roster, req *Request) (*Result, error)
}

// ForType returns the strategy implementing the configured workflow.
func ForType(t config.WorkflowType, cfg *config.Config) (Strategy, error) {
	switch t {
	case config.WorkflowSequential:
		return &Sequential{cfg: cfg.Sequential}, nil
	case config.WorkflowNested:
		return &Nested{cfg: cfg.Nested}, nil
	case config.WorkflowGroupChat:
		return &GroupChat{cfg: cfg.GroupChat}, nil
	default:
		return nil, fmt.Errorf("unknown workflow type %q", t)
	}
}

// validateRoster checks that every required role is bound. Called by every
// strategy as its first step.
func validateRoster(s Strategy, roster Roster) error {
	var missing []Role
	for _, r := range s.Required() {
		if _, ok := roster[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &MissingRoleError{Strategy: s.Name(), Missing: missing}
	}
	return nil
}

// requestPreamble renders the shared task context given to the first speaker.
func requestPreamble(req *Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent %s under investigation.\n\n", req.IntentID)
	if req.NaturalText != "" {
		fmt.Fprintf(&b, "Operator description:\n%s\n\n", req.NaturalText)
	}
	if req.Summary != "" {
		fmt.Fprintf(&b, "Structured requirement:\n%s\n\n", req.Summary)
	}
	fmt.Fprintf(&b, "Intent source:\n%s\n", req.IntentText)
	return b.String()
}

// analysisPreamble renders the evidence context for log-focused stages.
func analysisPreamble(req *Request) string {
	var b strings.Builder
	if req.EvidenceSummary != "" {
		fmt.Fprintf(&b, "Pre-computed measurements:\n%s\n\n", req.EvidenceSummary)
	}
	fmt.Fprintf(&b, "Log content:\n%s\n", req.LogExcerpt)
	return b.String()
}
