package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/iexplain/iexplain/internal/config"
)

// GroupChat runs all five roles in a shared conversation. A speaker selector
// chooses who talks each round; the chat ends when the synthesizer produces a
// fenced JSON record or the round cap is reached.
type GroupChat struct {
	cfg config.GroupChatConfig
	// Selector overrides the configured speaker selection when non-nil.
	Selector SpeakerSelector
}

func (g *GroupChat) Name() string { return string(config.WorkflowGroupChat) }

func (g *GroupChat) Required() []Role {
	return []Role{RoleIntentParser, RoleLogAnalyst, RoleCausal, RoleSynthesizer, RoleEvaluator}
}

// participants is the fixed speaking order used for round-robin selection and
// as the fallback ordering for content-driven selection.
var participants = []Role{
	RoleIntentParser, RoleLogAnalyst, RoleCausal, RoleSynthesizer, RoleEvaluator,
}

// SpeakerSelector picks the next speaker from the conversation so far.
type SpeakerSelector interface {
	Next(history []Message, order []Role) Role
}

// roundRobin cycles through the speaking order.
type roundRobin struct{ i int }

func (r *roundRobin) Next(_ []Message, order []Role) Role {
	role := order[r.i%len(order)]
	r.i++
	return role
}

// contentDriven inspects the last spoken message for handoff cues and falls
// back to the next role in order when none apply.
type contentDriven struct{ rr roundRobin }

func (c *contentDriven) Next(history []Message, order []Role) Role {
	var last Message
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != RoleCoordinator {
			last = history[i]
			break
		}
	}
	content := strings.ToLower(last.Content)

	switch {
	case last.Role == RoleIntentParser:
		// Parsed conditions go to whoever can measure them.
		c.rr.i = indexOf(order, RoleLogAnalyst)
	case last.Role == RoleLogAnalyst && (strings.Contains(content, "violat") || strings.Contains(content, "exceed")):
		c.rr.i = indexOf(order, RoleCausal)
	case last.Role == RoleCausal:
		c.rr.i = indexOf(order, RoleSynthesizer)
	case last.Role == RoleSynthesizer:
		c.rr.i = indexOf(order, RoleEvaluator)
	case last.Role == RoleEvaluator && (strings.Contains(content, "revise") || strings.Contains(content, "missing")):
		c.rr.i = indexOf(order, RoleSynthesizer)
	}
	return c.rr.Next(history, order)
}

func indexOf(order []Role, r Role) int {
	for i, o := range order {
		if o == r {
			return i
		}
	}
	return 0
}

// selectorFor maps the configured selection mode to an implementation.
// Unrecognized modes fall back to round-robin.
func selectorFor(mode string) SpeakerSelector {
	if mode == "auto" {
		return &contentDriven{}
	}
	return &roundRobin{}
}

var roleIntroductions = map[Role]string{
	RoleIntentParser: "parses declared intents into measurable conditions",
	RoleLogAnalyst:   "extracts measurements from system logs with citations",
	RoleCausal:       "reasons about what caused the observed behavior",
	RoleSynthesizer:  "writes the final explanation record as fenced JSON",
	RoleEvaluator:    "checks the explanation for completeness and grounding",
}

func (g *GroupChat) Run(ctx context.Context, roster Roster, req *Request) (*Result, error) {
	if err := validateRoster(g, roster); err != nil {
		return nil, err
	}

	sel := g.Selector
	if sel == nil {
		sel = selectorFor(g.cfg.SpeakerSelection)
	}

	var t Transcript
	if g.cfg.SendIntroductions {
		var b strings.Builder
		b.WriteString("Participants in this discussion:\n")
		for _, r := range participants {
			fmt.Fprintf(&b, "- %s: %s\n", r, roleIntroductions[r])
		}
		t.Append(RoleCoordinator, b.String())
	}
	t.Append(RoleCoordinator, requestPreamble(req))
	t.Append(RoleCoordinator, analysisPreamble(req))

	maxRounds := g.cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 10
	}

	rounds := 0
	var final string
	for rounds < maxRounds {
		role := sel.Next(t.Messages(), participants)
		reply, err := roster[role].Invoke(ctx,
			"Continue the discussion in your role. Build on what has been said; "+
				"do not repeat established findings.",
			t.Messages())
		if err != nil {
			return nil, fmt.Errorf("group chat round %d (%s): %w", rounds+1, role, err)
		}
		rounds++
		t.Append(role, reply)

		if role == RoleSynthesizer && strings.Contains(reply, "```json") {
			final = reply
			break
		}
	}

	if final == "" {
		if m, ok := t.LastFrom(RoleSynthesizer); ok {
			final = m.Content
		} else if m, ok := t.Last(); ok {
			final = m.Content
		}
	}

	return &Result{
		Transcript: t.Messages(),
		Final:      final,
		Rounds:     rounds,
	}, nil
}
