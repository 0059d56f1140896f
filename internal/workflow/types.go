package workflow

import (
	"context"
	"fmt"
	"strings"
)

// Role identifies a reasoning capability within a workflow.
type Role string

const (
	RoleIntentParser Role = "intent-parser"
	RoleLogAnalyst   Role = "log-analyst"
	RoleCausal       Role = "causal-inference"
	RoleSynthesizer  Role = "explanation-synthesizer"
	RoleEvaluator    Role = "evaluator"

	// RoleCoordinator marks context injected by the orchestrator itself.
	// It never invokes a reasoning capability.
	RoleCoordinator Role = "coordinator"
)

// Message is one turn of a workflow conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Turn    int    `json:"turn"`
}

// Transcript is the append-only record of a workflow run. Turns are numbered
// from 1 in append order; entries are never modified after the fact.
type Transcript struct {
	messages []Message
}

// Append adds a message and assigns it the next turn number.
func (t *Transcript) Append(role Role, content string) {
	t.messages = append(t.messages, Message{
		Role:    role,
		Content: content,
		Turn:    len(t.messages) + 1,
	})
}

// Messages returns a copy of the transcript so far.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of turns recorded.
func (t *Transcript) Len() int { return len(t.messages) }

// Last returns the most recent message, if any.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastFrom returns the most recent message spoken by the given role.
func (t *Transcript) LastFrom(role Role) (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == role {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Capability is a bound reasoning agent: it holds its own persona and turns
// a task instruction plus the conversation so far into a reply.
type Capability interface {
	Invoke(ctx context.Context, instructions string, conversation []Message) (string, error)
}

// Roster maps workflow roles to the capabilities that play them.
type Roster map[Role]Capability

// Request carries the inputs of one explanation workflow run.
type Request struct {
	IntentID   string
	IntentText string
	// NaturalText is the companion natural-language description, empty
	// when the intent has no separate text document.
	NaturalText string
	// Summary is the structured requirement rendered as text, when
	// extraction succeeded.
	Summary string
	// LogExcerpt is the bounded, line-numbered log content.
	LogExcerpt string
	// EvidenceSummary is the pre-computed measurement summary, empty when
	// no deterministic evidence was found.
	EvidenceSummary string
}

// Result is the outcome of a workflow run.
type Result struct {
	// Transcript holds every turn in order.
	Transcript []Message
	// Final is the synthesized explanation text, normally containing a
	// fenced JSON record.
	Final string
	// Rounds is the number of capability invocations performed.
	Rounds int
}

// MissingRoleError reports roles a strategy requires but the roster lacks.
// It is returned before any capability is invoked, so a failed run leaves no
// partial transcript.
type MissingRoleError struct {
	Strategy string
	Missing  []Role
}

func (e *MissingRoleError) Error() string {
	names := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		names[i] = string(r)
	}
	return fmt.Sprintf("workflow %s: roster missing roles: %s", e.Strategy, strings.Join(names, ", "))
}
