package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/iexplain/iexplain/internal/llm"
	"github.com/iexplain/iexplain/internal/workflow"
)

// Agent binds a reasoning role to a provider and model. It implements
// workflow.Capability.
type Agent struct {
	role     workflow.Role
	persona  string
	provider llm.Provider
	model    string
	usage    *llm.Usage
}

// Invoke renders the conversation from this agent's perspective and requests
// a completion. The agent's own earlier turns become assistant messages;
// everything else arrives as labeled user content.
func (a *Agent) Invoke(ctx context.Context, instructions string, conversation []workflow.Message) (string, error) {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: a.persona}}

	for _, m := range conversation {
		if m.Role == a.role {
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
			continue
		}
		msgs = append(msgs, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("[%s] %s", m.Role, m.Content),
		})
	}
	if instructions != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: instructions})
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model:    a.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.role, err)
	}
	a.usage.Add(resp)
	return strings.TrimSpace(resp.Content), nil
}

// BuildRoster binds every known role to the given provider and model. Token
// usage across all agents accumulates into the returned Usage.
func BuildRoster(provider llm.Provider, model string) (workflow.Roster, *llm.Usage) {
	usage := &llm.Usage{}
	roster := workflow.Roster{}
	for role, persona := range personas {
		roster[role] = &Agent{
			role:     role,
			persona:  persona,
			provider: provider,
			model:    model,
			usage:    usage,
		}
	}
	return roster, usage
}
