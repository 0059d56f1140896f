package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/iexplain/iexplain/internal/llm"
	"github.com/iexplain/iexplain/internal/workflow"
)

type recordingProvider struct {
	requests []llm.CompletionRequest
	reply    string
}

func (p *recordingProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	return &llm.CompletionResponse{Content: p.reply, InputTokens: 10, OutputTokens: 5}, nil
}

func (p *recordingProvider) Name() string { return "recording" }

func TestBuildRosterCoversAllRoles(t *testing.T) {
	provider := &recordingProvider{reply: "ok"}
	roster, usage := BuildRoster(provider, "test-model")

	want := []workflow.Role{
		workflow.RoleIntentParser,
		workflow.RoleLogAnalyst,
		workflow.RoleCausal,
		workflow.RoleSynthesizer,
		workflow.RoleEvaluator,
	}
	for _, r := range want {
		if _, ok := roster[r]; !ok {
			t.Errorf("roster missing role %s", r)
		}
	}
	if usage == nil {
		t.Fatal("expected a shared usage accumulator")
	}
}

func TestInvokePerspective(t *testing.T) {
	provider := &recordingProvider{reply: "  analysis done  "}
	roster, _ := BuildRoster(provider, "test-model")

	conversation := []workflow.Message{
		{Role: workflow.RoleCoordinator, Content: "intent context", Turn: 1},
		{Role: workflow.RoleLogAnalyst, Content: "earlier finding", Turn: 2},
		{Role: workflow.RoleIntentParser, Content: "parsed conditions", Turn: 3},
	}

	got, err := roster[workflow.RoleLogAnalyst].Invoke(context.Background(), "analyze the logs", conversation)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "analysis done" {
		t.Errorf("reply not trimmed: %q", got)
	}

	req := provider.requests[0]
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if req.Messages[0].Role != llm.RoleSystem {
		t.Fatal("first message must be the persona system message")
	}
	// The agent's own turn is assistant; other speakers arrive labeled.
	if req.Messages[2].Role != llm.RoleAssistant || req.Messages[2].Content != "earlier finding" {
		t.Errorf("own turn not rendered as assistant: %+v", req.Messages[2])
	}
	if req.Messages[3].Role != llm.RoleUser || !strings.HasPrefix(req.Messages[3].Content, "[intent-parser]") {
		t.Errorf("other speaker not labeled: %+v", req.Messages[3])
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Content != "analyze the logs" {
		t.Errorf("instructions must be the final user message, got %q", last.Content)
	}
}

func TestInvokeAccumulatesUsage(t *testing.T) {
	provider := &recordingProvider{reply: "ok"}
	roster, usage := BuildRoster(provider, "m")

	ctx := context.Background()
	roster[workflow.RoleIntentParser].Invoke(ctx, "a", nil)
	roster[workflow.RoleSynthesizer].Invoke(ctx, "b", nil)

	in, out, calls := usage.Totals()
	if calls != 2 || in != 20 || out != 10 {
		t.Errorf("usage = %d in / %d out / %d calls", in, out, calls)
	}
}

func TestPersonasMentionSchema(t *testing.T) {
	p, ok := Persona(workflow.RoleSynthesizer)
	if !ok {
		t.Fatal("no synthesizer persona")
	}
	for _, field := range []string{"outcome", "recommendations", "influencing_factors"} {
		if !strings.Contains(p, field) {
			t.Errorf("synthesizer persona missing schema field %q", field)
		}
	}
}
