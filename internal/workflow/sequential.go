package workflow

import (
	"context"
	"fmt"

	"github.com/iexplain/iexplain/internal/config"
)

// Sequential runs three fixed stages in order: intent parsing, log analysis,
// explanation synthesis. Each stage's findings are summarized and carried
// forward as context for the next.
type Sequential struct {
	cfg config.SequentialConfig
}

func (s *Sequential) Name() string { return string(config.WorkflowSequential) }

func (s *Sequential) Required() []Role {
	return []Role{RoleIntentParser, RoleLogAnalyst, RoleSynthesizer}
}

func (s *Sequential) Run(ctx context.Context, roster Roster, req *Request) (*Result, error) {
	if err := validateRoster(s, roster); err != nil {
		return nil, err
	}

	var t Transcript
	rounds := 0

	intentSummary, n, err := s.runStage(ctx, &t, roster[RoleIntentParser], RoleIntentParser,
		"Parse the intent below. Identify the objective, every measurable condition "+
			"with its threshold and unit, and any contextual constraints.",
		requestPreamble(req),
		max(s.cfg.IntentParsingTurns, 1))
	rounds += n
	if err != nil {
		return nil, fmt.Errorf("intent parsing stage: %w", err)
	}

	analysisSummary, n, err := s.runStage(ctx, &t, roster[RoleLogAnalyst], RoleLogAnalyst,
		"Analyze the logs against the parsed intent. Cite line numbers for every "+
			"measurement you report, and state each threshold violation explicitly.\n\n"+
			"Parsed intent:\n"+intentSummary,
		analysisPreamble(req),
		max(s.cfg.LogAnalysisTurns, 1))
	rounds += n
	if err != nil {
		return nil, fmt.Errorf("log analysis stage: %w", err)
	}

	final, n, err := s.runStage(ctx, &t, roster[RoleSynthesizer], RoleSynthesizer,
		"Write the final explanation of whether the intent was fulfilled, as a "+
			"fenced JSON code block matching the explanation record schema.",
		fmt.Sprintf("Parsed intent:\n%s\n\nLog analysis:\n%s", intentSummary, analysisSummary),
		max(s.cfg.ExplanationTurns, 1))
	rounds += n
	if err != nil {
		return nil, fmt.Errorf("synthesis stage: %w", err)
	}

	return &Result{
		Transcript: t.Messages(),
		Final:      final,
		Rounds:     rounds,
	}, nil
}

// runStage invokes one capability for up to turns rounds, then produces the
// carry-forward summary: a reflection turn when configured, otherwise the
// stage's last message verbatim.
func (s *Sequential) runStage(ctx context.Context, t *Transcript, c Capability, role Role, instructions, input string, turns int) (string, int, error) {
	t.Append(RoleCoordinator, input)
	rounds := 0

	var last string
	for i := 0; i < turns; i++ {
		task := instructions
		if i > 0 {
			task = "Refine and extend your previous answer. Correct any errors and add detail where evidence allows."
		}
		reply, err := c.Invoke(ctx, task, t.Messages())
		if err != nil {
			return "", rounds, err
		}
		rounds++
		t.Append(role, reply)
		last = reply
	}

	if s.cfg.UseReflectionSummary && role != RoleSynthesizer {
		summary, err := c.Invoke(ctx,
			"Summarize your findings above in a short, factual form for the next stage. "+
				"Keep every number, threshold, and citation.",
			t.Messages())
		if err != nil {
			return "", rounds, err
		}
		rounds++
		t.Append(role, summary)
		return summary, rounds, nil
	}
	return last, rounds, nil
}
