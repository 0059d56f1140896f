package workflow

import (
	"context"
	"fmt"

	"github.com/iexplain/iexplain/internal/config"
)

// Nested runs an outer synthesis conversation that delegates to specialist
// sub-conversations: intent parsing at depth 1, log analysis at depth 2, and
// causal inference at depth 3. Depths beyond MaxNestedDepth are skipped, so
// a shallow budget still produces an explanation from whatever specialist
// findings were gathered.
type Nested struct {
	cfg config.NestedConfig
}

func (n *Nested) Name() string { return string(config.WorkflowNested) }

func (n *Nested) Required() []Role {
	return []Role{RoleIntentParser, RoleLogAnalyst, RoleCausal, RoleSynthesizer}
}

// delegation binds one nesting depth to a specialist role and its task.
type delegation struct {
	depth int
	role  Role
	task  string
	turns int
}

func (n *Nested) Run(ctx context.Context, roster Roster, req *Request) (*Result, error) {
	if err := validateRoster(n, roster); err != nil {
		return nil, err
	}

	var t Transcript
	rounds := 0

	delegations := []delegation{
		{
			depth: 1,
			role:  RoleIntentParser,
			task: "Parse the intent below. Identify the objective, every measurable " +
				"condition with its threshold and unit, and any contextual constraints.",
			turns: max(n.cfg.IntentParsingTurns, 1),
		},
		{
			depth: 2,
			role:  RoleLogAnalyst,
			task: "Analyze the logs against the parsed intent. Cite line numbers for " +
				"every measurement and state each threshold violation explicitly.",
			turns: max(n.cfg.LogAnalysisTurns, 1),
		},
		{
			depth: 3,
			role:  RoleCausal,
			task: "From the parsed intent and log analysis above, explain what caused " +
				"the observed behavior and which factors most influenced the outcome.",
			turns: 1,
		},
	}

	t.Append(RoleCoordinator, requestPreamble(req))

	findings := make(map[Role]string)
	for _, d := range delegations {
		if d.depth > n.cfg.MaxNestedDepth {
			break
		}
		if d.role == RoleLogAnalyst {
			t.Append(RoleCoordinator, analysisPreamble(req))
		}
		reply, nturns, err := n.subChat(ctx, &t, roster[d.role], d.role, d.task, d.turns)
		rounds += nturns
		if err != nil {
			return nil, fmt.Errorf("nested %s sub-conversation: %w", d.role, err)
		}
		findings[d.role] = reply
	}

	synthesisTask := "Write the final explanation of whether the intent was fulfilled, " +
		"as a fenced JSON code block matching the explanation record schema. " +
		"Base it only on the specialist findings above."
	final, nturns, err := n.subChat(ctx, &t, roster[RoleSynthesizer], RoleSynthesizer,
		synthesisTask, max(n.cfg.ExplanationTurns, 1))
	rounds += nturns
	if err != nil {
		return nil, fmt.Errorf("nested synthesis: %w", err)
	}

	return &Result{
		Transcript: t.Messages(),
		Final:      final,
		Rounds:     rounds,
	}, nil
}

func (n *Nested) subChat(ctx context.Context, t *Transcript, c Capability, role Role, task string, turns int) (string, int, error) {
	rounds := 0
	var last string
	for i := 0; i < turns; i++ {
		instructions := task
		if i > 0 {
			instructions = "Refine your previous answer using the full conversation above."
		}
		reply, err := c.Invoke(ctx, instructions, t.Messages())
		if err != nil {
			return "", rounds, err
		}
		rounds++
		t.Append(role, reply)
		last = reply
	}
	return last, rounds, nil
}
