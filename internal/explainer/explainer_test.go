package explainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/db"
	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/intent"
	"github.com/iexplain/iexplain/internal/llm"
	"github.com/iexplain/iexplain/internal/runs"
)

const latencyTTL = `@prefix ex: <http://example.org/> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
@prefix dct: <http://purl.org/dc/terms/> .
@prefix set: <http://www.example.org/set#> .

ex:I1 a icm:Intent ;
    dct:description "Deliver API responses within 250ms"@en .

ex:DE1 a icm:DeliveryExpectation ;
    dct:description "Ensure low API response time"@en .

ex:C1 a icm:Condition ;
    dct:description "API response time must stay below threshold"@en ;
    set:forall [ icm:valuesOfTargetProperty ex:ResponseTime ] .

ex:CTX1 a icm:Context ;
    set:value "250" .
`

const latencyNL = "Deliver API responses to customers within 250 milliseconds.\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	root := t.TempDir()
	cfg.IntentsDir = filepath.Join(root, "intents")
	cfg.LogsDir = filepath.Join(root, "logs")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.Mode = config.ModeHeuristic
	cfg.RateLimitRPM = 0

	intentDir := filepath.Join(cfg.IntentsDir, "api-latency")
	if err := os.MkdirAll(intentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(intentDir, "api-latency.ttl"), []byte(latencyTTL), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(intentDir, "api-latency.txt"), []byte(latencyNL), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	var lines []string
	for i := 0; i < 9; i++ {
		lines = append(lines, fmt.Sprintf(`2025-08-01 10:00:0%d.000 123 INFO nova.osapi_compute.wsgi.server [req-1] "GET /v2/p/servers/detail" status: 200 len: 1893 time: 0.2100000`, i))
	}
	lines = append(lines, `2025-08-01 10:00:09.000 123 INFO nova.osapi_compute.wsgi.server [req-1] "GET /v2/p/servers/detail" status: 200 len: 1893 time: 0.3000000`)
	if err := os.WriteFile(filepath.Join(cfg.LogsDir, "nova-api.log"), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func testRunStore(t *testing.T) *runs.Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return runs.NewStore(d)
}

func TestExplainHeuristic(t *testing.T) {
	cfg := testConfig(t)
	store := testRunStore(t)
	e := New(cfg, store)

	result, err := e.Explain(context.Background(), "api-latency")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	r := result.Record
	if r.Intent.ID != "I1" {
		t.Errorf("intent id = %q", r.Intent.ID)
	}
	// 1 of 10 samples over threshold is inside the 20% latency band.
	if r.Outcome != evidence.OutcomePartial {
		t.Errorf("outcome = %q, want Partial Success", r.Outcome)
	}
	if len(r.Recommendations) == 0 {
		t.Error("expected heuristic recommendations")
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("record not written: %v", err)
	}
	if result.RunID == "" {
		t.Error("run was not recorded")
	}

	run, err := store.Get(result.RunID)
	if err != nil {
		t.Fatalf("loading run: %v", err)
	}
	if run.Mode != "heuristic" || run.Outcome != "Partial Success" {
		t.Errorf("run = %+v", run)
	}
}

// scriptedProvider emits a fenced record on the synthesis call and short
// acknowledgements otherwise.
type scriptedProvider struct {
	calls int
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	content := "noted"
	if strings.Contains(req.Messages[0].Content, "explanation writer") {
		content = "```json\n" + `{"outcome": "Partial Success", "outcome_explanation": "one sample over threshold", "influencing_factors": ["Request volume"]}` + "\n```"
	}
	return &llm.CompletionResponse{Content: content, InputTokens: 100, OutputTokens: 50}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func TestExplainAgents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeAgents
	cfg.Workflow = config.WorkflowSequential

	provider := &scriptedProvider{}
	e := New(cfg, testRunStore(t))
	e.newProvider = func(service, model string) (llm.Provider, error) {
		return provider, nil
	}

	result, err := e.Explain(context.Background(), "api-latency")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	r := result.Record
	if r.Outcome != evidence.OutcomePartial {
		t.Errorf("outcome = %q", r.Outcome)
	}
	if r.Session == nil || r.Session.Workflow != "sequential" {
		t.Fatalf("session = %+v", r.Session)
	}
	if r.Session.ExtractionTier != "json" {
		t.Errorf("extraction tier = %q", r.Session.ExtractionTier)
	}
	if len(r.Session.Transcript) == 0 {
		t.Error("transcript missing from record")
	}
	if r.Session.InputTokens == 0 || r.Session.Rounds == 0 {
		t.Errorf("usage not tracked: %+v", r.Session)
	}
	if provider.calls != r.Session.Rounds {
		t.Errorf("provider calls = %d, rounds = %d", provider.calls, r.Session.Rounds)
	}
	// The model's verdict never overrides the catalog identity.
	if r.Intent.ID != "I1" {
		t.Errorf("intent id = %q", r.Intent.ID)
	}
}

func TestExplainEmptyIntentFatalInAgentsMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeAgents
	cfg.Workflow = config.WorkflowSequential

	dir := filepath.Join(cfg.IntentsDir, "blank")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "blank.ttl"), []byte("   \n\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := &scriptedProvider{}
	e := New(cfg, nil)
	e.newProvider = func(service, model string) (llm.Provider, error) {
		return provider, nil
	}

	if _, err := e.Explain(context.Background(), "blank"); !errors.Is(err, intent.ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider invoked %d times for an empty intent", provider.calls)
	}
	if entries, _ := os.ReadDir(cfg.OutputDir); len(entries) != 0 {
		t.Error("record written for an empty intent")
	}
}

func TestExplainRecordsIntentDocuments(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg, nil)

	result, err := e.Explain(context.Background(), "api-latency")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if result.Record.StructuredIntent != latencyTTL {
		t.Error("structured intent text not carried onto the record")
	}
	if result.Record.NaturalLanguageIntent != latencyNL {
		t.Error("natural-language intent text not carried onto the record")
	}
}

func TestExplainMissingIntent(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg, nil)
	if _, err := e.Explain(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown intent")
	}
}

func TestExplainNoLogsIsUnknown(t *testing.T) {
	cfg := testConfig(t)
	os.RemoveAll(cfg.LogsDir)
	os.MkdirAll(cfg.LogsDir, 0o755)

	e := New(cfg, nil)
	result, err := e.Explain(context.Background(), "api-latency")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if result.Record.Outcome != evidence.OutcomeUnknown {
		t.Errorf("outcome = %q, want Unknown", result.Record.Outcome)
	}
	if len(result.Record.Session.Warnings) == 0 {
		t.Error("expected a warning about missing logs")
	}
}
