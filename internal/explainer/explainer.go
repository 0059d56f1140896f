// Package explainer runs the full explanation pipeline: intent loading,
// evidence analysis, reasoning workflow, normalization, and record assembly.
package explainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/iexplain/iexplain/internal/agents"
	"github.com/iexplain/iexplain/internal/catalog"
	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/evidence"
	"github.com/iexplain/iexplain/internal/explanation"
	"github.com/iexplain/iexplain/internal/intent"
	"github.com/iexplain/iexplain/internal/llm"
	"github.com/iexplain/iexplain/internal/normalize"
	"github.com/iexplain/iexplain/internal/progress"
	"github.com/iexplain/iexplain/internal/runs"
	"github.com/iexplain/iexplain/internal/workflow"
)

// Explainer produces explanation records for cataloged intents.
type Explainer struct {
	cfg      *config.Config
	store    *runs.Store
	reporter progress.Reporter

	// newProvider is swapped in tests to avoid real network providers.
	newProvider func(service, model string) (llm.Provider, error)
}

// New creates an Explainer. The run store may be nil, in which case runs are
// not recorded.
func New(cfg *config.Config, store *runs.Store) *Explainer {
	return &Explainer{
		cfg:         cfg,
		store:       store,
		reporter:    progress.NewReporter(),
		newProvider: llm.NewProvider,
	}
}

// RunResult is what one explanation run produced.
type RunResult struct {
	Record     *explanation.Record
	OutputPath string
	RunID      string
}

// Explain runs the configured pipeline for one intent and persists the
// resulting record.
func (e *Explainer) Explain(ctx context.Context, intentName string) (*RunResult, error) {
	started := time.Now()
	e.reporter.Start(5)
	defer e.reporter.Finish()

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}

	e.reporter.Update(1, "Loading intent "+intentName)
	entry, docs, err := catalog.Load(e.cfg.IntentsDir, intentName)
	if err != nil {
		return nil, fmt.Errorf("loading intent %s: %w", intentName, err)
	}

	req, err := intent.Extract(docs.Primary(), entry.Format)
	switch {
	case errors.Is(err, intent.ErrEmptyInput):
		// An empty document aborts the run in every mode; there is
		// nothing to explain.
		return nil, fmt.Errorf("extracting intent %s: %w", intentName, err)
	case errors.Is(err, intent.ErrNoDescriptions):
		// Extract still returns a requirement shell; downstream classifies
		// Unknown instead of failing.
		warn("intent %s has no descriptions; outcome will be Unknown", intentName)
	case err != nil && e.cfg.Mode == config.ModeHeuristic:
		return nil, fmt.Errorf("extracting intent %s: %w", intentName, err)
	case err != nil:
		// The reasoning workflow can still work from the raw document.
		warn("intent extraction failed, continuing with raw document: %v", err)
		req = nil
	}

	e.reporter.Update(2, "Resolving logs")
	logPaths, err := catalog.ResolveLogs(e.cfg.LogsDir, entry.LogGlobs)
	if err != nil {
		return nil, fmt.Errorf("resolving logs for %s: %w", intentName, err)
	}
	if len(logPaths) == 0 {
		warn("no log files matched patterns %v", entry.LogGlobs)
	}

	e.reporter.Update(3, "Analyzing evidence")
	var analysis *evidence.AnalysisResult
	if req != nil {
		analysis = evidence.NewAnalyzer(e.cfg.Tolerance).Analyze(logPaths, req)
		warnings = append(warnings, analysis.Warnings...)
	}

	e.reporter.Update(4, "Producing explanation")
	var draft *normalize.Draft
	sess := &explanation.Session{Mode: string(e.cfg.Mode)}

	switch e.cfg.Mode {
	case config.ModeHeuristic:
		draft = heuristicDraft(req, analysis)
	default:
		draft, err = e.runWorkflow(ctx, entry, docs, req, analysis, logPaths, sess)
		if err != nil {
			return nil, err
		}
	}

	e.reporter.Update(5, "Writing record")
	sess.Warnings = append(sess.Warnings, warnings...)
	sess.DurationSeconds = time.Since(started).Seconds()

	assembler := explanation.NewAssembler(e.cfg.Fields)
	src := explanation.Source{Natural: docs.Natural, Structured: docs.Structured}
	record := assembler.Assemble(entry.Meta, src, draft, sess)

	outputPath, err := explanation.Save(e.cfg.OutputDir, record)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Record: record, OutputPath: outputPath}
	if e.store != nil {
		runID, err := e.store.Record(&runs.Run{
			IntentID:        record.Intent.ID,
			Mode:            string(e.cfg.Mode),
			Workflow:        record.Session.Workflow,
			Provider:        record.Session.Provider,
			Model:           record.Session.Model,
			Outcome:         string(record.Outcome),
			OutputPath:      outputPath,
			DurationSeconds: record.Session.DurationSeconds,
			Rounds:          record.Session.Rounds,
			InputTokens:     record.Session.InputTokens,
			OutputTokens:    record.Session.OutputTokens,
			EstimatedCost:   record.Session.EstimatedCost,
			Warnings:        record.Session.Warnings,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording run history: %v\n", err)
		} else {
			result.RunID = runID
		}
	}
	return result, nil
}

// runWorkflow executes the configured reasoning strategy and normalizes its
// output.
func (e *Explainer) runWorkflow(ctx context.Context, entry *catalog.Entry, docs *catalog.Documents, req *intent.Requirement, analysis *evidence.AnalysisResult, logPaths []string, sess *explanation.Session) (*normalize.Draft, error) {
	provider, err := e.newProvider(string(e.cfg.Provider), e.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	if e.cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, e.cfg.RateLimitRPM)
	}

	strategy, err := workflow.ForType(e.cfg.Workflow, e.cfg)
	if err != nil {
		return nil, err
	}

	roster, usage := agents.BuildRoster(provider, e.cfg.Model)
	excerpt := evidence.ReadExcerpt(logPaths, e.cfg.MaxLogLines, e.cfg.MaxLineLength)

	wreq := &workflow.Request{
		IntentID:   entry.Meta.ID,
		IntentText: docs.Primary(),
		LogExcerpt: excerpt.Content,
	}
	if docs.Structured != "" {
		wreq.NaturalText = docs.Natural
	}
	if req != nil {
		wreq.Summary = summarizeRequirement(req)
	}
	if analysis != nil {
		wreq.EvidenceSummary = summarizeEvidence(analysis)
	}

	result, err := strategy.Run(ctx, roster, wreq)
	if err != nil {
		return nil, fmt.Errorf("running %s workflow: %w", strategy.Name(), err)
	}

	in, out, _ := usage.Totals()
	sess.Workflow = strategy.Name()
	sess.Provider = provider.Name()
	sess.Model = e.cfg.Model
	sess.Rounds = result.Rounds
	sess.InputTokens = in
	sess.OutputTokens = out
	sess.EstimatedCost = llm.EstimateCost(e.cfg.Model, in, out)
	sess.Transcript = result.Transcript

	return normalize.FromWorkflow(result.Final, result.Transcript), nil
}

// heuristicDraft builds an explanation directly from the deterministic
// evidence analysis, without any reasoning workflow.
func heuristicDraft(req *intent.Requirement, analysis *evidence.AnalysisResult) *normalize.Draft {
	if req == nil || analysis == nil {
		return &normalize.Draft{
			Outcome:            evidence.OutcomeUnknown,
			OutcomeExplanation: "No measurable conditions could be extracted from the intent.",
			Analysis:           map[string]any{},
			InfluencingFactors: []string{"Log analysis incomplete"},
		}
	}

	d := &normalize.Draft{
		Outcome:              analysis.Outcome,
		OutcomeExplanation:   explainOutcome(req, analysis),
		SystemInterpretation: req.PrimaryObjective,
		Analysis:             map[string]any{},
		Recommendations:      evidence.Recommendations(req, analysis),
		InfluencingFactors:   evidence.InfluencingFactors(req, analysis),
	}
	for name, agg := range analysis.PerMetric {
		d.Analysis[name] = map[string]any{
			"count":      agg.Count,
			"avg":        agg.Avg,
			"max":        agg.Max,
			"violations": agg.Violations,
		}
	}
	for _, m := range req.Metrics {
		agg := analysis.PerMetric[m.Name]
		if agg.Count > 0 {
			d.KeyActions = append(d.KeyActions,
				fmt.Sprintf("Measured %s across %d log entries", m.Name, agg.Count))
		}
	}
	return d
}

// explainOutcome writes the one-paragraph verdict for a heuristic run.
func explainOutcome(req *intent.Requirement, analysis *evidence.AnalysisResult) string {
	switch analysis.Outcome {
	case evidence.OutcomeSuccess:
		return "All measured values satisfied the intent's conditions."
	case evidence.OutcomeUnknown:
		return "The logs contained no evidence for the intent's conditions."
	}

	var parts string
	for _, m := range req.Metrics {
		agg := analysis.PerMetric[m.Name]
		if agg.Violations == 0 {
			continue
		}
		parts += fmt.Sprintf(" %d of %d %s samples violated the %s%g%s threshold.",
			agg.Violations, agg.Count, m.Name, m.Comparator, m.Threshold, m.Unit)
	}
	if analysis.Outcome == evidence.OutcomePartial {
		return "The intent was mostly fulfilled." + parts
	}
	return "The intent was not fulfilled." + parts
}

// summarizeRequirement renders an extracted requirement for prompts.
func summarizeRequirement(req *intent.Requirement) string {
	s := fmt.Sprintf("ID: %s\nObjective: %s\n", req.ID, req.PrimaryObjective)
	for _, m := range req.Metrics {
		s += fmt.Sprintf("Condition: %s %s %g %s\n", m.Name, m.Comparator, m.Threshold, m.Unit)
	}
	if len(req.Context.Regions) > 0 {
		s += fmt.Sprintf("Regions: %v\n", req.Context.Regions)
	}
	return s
}

// summarizeEvidence renders the deterministic measurements for prompts.
func summarizeEvidence(analysis *evidence.AnalysisResult) string {
	if len(analysis.PerMetric) == 0 {
		return "No matching measurements were found in the logs."
	}
	s := fmt.Sprintf("Scanned %d lines across %d files.\n", analysis.TotalLines, analysis.FilesScanned)
	for name, agg := range analysis.PerMetric {
		s += fmt.Sprintf("%s: %d samples, avg %.2f, max %.2f, %d violations\n",
			name, agg.Count, agg.Avg, agg.Max, agg.Violations)
	}
	return s
}
