package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/intent"
)

func latencyRequirement(threshold float64) *intent.Requirement {
	return &intent.Requirement{
		ID:               "I1",
		PrimaryObjective: "API response time below threshold",
		Metrics: []intent.Metric{
			{Name: "api_response_time", Comparator: intent.Less, Threshold: threshold, Unit: "ms"},
		},
	}
}

func apiLine(ts string, seconds float64) string {
	return fmt.Sprintf(`%s 12345 INFO nova.osapi_compute.wsgi.server [req-1] 10.0.0.5 "GET /v2/abc/servers/detail HTTP/1.1" status: 200 len: 1893 time: %.7f`, ts, seconds)
}

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "nova-api.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing log fixture: %v", err)
	}
	return path
}

// mixedLatencyLog holds 10 matching lines: 8 under 250ms, 2 at 300ms.
func mixedLatencyLog(t *testing.T) string {
	t.Helper()
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, apiLine(fmt.Sprintf("2025-08-01 10:00:0%d.000", i), 0.210))
	}
	lines = append(lines,
		apiLine("2025-08-01 10:00:08.000", 0.300),
		apiLine("2025-08-01 10:00:09.000", 0.300),
		"2025-08-01 10:00:10.000 12345 INFO nova.scheduler.manager [req-2] unrelated line",
	)
	return writeLog(t, lines)
}

func TestAnalyzeLatencyViolations(t *testing.T) {
	path := mixedLatencyLog(t)
	req := latencyRequirement(250)

	a := NewAnalyzer(config.ToleranceConfig{LatencyPct: 0.20, DurationPct: 0.10, DefaultPct: 0.10})
	result := a.Analyze([]string{path}, req)

	if result.FilesScanned != 1 || result.FilesFailed != 0 {
		t.Fatalf("FilesScanned=%d FilesFailed=%d, want 1/0", result.FilesScanned, result.FilesFailed)
	}
	if len(result.Evidence) != 10 {
		t.Fatalf("got %d evidence entries, want 10", len(result.Evidence))
	}
	if len(result.Violations) != 2 {
		t.Fatalf("got %d violations, want 2", len(result.Violations))
	}
	for _, v := range result.Violations {
		if v.Value != 300 {
			t.Errorf("violation value = %v, want 300", v.Value)
		}
		if v.Unit != "ms" {
			t.Errorf("violation unit = %q, want ms", v.Unit)
		}
		if v.File != path || v.Line == 0 {
			t.Errorf("violation missing source citation: file=%q line=%d", v.File, v.Line)
		}
	}

	agg := result.PerMetric["api_response_time"]
	if agg.Count != 10 || agg.Violations != 2 {
		t.Errorf("aggregate count=%d violations=%d, want 10/2", agg.Count, agg.Violations)
	}
	if agg.Max != 300 {
		t.Errorf("aggregate max = %v, want 300", agg.Max)
	}
	wantAvg := (8*210.0 + 2*300.0) / 10
	if diff := agg.Avg - wantAvg; diff > 0.001 || diff < -0.001 {
		t.Errorf("aggregate avg = %v, want %v", agg.Avg, wantAvg)
	}

	// 2/10 = 0.20 sits exactly at the 20% band.
	if result.Outcome != OutcomePartial {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomePartial)
	}
}

func TestAnalyzeTighterToleranceFails(t *testing.T) {
	path := mixedLatencyLog(t)
	req := latencyRequirement(250)

	a := NewAnalyzer(config.ToleranceConfig{LatencyPct: 0.10, DurationPct: 0.10, DefaultPct: 0.10})
	result := a.Analyze([]string{path}, req)

	if result.Outcome != OutcomeFailure {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomeFailure)
	}
}

func TestAnalyzeNoEvidenceIsUnknown(t *testing.T) {
	path := writeLog(t, []string{
		"2025-08-01 10:00:00.000 12345 INFO nova.scheduler.manager [req-1] nothing relevant",
		"2025-08-01 10:00:01.000 12345 INFO keystone.middleware [req-2] still nothing",
	})
	req := latencyRequirement(250)

	a := NewAnalyzer(config.DefaultConfig().Tolerance)
	result := a.Analyze([]string{path}, req)

	if result.Outcome != OutcomeUnknown {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomeUnknown)
	}
	if len(result.Evidence) != 0 || len(result.Violations) != 0 {
		t.Errorf("expected no evidence, got %d evidence / %d violations",
			len(result.Evidence), len(result.Violations))
	}
}

func TestAnalyzeBoundaryValueCompliant(t *testing.T) {
	path := writeLog(t, []string{apiLine("2025-08-01 10:00:00.000", 0.250)})
	req := latencyRequirement(250)

	a := NewAnalyzer(config.DefaultConfig().Tolerance)
	result := a.Analyze([]string{path}, req)

	if len(result.Violations) != 0 {
		t.Fatalf("value at threshold counted as violation")
	}
	if result.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomeSuccess)
	}
}

func TestAnalyzeVMStartup(t *testing.T) {
	path := writeLog(t, []string{
		"2025-08-01 10:00:00.000 9876 INFO nova.compute.manager [req-1] [instance: abc] Took 22.50 seconds to build instance.",
		"2025-08-01 10:00:05.000 9876 INFO nova.compute.manager [req-1] [instance: abc] Instance spawned in 22.50 seconds.",
		"2025-08-01 10:01:00.000 9876 INFO nova.compute.manager [req-2] [instance: def] Instance spawned in 35.00 seconds.",
	})
	req := &intent.Requirement{
		ID: "I2",
		Metrics: []intent.Metric{
			{Name: "vm_startup_time", Comparator: intent.Less, Threshold: 30, Unit: "s"},
		},
	}

	a := NewAnalyzer(config.DefaultConfig().Tolerance)
	result := a.Analyze([]string{path}, req)

	agg := result.PerMetric["vm_startup_time"]
	if agg.Count != 2 {
		t.Fatalf("count = %d, want 2", agg.Count)
	}
	if agg.Max != 35 {
		t.Errorf("max = %v, want 35", agg.Max)
	}
	// 1/2 violations exceeds the 10% duration band.
	if result.Outcome != OutcomeFailure {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomeFailure)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	path := mixedLatencyLog(t)
	req := latencyRequirement(250)
	a := NewAnalyzer(config.DefaultConfig().Tolerance)

	first := a.Analyze([]string{path}, req)
	second := a.Analyze([]string{path}, req)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of unchanged inputs produced different results")
	}
}

func TestAnalyzeMissingFileWarns(t *testing.T) {
	good := mixedLatencyLog(t)
	req := latencyRequirement(250)
	a := NewAnalyzer(config.ToleranceConfig{LatencyPct: 0.20, DurationPct: 0.10, DefaultPct: 0.10})

	result := a.Analyze([]string{"/nonexistent/nova.log", good}, req)

	if result.FilesFailed != 1 || result.FilesScanned != 1 {
		t.Fatalf("FilesFailed=%d FilesScanned=%d, want 1/1", result.FilesFailed, result.FilesScanned)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the unreadable file")
	}
	if len(result.Evidence) != 10 {
		t.Errorf("good file should still be analyzed, got %d evidence", len(result.Evidence))
	}
}

func TestAnalyzeUnknownUnitSkipped(t *testing.T) {
	path := mixedLatencyLog(t)
	req := &intent.Requirement{
		ID: "I3",
		Metrics: []intent.Metric{
			{Name: "widget_quality", Comparator: intent.Greater, Threshold: 5, Unit: ""},
		},
	}

	a := NewAnalyzer(config.DefaultConfig().Tolerance)
	result := a.Analyze([]string{path}, req)

	if len(result.Evidence) != 0 {
		t.Errorf("metric without a unit must not collect evidence, got %d", len(result.Evidence))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "widget_quality") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning naming the skipped metric")
	}
	if result.Outcome != OutcomeUnknown {
		t.Errorf("outcome = %q, want %q", result.Outcome, OutcomeUnknown)
	}
}

func TestRuleExtract(t *testing.T) {
	tests := []struct {
		name  string
		rule  string
		line  string
		want  float64
		match bool
	}{
		{
			name:  "api seconds to ms",
			rule:  "api_response_time",
			line:  apiLine("2025-08-01 10:00:00.000", 0.1234567),
			want:  123.4567,
			match: true,
		},
		{
			name:  "spawn seconds",
			rule:  "vm_startup_time",
			line:  "2025-08-01 10:00:05.000 9876 INFO nova.compute.manager [instance: abc] Instance spawned in 21.75 seconds.",
			want:  21.75,
			match: true,
		},
		{
			name:  "partial markers no match",
			rule:  "api_response_time",
			line:  `2025-08-01 10:00:00.000 INFO nova.osapi_compute.wsgi.server "POST /v2/abc/servers" time: 0.5`,
			match: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := RuleFor(tt.rule)
			if !ok {
				t.Fatalf("no rule for %q", tt.rule)
			}
			if rule.Matches(tt.line) != tt.match {
				t.Fatalf("Matches = %v, want %v", rule.Matches(tt.line), tt.match)
			}
			if !tt.match {
				return
			}
			got, ok := rule.Extract(tt.line)
			if !ok {
				t.Fatal("Extract failed on matching line")
			}
			if diff := got - tt.want; diff > 0.0001 || diff < -0.0001 {
				t.Errorf("Extract = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadExcerpt(t *testing.T) {
	path := writeLog(t, []string{"line one", "line two", strings.Repeat("x", 50)})

	ex := ReadExcerpt([]string{path}, 2, 10)

	if ex.TotalLines != 2 {
		t.Errorf("TotalLines = %d, want 2", ex.TotalLines)
	}
	if len(ex.Truncated) != 1 {
		t.Errorf("expected the file to be marked truncated")
	}
	if !strings.Contains(ex.Content, "     1: line one") {
		t.Error("excerpt lines should carry numbers for citation")
	}
	if !strings.Contains(ex.Content, "TRUNCATED") {
		t.Error("excerpt should annotate truncation")
	}
}

func TestReadExcerptMissingFile(t *testing.T) {
	ex := ReadExcerpt([]string{"/nonexistent/file.log"}, 100, 100)

	if len(ex.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(ex.Errors))
	}
	if !strings.Contains(ex.Content, "[ERROR:") {
		t.Error("excerpt should annotate the read error inline")
	}
}

func TestRecommendationsByMetricClass(t *testing.T) {
	req := latencyRequirement(250)
	result := &AnalysisResult{
		PerMetric: map[string]Aggregate{
			"api_response_time": {Count: 10, Violations: 2},
		},
	}

	recs := Recommendations(req, result)
	if len(recs) == 0 {
		t.Fatal("expected recommendations for a metric with violations")
	}
	for _, r := range recs {
		if r.Action == "" || r.Reason == "" {
			t.Errorf("recommendation missing action or reason: %+v", r)
		}
	}

	clean := &AnalysisResult{
		PerMetric: map[string]Aggregate{
			"api_response_time": {Count: 10},
		},
	}
	recs = Recommendations(req, clean)
	if len(recs) != 1 || !strings.Contains(recs[0].Action, "Monitor") {
		t.Errorf("clean latency run should suggest monitoring, got %+v", recs)
	}
}

func TestInfluencingFactorsFallback(t *testing.T) {
	req := &intent.Requirement{Metrics: []intent.Metric{{Name: "widget_quality"}}}
	factors := InfluencingFactors(req, &AnalysisResult{PerMetric: map[string]Aggregate{}})
	if len(factors) != 1 || factors[0] != "Log analysis incomplete" {
		t.Errorf("unexpected fallback factors: %v", factors)
	}
}
