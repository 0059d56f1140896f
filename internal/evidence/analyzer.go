package evidence

import (
	"bufio"
	"fmt"
	"os"
	"regexp"

	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/intent"
)

// maxStoredEvidence caps the number of Evidence samples retained per metric.
// Aggregates and violation counts stay exact beyond the cap; only the sample
// list stops growing, since log volumes are unbounded.
const maxStoredEvidence = 1000

// maxScanLineBytes is the line-length limit for the scanner.
const maxScanLineBytes = 1 << 20

var timestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?)`)

// Analyzer scans log files for metric evidence and classifies threshold
// compliance against a requirement.
type Analyzer struct {
	tolerance config.ToleranceConfig
}

// NewAnalyzer creates an Analyzer with the given tolerance bands.
func NewAnalyzer(tolerance config.ToleranceConfig) *Analyzer {
	return &Analyzer{tolerance: tolerance}
}

// matcher pairs a requirement metric with its log rule and running state.
type matcher struct {
	metric intent.Metric
	rule   MatchRule
	stored int
}

// Analyze streams every log file line by line, extracts evidence for each
// requirement metric with a known rule, and classifies the overall outcome.
// Unreadable files are recorded as warnings; the scan continues with the
// remaining files. Re-running on unchanged inputs yields identical results.
func (a *Analyzer) Analyze(logPaths []string, req *intent.Requirement) *AnalysisResult {
	result := &AnalysisResult{
		PerMetric: make(map[string]Aggregate),
	}

	var matchers []*matcher
	for _, m := range req.Metrics {
		rule, ok := RuleFor(m.Name)
		if !ok {
			if m.Unit == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("metric %q has no inferred unit; skipping log matching", m.Name))
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("no matching rule for metric %q", m.Name))
			}
			continue
		}
		matchers = append(matchers, &matcher{metric: m, rule: rule})
	}

	for _, path := range logPaths {
		if err := a.scanFile(path, matchers, result); err != nil {
			result.FilesFailed++
			result.Warnings = append(result.Warnings, fmt.Sprintf("scanning %s: %v", path, err))
			continue
		}
		result.FilesScanned++
	}

	result.Outcome = a.classify(req, result)
	return result
}

func (a *Analyzer) scanFile(path string, matchers []*matcher, result *AnalysisResult) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxScanLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		result.TotalLines++
		line := scanner.Text()

		for _, m := range matchers {
			if !m.rule.Matches(line) {
				continue
			}
			value, ok := m.rule.Extract(line)
			if !ok {
				continue
			}

			ev := Evidence{
				Metric: m.metric.Name,
				Value:  value,
				Unit:   m.rule.Unit,
				File:   path,
				Line:   lineNo,
			}
			if ts := timestampRe.FindString(line); ts != "" {
				ev.Timestamp = ts
			}

			agg := result.PerMetric[m.metric.Name]
			agg.Count++
			// Running mean and max; no value buffering.
			agg.Avg += (value - agg.Avg) / float64(agg.Count)
			if value > agg.Max {
				agg.Max = value
			}

			if !compliant(m.metric, value) {
				agg.Violations++
				result.Violations = append(result.Violations, ev)
			}
			result.PerMetric[m.metric.Name] = agg

			if m.stored < maxStoredEvidence {
				result.Evidence = append(result.Evidence, ev)
				m.stored++
			}
		}
	}
	return scanner.Err()
}

// compliant reports whether a measured value satisfies the metric's
// threshold. Values exactly at the threshold count as compliant: the
// boundary is inclusive on the good side.
func compliant(m intent.Metric, value float64) bool {
	switch m.Comparator {
	case intent.Greater, intent.GreaterEq:
		return value >= m.Threshold
	case intent.Equal:
		return value == m.Threshold
	default: // Less, LessEq
		return value <= m.Threshold
	}
}

// classify derives the final outcome:
//
//	Unknown        no evidence at all
//	Success        every metric has evidence and zero violations
//	PartialSuccess every measured metric's violation ratio is within its band
//	Failure        otherwise
func (a *Analyzer) classify(req *intent.Requirement, result *AnalysisResult) Outcome {
	total := 0
	for _, agg := range result.PerMetric {
		total += agg.Count
	}
	if total == 0 {
		return OutcomeUnknown
	}

	allCovered := true
	for _, m := range req.Metrics {
		if result.PerMetric[m.Name].Count == 0 {
			allCovered = false
			break
		}
	}

	if len(result.Violations) == 0 && allCovered {
		return OutcomeSuccess
	}

	for _, m := range req.Metrics {
		agg := result.PerMetric[m.Name]
		if agg.Count == 0 {
			continue
		}
		ratio := float64(agg.Violations) / float64(agg.Count)
		if ratio > a.bandFor(m) {
			return OutcomeFailure
		}
	}
	return OutcomePartial
}

// bandFor selects the tolerance band by metric unit class: millisecond-scale
// latency metrics tolerate more scattered violations than second-scale
// duration metrics.
func (a *Analyzer) bandFor(m intent.Metric) float64 {
	switch m.Unit {
	case "ms":
		return a.tolerance.LatencyPct
	case "s":
		return a.tolerance.DurationPct
	default:
		return a.tolerance.DefaultPct
	}
}
