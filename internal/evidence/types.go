package evidence

// Outcome classifies whether the measured evidence fulfilled the intent.
type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomePartial Outcome = "Partial Success"
	OutcomeFailure Outcome = "Failure"
	OutcomeUnknown Outcome = "Unknown"
)

// Evidence is a single measured data point extracted from a log line that
// matched a metric's rule. Unmatched lines produce no Evidence.
type Evidence struct {
	Metric    string  `json:"metric_name"`
	Value     float64 `json:"measured_value"`
	Unit      string  `json:"unit"`
	File      string  `json:"source_file"`
	Line      int     `json:"source_line"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Aggregate holds the streaming per-metric statistics. Mean and max are
// maintained incrementally; matched values are never buffered for
// aggregation.
type Aggregate struct {
	Count      int     `json:"count"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
	Violations int     `json:"violations"`
}

// AnalysisResult is the outcome of scanning a log set against a requirement.
type AnalysisResult struct {
	TotalLines   int                  `json:"total_lines_scanned"`
	FilesScanned int                  `json:"files_scanned"`
	FilesFailed  int                  `json:"files_failed"`
	Evidence     []Evidence           `json:"evidence"`
	PerMetric    map[string]Aggregate `json:"per_metric_aggregate"`
	Violations   []Evidence           `json:"violations"`
	Warnings     []string             `json:"warnings,omitempty"`
	Outcome      Outcome              `json:"outcome"`
}

// Recommendation is an action/reason pair suggested by the heuristic
// analyzer.
type Recommendation struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}
