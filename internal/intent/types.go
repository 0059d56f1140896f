package intent

// Format identifies the intent document format handed to Extract.
type Format string

const (
	// FormatStructured is the triple-based intent format with a small fixed
	// vocabulary of types (Intent, DeliveryExpectation, Condition,
	// ReportingExpectation, Context).
	FormatStructured Format = "structured"
	// FormatNatural is a free-text statement of the same intent.
	FormatNatural Format = "natural_language"
)

// Comparator relates a measured value to a threshold.
type Comparator string

const (
	Less      Comparator = "<"
	Greater   Comparator = ">"
	LessEq    Comparator = "<="
	GreaterEq Comparator = ">="
	Equal     Comparator = "=="
)

// Metric is a measurable requirement with a threshold. A metric whose unit
// could not be inferred has Unit == "" and is skipped by the evidence
// analyzer, which then reports Unknown rather than guessing.
type Metric struct {
	Name       string     `json:"name"`
	Comparator Comparator `json:"comparator"`
	Threshold  float64    `json:"threshold"`
	Unit       string     `json:"unit"`
}

// Description is one typed description recovered from the document.
type Description struct {
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Text    string `json:"description"`
}

// Context holds contextual constraints attached to the intent.
type Context struct {
	Regions         []string `json:"regions,omitempty"`
	TimeConstraints []string `json:"time_constraints,omitempty"`
}

// Requirement is the structured form of an intent used by the rest of the
// pipeline. It is created per invocation and never cached.
type Requirement struct {
	ID               string        `json:"id"`
	PrimaryObjective string        `json:"primary_objective"`
	Metrics          []Metric      `json:"metrics"`
	Context          Context       `json:"context"`
	SuccessCriteria  string        `json:"success_criteria"`
	Summary          string        `json:"summary"`
	Descriptions     []Description `json:"descriptions"`
	Raw              string        `json:"-"`
}

// Metric returns the named metric, or nil.
func (r *Requirement) Metric(name string) *Metric {
	for i := range r.Metrics {
		if r.Metrics[i].Name == name {
			return &r.Metrics[i]
		}
	}
	return nil
}
