package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extraction errors. ErrEmptyInput is fatal for the whole explanation run;
// ErrNoDescriptions is not: callers still receive a Requirement shell with
// empty metrics so downstream stages can classify Unknown instead of failing.
var (
	ErrEmptyInput     = errors.New("intent: empty input")
	ErrNoDescriptions = errors.New("intent: no descriptions found")
)

var (
	// subject "a" type, e.g. `iexp:C1 a icm:Condition ;`
	typeRe = regexp.MustCompile(`(\w+:[^\s]+)\s+a\s+(\w+:[^\s]+)`)
	// description bound to the current subject, e.g. `dct:description "..."@en`
	descRe = regexp.MustCompile(`dct:description\s+"([^"]+)"@en`)
	// numeric threshold bound to the current subject, e.g. `rdf:value "250"`
	valueRe = regexp.MustCompile(`\w+:value\s+"(\d+(?:\.\d+)?)"`)
)

// Extract parses an intent document into a Requirement.
//
// For FormatStructured the document is scanned left to right, line by line,
// maintaining a current-subject cursor: type declarations update a
// subject-to-type map and set the cursor, description and value predicates
// bind to the cursor's subject, and terminal punctuation clears it. The scan
// is deliberately not a full grammar parser; intent documents are
// hand-authored against a small fixed ontology and only descriptions and
// numeric thresholds need to be recovered.
func Extract(document string, format Format) (*Requirement, error) {
	if strings.TrimSpace(document) == "" {
		return nil, ErrEmptyInput
	}

	if format == FormatNatural {
		return extractNatural(document)
	}
	return extractStructured(document)
}

func extractStructured(document string) (*Requirement, error) {
	req := &Requirement{Raw: document}

	var currentSubject string
	subjectTypes := make(map[string]string)
	subjectValues := make(map[string]float64)
	var firstValue float64
	var haveFirstValue bool

	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@prefix") || strings.HasPrefix(line, "#") {
			continue
		}

		if m := typeRe.FindStringSubmatch(line); m != nil {
			subjectTypes[m[1]] = simpleType(m[2])
			currentSubject = m[1]
		}

		if m := descRe.FindStringSubmatch(line); m != nil && currentSubject != "" {
			req.Descriptions = append(req.Descriptions, Description{
				Subject: currentSubject,
				Type:    subjectTypes[currentSubject],
				Text:    m[1],
			})
		}

		if m := valueRe.FindStringSubmatch(line); m != nil && currentSubject != "" {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				subjectValues[currentSubject] = v
				if !haveFirstValue {
					firstValue = v
					haveFirstValue = true
				}
			}
		}

		// Terminal punctuation ends the statement for this subject.
		if strings.HasSuffix(line, ".") {
			currentSubject = ""
		}
	}

	if len(req.Descriptions) == 0 {
		return req, ErrNoDescriptions
	}

	req.ID = extractID(document)
	req.Summary = selectSummary(req.Descriptions)

	var conditions []string
	for _, d := range req.Descriptions {
		switch d.Type {
		case "Intent", "DeliveryExpectation":
			if req.PrimaryObjective == "" {
				req.PrimaryObjective = d.Text
			}
		case "Condition":
			conditions = append(conditions, d.Text)
			threshold, ok := subjectValues[d.Subject]
			if !ok && haveFirstValue {
				// No value bound to this condition's subject; fall back to
				// the first value in document order.
				threshold, ok = firstValue, true
			}
			if ok {
				req.Metrics = append(req.Metrics, metricFromCondition(d.Text, threshold))
			}
		case "Context":
			classifyContext(d.Text, &req.Context)
		case "ReportingExpectation":
			// Reporting expectations shape the explanation, not the metrics.
		}
	}

	if len(conditions) > 0 {
		req.SuccessCriteria = strings.Join(conditions, "; ")
	} else {
		// No measurable conditions: keep the summary description as the
		// success criterion so the requirement is never empty of both.
		req.SuccessCriteria = req.Summary
	}

	return req, nil
}

// extractID recovers the declared Intent subject's local name.
func extractID(document string) string {
	if m := intentIDRe.FindStringSubmatch(document); m != nil {
		return m[2]
	}
	return "Unknown"
}

// simpleType strips the ontology prefix: "icm:Condition" -> "Condition".
func simpleType(full string) string {
	parts := strings.Split(full, ":")
	return parts[len(parts)-1]
}

// selectSummary prefers an Intent or DeliveryExpectation description, then
// falls back to the first description in document order.
func selectSummary(descs []Description) string {
	for _, d := range descs {
		if d.Type == "Intent" || d.Type == "DeliveryExpectation" {
			return fmt.Sprintf("%s: %s", d.Type, d.Text)
		}
	}
	d := descs[0]
	return fmt.Sprintf("%s: %s", d.Type, d.Text)
}

// metricFromCondition infers name, unit, and comparator from the condition
// text. Unit inference is a keyword heuristic: conditions about response time
// are measured in milliseconds, conditions about startup time in seconds.
// Anything else is left without a unit and flagged rather than guessed.
func metricFromCondition(text string, threshold float64) Metric {
	lower := strings.ToLower(text)

	m := Metric{
		Comparator: comparatorFromText(lower),
		Threshold:  threshold,
	}

	switch {
	case strings.Contains(lower, "response time"):
		m.Name = "api_response_time"
		m.Unit = "ms"
	case strings.Contains(lower, "startup time"):
		m.Name = "vm_startup_time"
		m.Unit = "s"
	default:
		m.Name = slugify(text)
		m.Unit = ""
	}
	return m
}

func comparatorFromText(lower string) Comparator {
	switch {
	case strings.Contains(lower, "at least") || strings.Contains(lower, "or more"):
		return GreaterEq
	case strings.Contains(lower, "greater than") || strings.Contains(lower, "more than") || strings.Contains(lower, "above") || strings.Contains(lower, "exceed"):
		return Greater
	case strings.Contains(lower, "at most") || strings.Contains(lower, "or less"):
		return LessEq
	case strings.Contains(lower, "exactly"):
		return Equal
	default:
		// Time-bounded conditions read as upper bounds.
		return Less
	}
}

var regionWords = []string{"region", "zone", "datacenter", "data center", "site", "edge"}

// classifyContext sorts a context description into regions or time
// constraints by keyword.
func classifyContext(text string, ctx *Context) {
	lower := strings.ToLower(text)
	for _, w := range regionWords {
		if strings.Contains(lower, w) {
			ctx.Regions = append(ctx.Regions, text)
			return
		}
	}
	ctx.TimeConstraints = append(ctx.TimeConstraints, text)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(text string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(text), "_")
	s = strings.Trim(s, "_")
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// naturalMetricRe matches inline metric statements like
// "API response time < 250ms" or "VM startup time below 30 seconds".
var naturalMetricRe = regexp.MustCompile(`(?i)([a-z][a-z /]*?(?:time|latency|rate|usage))\s*(?:should\s+(?:be|stay)\s*)?(<=|>=|<|>|==|under|below|within|less than|at most|above|over|more than|at least)\s*(\d+(?:\.\d+)?)\s*(ms|milliseconds?|s|sec|seconds?)?`)

// extractNatural recovers a Requirement from a free-text intent statement.
// It is intentionally shallow: the natural-language file accompanies the
// structured one and only needs objective and inline metric recovery.
func extractNatural(document string) (*Requirement, error) {
	req := &Requirement{Raw: document}

	text := strings.TrimSpace(document)
	if idx := strings.IndexAny(text, ".\n"); idx > 0 {
		req.PrimaryObjective = strings.TrimSpace(text[:idx])
	} else {
		req.PrimaryObjective = text
	}
	req.Summary = "Intent: " + req.PrimaryObjective

	for _, m := range naturalMetricRe.FindAllStringSubmatch(text, -1) {
		threshold, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		metric := Metric{
			Name:       slugify(m[1]),
			Comparator: comparatorFromWord(m[2]),
			Threshold:  threshold,
			Unit:       normalizeUnit(m[4]),
		}
		req.Metrics = append(req.Metrics, metric)
	}

	if len(req.Metrics) == 0 && req.PrimaryObjective == "" {
		return req, ErrNoDescriptions
	}
	req.SuccessCriteria = req.PrimaryObjective
	return req, nil
}

func comparatorFromWord(word string) Comparator {
	switch strings.ToLower(word) {
	case ">", "above", "over", "more than":
		return Greater
	case ">=", "at least":
		return GreaterEq
	case "<=", "at most":
		return LessEq
	case "==":
		return Equal
	default:
		return Less
	}
}

func normalizeUnit(u string) string {
	switch strings.ToLower(u) {
	case "ms", "millisecond", "milliseconds":
		return "ms"
	case "s", "sec", "second", "seconds":
		return "s"
	default:
		return ""
	}
}
