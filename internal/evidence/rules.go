package evidence

import (
	"strconv"
	"strings"
)

// MatchRule associates a metric with the literal markers that identify a
// relevant log line and the rule for pulling the numeric value out of it.
// Operational logs from heterogeneous subsystems share no schema, so
// matching is substring-based rather than grammar-based.
type MatchRule struct {
	// Markers must all be present in a line for it to match.
	Markers []string
	// SplitOn is the token after which the numeric field appears.
	SplitOn string
	// Before, when non-empty, cuts the tail at this token first.
	Before string
	// Factor converts the parsed value into the metric's unit.
	Factor float64
	// Unit of the produced Evidence values.
	Unit string
}

// Matches reports whether every marker occurs in the line.
func (r MatchRule) Matches(line string) bool {
	for _, m := range r.Markers {
		if !strings.Contains(line, m) {
			return false
		}
	}
	return true
}

// Extract parses the numeric field from a matching line and applies the
// unit conversion factor.
func (r MatchRule) Extract(line string) (float64, bool) {
	parts := strings.Split(line, r.SplitOn)
	if len(parts) < 2 {
		return 0, false
	}
	tail := parts[len(parts)-1]
	if r.Before != "" {
		if i := strings.Index(tail, r.Before); i >= 0 {
			tail = tail[:i]
		}
	}
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Trim(fields[0], ",;"), 64)
	if err != nil {
		return 0, false
	}
	return v * r.Factor, true
}

// builtinRules maps metric names to their log matching rules. The compute
// API logs report request time in seconds after a "time:" token; spawn
// durations appear as "Instance spawned in N seconds".
var builtinRules = map[string]MatchRule{
	"api_response_time": {
		Markers: []string{"nova.osapi_compute.wsgi.server", "GET /v2/", "/servers/detail"},
		SplitOn: "time:",
		Factor:  1000, // seconds -> ms
		Unit:    "ms",
	},
	"vm_startup_time": {
		Markers: []string{"nova.compute.manager", "Instance spawned in"},
		SplitOn: "spawned in",
		Before:  "seconds",
		Factor:  1,
		Unit:    "s",
	},
}

// RuleFor returns the matching rule for a metric name. Metrics without a
// rule collect no evidence, which downstream classifies as Unknown.
func RuleFor(metric string) (MatchRule, bool) {
	r, ok := builtinRules[metric]
	return r, ok
}
