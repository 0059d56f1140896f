package evidence

import "github.com/iexplain/iexplain/internal/intent"

// Recommendations derives action/reason pairs from the analysis, keyed on
// the metric class. Used by the heuristic pipeline when no reasoning
// capability is configured.
func Recommendations(req *intent.Requirement, result *AnalysisResult) []Recommendation {
	var recs []Recommendation
	for _, m := range req.Metrics {
		agg := result.PerMetric[m.Name]
		switch m.Unit {
		case "ms":
			if agg.Violations > 0 {
				recs = append(recs,
					Recommendation{Action: "Increase API server resources", Reason: "Higher resource allocation can reduce processing time"},
					Recommendation{Action: "Optimize database queries", Reason: "Many list operations are slowed by inefficient queries"},
					Recommendation{Action: "Implement request caching", Reason: "Frequently accessed server details can be cached"},
				)
			} else if agg.Count > 0 {
				recs = append(recs,
					Recommendation{Action: "Monitor during peak hours", Reason: "Current performance is good, but should be monitored during high load"},
				)
			}
		case "s":
			if agg.Violations > 0 {
				recs = append(recs,
					Recommendation{Action: "Optimize image caching", Reason: "Pre-cached images reduce VM startup time"},
					Recommendation{Action: "Upgrade storage infrastructure", Reason: "Faster storage I/O speeds up VM provisioning"},
					Recommendation{Action: "Use lightweight VM images", Reason: "Smaller images load faster during VM creation"},
				)
			} else if agg.Count > 0 {
				recs = append(recs,
					Recommendation{Action: "Document current configuration", Reason: "Current setup is performing well and should be documented as a baseline"},
				)
			}
		}
	}
	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Action: "Improve system monitoring",
			Reason: "Could not determine specific recommendations from logs",
		})
	}
	return recs
}

// InfluencingFactors lists the factors that typically drive each metric
// class, for the heuristic pipeline.
func InfluencingFactors(req *intent.Requirement, result *AnalysisResult) []string {
	var factors []string
	for _, m := range req.Metrics {
		switch m.Unit {
		case "ms":
			factors = append(factors,
				"Server resource utilization",
				"Database query efficiency",
				"Network conditions",
				"Request volume",
			)
		case "s":
			factors = append(factors,
				"Image size and complexity",
				"Storage I/O performance",
				"Hypervisor scheduling efficiency",
				"Available compute resources",
			)
		}
	}
	if len(factors) == 0 {
		factors = append(factors, "Log analysis incomplete")
	}
	return factors
}
