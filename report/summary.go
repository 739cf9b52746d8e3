package report

import (
	"fmt"

	"trace-flow/flow"
)

// writeSummary appends the closing summary shared by both flow reports.
// segmentLine reports the turn or phase count of the variant.
func writeSummary(out *lines, result *flow.Result, segmentLine string) {
	session := result.Session

	out.add(banner(), "ANALYSIS SUMMARY", banner())
	out.addf("Total requests: %d", len(result.Requests))
	out.add(segmentLine)

	if endpoints := session.UnknownEndpoints(); len(endpoints) > 0 {
		out.add("", "⚠️  UNKNOWN ENDPOINTS DETECTED:")
		for _, ep := range endpoints {
			out.addf("   - %s %s", ep.Method, ep.URL)
		}
		out.add("   (These are new and not yet categorized)")
	}

	if patterns := session.UnknownPatterns(); len(patterns) > 0 {
		out.add("", "⚠️  UNKNOWN MESSAGE PATTERNS DETECTED:")
		for _, p := range patterns {
			line := fmt.Sprintf("   - %s: %s...", p.Model, p.Preview)
			if p.Count > 1 {
				line += fmt.Sprintf(" (seen %d times)", p.Count)
			}
			out.add(line)
		}
		out.add("   (These may be new features or usage patterns)")
	}

	if session.AllRecognized() {
		out.add("", "✅ All request types recognized")
	}

	out.add("", banner(), "END OF FLOW", banner())
}
