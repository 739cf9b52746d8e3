package report

import (
	"fmt"
	"strings"

	"trace-flow/flow"
)

// RenderDetailedFlow renders every request in order, segmented by the health
// checks the client issues between its initialization phases. Model requests
// show the primary user prompt instead of the whole chain.
func RenderDetailedFlow(result *flow.Result, version string) string {
	var out lines
	out.add(
		banner(),
		title("DETAILED API FLOW", version),
		banner(),
		"",
		"NOTE: This analysis auto-detects request types and handles unknowns gracefully.",
		"      Health checks (GET /api/hello) are used as phase delimiters.",
		"",
		banner(),
	)

	for _, req := range result.Requests {
		if req.Phase != nil {
			out.add("", delimiter())
			out.addf("  ⬇️  Phase %d completed - Health check", req.Phase.Number)
			out.add(delimiter(), "")
		}

		out.add(entryLine(req))
		if req.Detail != nil {
			out.add(promptDetails(req.Detail)...)
		}
		out.add("")
	}

	writeSummary(&out, result, fmt.Sprintf("Health check phases: %d", result.Session.PhaseCount))
	return out.String()
}

func promptDetails(d *flow.MessageDetail) []string {
	details := headerDetails(d)
	if strings.TrimSpace(d.UserText) != "" {
		details = append(details, FormatField(detailIndent+"📥 User: ", d.UserText, singleMessageLimit))
	}
	if len(d.UserTexts) > 1 {
		details = append(details, fmt.Sprintf("%s📚 User messages in chain: %d", detailIndent, len(d.UserTexts)))
	}
	return append(details, responseDetails(d)...)
}
