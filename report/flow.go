package report

import (
	"fmt"
	"strings"

	"trace-flow/conversation"
	"trace-flow/flow"
)

// RenderRequestFlow renders every request in order, segmented into user turns.
// Turn 0 covers everything the client does before the first user prompt.
func RenderRequestFlow(result *flow.Result, version string) string {
	var out lines
	out.add(
		banner(),
		title("REQUEST FLOW", version),
		banner(),
		"",
		"NOTE: This analysis auto-detects request types and handles unknowns gracefully.",
		"      Turns are marked by 'Detect if new topic' fast-model calls (user interactions).",
		"",
		banner(),
	)

	out.add("", delimiter(), "  🎬 Turn 0 - Initialization", delimiter(), "")

	for _, req := range result.Requests {
		if req.Turn != nil {
			out.add("", delimiter())
			out.addf("  💬 Turn %d - %s", req.Turn.Number, req.Turn.Prompt)
			out.add(delimiter(), "")
		}

		out.add(entryLine(req))
		if req.Detail != nil {
			out.add(conversationDetails(req.Detail)...)
		}
		out.add("")
	}

	writeSummary(&out, result, fmt.Sprintf("Total turns: %d", result.Session.TurnCount))
	return out.String()
}

func entryLine(req flow.ClassifiedRequest) string {
	return fmt.Sprintf("  [%2d] %-10s | %s", req.Index, req.Tag, req.Purpose)
}

// conversationDetails renders the model, flags, the reconstructed chain, the
// invoked tools and the response text of one model request.
func conversationDetails(d *flow.MessageDetail) []string {
	details := headerDetails(d)

	switch len(d.Conversation) {
	case 0:
	case 1:
		turn := d.Conversation[0]
		prefix := fmt.Sprintf("%s%s %s: ", detailIndent, roleEmoji(turn.Role), turn.Role.Label())
		details = append(details, FormatField(prefix, turn.Text, singleMessageLimit))
	default:
		details = append(details, fmt.Sprintf("%s💬 Conversation (%d messages in chain):", detailIndent, len(d.Conversation)))
		for i, turn := range d.Conversation {
			prefix := fmt.Sprintf("%s       [%d] %s: ", detailIndent, i+1, turn.Role.Label())
			details = append(details, FormatField(prefix, turn.Text, chainMessageLimit))
		}
	}

	return append(details, responseDetails(d)...)
}

func headerDetails(d *flow.MessageDetail) []string {
	return []string{
		fmt.Sprintf("%sModel: %s", detailIndent, d.Model),
		fmt.Sprintf("%sMsgs: %d, System: %t, Tools: %t", detailIndent, d.MessageCount, d.HasSystem, d.HasTools),
	}
}

func responseDetails(d *flow.MessageDetail) []string {
	var details []string
	if len(d.ToolCalls) > 0 {
		details = append(details, fmt.Sprintf("%s🔧 Tools called: %s", detailIndent, strings.Join(d.ToolCalls, ", ")))
	}
	if d.ResponseText != "" {
		details = append(details, FormatField(detailIndent+"💭 Response: ", d.ResponseText, responseLimit))
	}
	return details
}

func roleEmoji(role conversation.Role) string {
	switch role {
	case conversation.RoleToolResult:
		return "🔧"
	case conversation.RoleUser:
		return "📥"
	default:
		return "💬"
	}
}
