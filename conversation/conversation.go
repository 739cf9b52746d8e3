// Package conversation rebuilds the readable message chain sent with a request.
package conversation

import (
	"strings"

	"trace-flow/extract"
	"trace-flow/types"
)

// Role is the display role of a reconstructed turn.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// Label returns the short name used in reports.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleToolResult:
		return "Tool"
	default:
		return "Assistant"
	}
}

// Turn is one (role, text) pair of a reconstructed conversation.
type Turn struct {
	Role Role
	Text string
}

// Reconstruct returns one Turn per message that has something to show, in
// message order. User messages contribute their primary text, or a tool-result
// marker when they carry only tool results. Assistant messages contribute their
// joined text plus a note naming the tools they invoked. Messages with any other
// role, and messages that produce no text, are dropped.
func Reconstruct(messages []types.Message) []Turn {
	var turns []Turn
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleUser:
			if turn, ok := userTurn(msg.Content); ok {
				turns = append(turns, turn)
			}
		case types.RoleAssistant:
			if turn, ok := assistantTurn(msg.Content); ok {
				turns = append(turns, turn)
			}
		}
	}
	return turns
}

func userTurn(content types.MessageContent) (Turn, bool) {
	if text, ok := extract.PrimaryText(content); ok {
		if text == "" {
			return Turn{}, false
		}
		return Turn{Role: RoleUser, Text: text}, true
	}
	if count := extract.ToolResultCount(content); count > 0 {
		return Turn{Role: RoleToolResult, Text: extract.ToolResultMarker(count)}, true
	}
	return Turn{}, false
}

func assistantTurn(content types.MessageContent) (Turn, bool) {
	text, tools := extract.AssistantText(content)

	var parts []string
	if text != "" {
		parts = append(parts, text)
	}
	if len(tools) > 0 {
		parts = append(parts, extract.ToolCallNote(tools))
	}
	if len(parts) == 0 {
		return Turn{}, false
	}
	return Turn{Role: RoleAssistant, Text: strings.Join(parts, " ")}, true
}
