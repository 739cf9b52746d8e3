// Package extract pulls the meaningful parts out of polymorphic message content:
// the primary user text, assistant text, tool invocations and tool results.
//
// Every function here is total. Missing fields, non-object blocks and unknown
// block types contribute nothing; they are never errors.
package extract

import (
	"fmt"
	"strings"

	"trace-flow/types"
)

// ReminderMarker prefixes text the client injects into user turns on its own.
// Such text is never treated as the primary user message.
const ReminderMarker = "<system-reminder>"

// IsReminder reports whether text is client-injected reminder content.
func IsReminder(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), ReminderMarker)
}

// PrimaryText returns the first piece of user-authored text in content.
// Plain string content qualifies unless it is a reminder; block content yields
// the first text block that is not a reminder. ok is false when nothing qualifies.
func PrimaryText(content types.MessageContent) (text string, ok bool) {
	switch content.Kind {
	case types.ContentText:
		if IsReminder(content.Text) {
			return "", false
		}
		return content.Text, true
	case types.ContentBlocks:
		for _, block := range content.Blocks {
			if block.Type == types.BlockText && !IsReminder(block.Text) {
				return block.Text, true
			}
		}
	}
	return "", false
}

// PrimaryUserText returns the primary text of the first user message that has
// one, or "" when no user message qualifies.
func PrimaryUserText(messages []types.Message) string {
	for _, msg := range messages {
		if msg.Role != types.RoleUser {
			continue
		}
		if text, ok := PrimaryText(msg.Content); ok {
			return text
		}
	}
	return ""
}

// AllUserTexts collects one primary text per user message, in message order.
// Messages whose primary text is empty contribute nothing.
func AllUserTexts(messages []types.Message) []string {
	var texts []string
	for _, msg := range messages {
		if msg.Role != types.RoleUser {
			continue
		}
		if text, ok := PrimaryText(msg.Content); ok && text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// AssistantText returns all text blocks joined with single spaces, plus the names
// of every tool_use block in encounter order. Plain string content is returned
// as-is with no tools.
func AssistantText(content types.MessageContent) (text string, tools []string) {
	switch content.Kind {
	case types.ContentText:
		return content.Text, nil
	case types.ContentBlocks:
		return joinTexts(content.Blocks), ToolNames(content.Blocks)
	}
	return "", nil
}

// ToolNames lists the names of the tool_use blocks, substituting "unknown" for a
// block without a name.
func ToolNames(blocks []types.ContentBlock) []string {
	var names []string
	for _, block := range blocks {
		if block.Type != types.BlockToolUse {
			continue
		}
		name := block.Name
		if name == "" {
			name = types.RoleUnknown
		}
		names = append(names, name)
	}
	return names
}

// ToolResultCount counts tool_result blocks in content.
func ToolResultCount(content types.MessageContent) int {
	if content.Kind != types.ContentBlocks {
		return 0
	}
	count := 0
	for _, block := range content.Blocks {
		if block.Type == types.BlockToolResult {
			count++
		}
	}
	return count
}

// ToolResultMarker is the text that stands in for a user message carrying only
// tool results.
func ToolResultMarker(count int) string {
	return fmt.Sprintf("[Tool results received: %d result(s)]", count)
}

// ToolCallNote is appended to assistant text that invoked tools.
func ToolCallNote(tools []string) string {
	return fmt.Sprintf("[Called tools: %s]", strings.Join(tools, ", "))
}

func joinTexts(blocks []types.ContentBlock) string {
	var texts []string
	for _, block := range blocks {
		if block.Type == types.BlockText {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, " ")
}
