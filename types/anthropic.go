package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Content block type identifiers used by the messages API.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Message roles as they appear on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleUnknown   = "unknown"
)

// RequestBody represents the decoded body of a captured model-invocation request,
// as the assistant client sent it to the messages endpoint.
//
// Decoding is deliberately lenient: every field that is missing or carries an
// unexpected JSON shape decodes to its zero value instead of failing, so a single
// odd request never stops analysis of the rest of a trace.
//
// The body structure covers:
//   - Model: the model identifier the request was routed to
//   - Messages: the full conversation history sent with the request
//   - System: the system prompt, either a plain string or a list of blocks
//   - Tools: the tool descriptors offered to the model
type RequestBody struct {
	Model    string
	Messages []Message
	System   SystemPrompt
	Tools    []Tool
}

// ModelName returns the model identifier, or "unknown" when the request did not
// carry one.
func (b *RequestBody) ModelName() string {
	if b == nil || b.Model == "" {
		return RoleUnknown
	}
	return b.Model
}

// HasSystem reports whether the request carried a non-empty system prompt.
func (b *RequestBody) HasSystem() bool {
	return b != nil && b.System.Present()
}

// HasTools reports whether the request offered at least one tool.
func (b *RequestBody) HasTools() bool {
	return b != nil && len(b.Tools) > 0
}

// MessageCount returns the number of messages in the request history.
func (b *RequestBody) MessageCount() int {
	if b == nil {
		return 0
	}
	return len(b.Messages)
}

// ParseRequestBody decodes a raw request body. The boolean result is false when
// the body is absent, null, not a JSON object, or an empty object; callers treat
// all of those the same way: there is no body to inspect.
func ParseRequestBody(raw json.RawMessage) (*RequestBody, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return nil, false
	}

	body := &RequestBody{}
	if rawModel, ok := fields["model"]; ok {
		_ = json.Unmarshal(rawModel, &body.Model)
	}
	if rawSystem, ok := fields["system"]; ok {
		_ = body.System.UnmarshalJSON(rawSystem)
	}

	for _, item := range rawList(fields["messages"]) {
		var msg Message
		_ = json.Unmarshal(item, &msg)
		body.Messages = append(body.Messages, msg)
	}

	for _, item := range rawList(fields["tools"]) {
		var tool Tool
		_ = json.Unmarshal(item, &tool)
		tool.Raw = item
		body.Tools = append(body.Tools, tool)
	}

	return body, true
}

// Message represents a single message within a captured conversation history.
//
// Role values follow the messages API: "user" and "assistant". A message without
// a role keeps an empty Role; consumers render it as "unknown".
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// UnmarshalJSON decodes a message without ever failing: a message that is not an
// object, or whose role is not a string, contributes nothing.
func (m *Message) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*m = Message{}
		return nil
	}

	*m = Message{}
	if rawRole, ok := fields["role"]; ok {
		_ = json.Unmarshal(rawRole, &m.Role)
	}
	if rawContent, ok := fields["content"]; ok {
		_ = m.Content.UnmarshalJSON(rawContent)
	}
	return nil
}

// ContentKind discriminates the two shapes message content can take.
type ContentKind int

const (
	// ContentAbsent marks missing, null, or unrecognizable content.
	ContentAbsent ContentKind = iota
	// ContentText marks plain string content.
	ContentText
	// ContentBlocks marks an ordered list of content blocks.
	ContentBlocks
)

// MessageContent is the tagged union behind a message's "content" field: either a
// plain string or an ordered list of content blocks. Kind says which variant is set.
type MessageContent struct {
	Kind   ContentKind
	Text   string
	Blocks []ContentBlock
}

// TextContent builds plain string content.
func TextContent(text string) MessageContent {
	return MessageContent{Kind: ContentText, Text: text}
}

// BlockContent builds block list content.
func BlockContent(blocks ...ContentBlock) MessageContent {
	return MessageContent{Kind: ContentBlocks, Blocks: blocks}
}

// UnmarshalJSON tries the string variant first and then the block list. Anything
// else leaves the content absent. It never returns an error.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	*c = MessageContent{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Kind = ContentText
		c.Text = text
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	c.Kind = ContentBlocks
	c.Blocks = decodeBlocks(items)
	return nil
}

// SystemPrompt is the tagged union behind a request's "system" field. It shares
// the string-or-blocks shape of MessageContent.
type SystemPrompt struct {
	MessageContent
}

// UnmarshalJSON decodes the system prompt leniently, like MessageContent.
func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	return s.MessageContent.UnmarshalJSON(data)
}

// Present reports whether the prompt is a non-empty string or a non-empty list.
func (s SystemPrompt) Present() bool {
	switch s.Kind {
	case ContentText:
		return s.Text != ""
	case ContentBlocks:
		return len(s.Blocks) > 0
	default:
		return false
	}
}

// Flatten renders the prompt as one string: the plain string as-is, or every text
// block joined with single spaces.
func (s SystemPrompt) Flatten() string {
	switch s.Kind {
	case ContentText:
		return s.Text
	case ContentBlocks:
		var texts []string
		for _, block := range s.Blocks {
			if block.Type == BlockText {
				texts = append(texts, block.Text)
			}
		}
		return strings.Join(texts, " ")
	default:
		return ""
	}
}

// ContentBlock represents one typed fragment of a message payload.
//
// The blocks this tool understands are:
//   - text: Text carries the human-readable content
//   - tool_use: Name and Input describe a tool invocation
//   - tool_result: ToolUseID links a result back to its invocation
//
// Any other type (thinking, image, document, ...) keeps its Type string and is
// ignored by every consumer. A list entry that is not an object decodes to a block
// with an empty Type. Raw holds the block exactly as captured.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Tool represents a tool descriptor offered to the model in a request.
// InputSchema is kept as raw JSON so snapshots can reproduce it faithfully,
// and Raw keeps the whole descriptor in its captured key order.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
	Raw         json.RawMessage `json:"-"`
}

// decodeBlocks decodes each list entry on its own so one malformed block cannot
// poison its neighbours.
func decodeBlocks(items []json.RawMessage) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, decodeBlock(item))
	}
	return blocks
}

func decodeBlock(item json.RawMessage) ContentBlock {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return ContentBlock{Raw: item}
	}

	block := ContentBlock{Raw: item}
	stringField(fields, "type", &block.Type)
	stringField(fields, "text", &block.Text)
	stringField(fields, "id", &block.ID)
	stringField(fields, "name", &block.Name)
	stringField(fields, "tool_use_id", &block.ToolUseID)
	if input, ok := fields["input"]; ok {
		block.Input = input
	}
	return block
}

func stringField(fields map[string]json.RawMessage, key string, dst *string) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// rawList splits a JSON array into its elements; anything else yields nil.
func rawList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
