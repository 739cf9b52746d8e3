// Package snapshot locates the requests in a trace that best show what the
// client sends the main model: the full tool set and the full system prompt.
package snapshot

import (
	"strings"

	"trace-flow/classify"
	"trace-flow/types"
)

// DefaultToolProbe is the phrase of the simple prompt used to capture a trace's
// tool set. The request answering it carries every tool the client offers.
const DefaultToolProbe = "what is your name"

// warmupMarker identifies the client's warmup request, whose system prompt is
// not the conversational one.
const warmupMarker = "Warmup"

// ConnectorToolPrefix prefixes tools provided by external connectors rather
// than the client itself.
const ConnectorToolPrefix = "mcp__"

// ToolDefinitions is the tool set found in one request.
type ToolDefinitions struct {
	EntryIndex int
	UserText   string
	Tools      []types.Tool
}

// Names lists the tool names in request order, "unknown" standing in for a
// missing name.
func (d ToolDefinitions) Names() []string {
	names := make([]string, 0, len(d.Tools))
	for _, tool := range d.Tools {
		names = append(names, toolName(tool))
	}
	return names
}

// CoreTools returns the tools that do not come from a connector.
func (d ToolDefinitions) CoreTools() []types.Tool {
	var core []types.Tool
	for _, tool := range d.Tools {
		if !IsConnectorTool(tool) {
			core = append(core, tool)
		}
	}
	return core
}

// IsConnectorTool reports whether tool comes from an external connector.
func IsConnectorTool(tool types.Tool) bool {
	return strings.HasPrefix(tool.Name, ConnectorToolPrefix)
}

// SystemPrompt is the system prompt found in one request, as blocks. A plain
// string prompt becomes a single text block.
type SystemPrompt struct {
	EntryIndex int
	UserText   string
	Blocks     []types.ContentBlock
}

// Finder scans traces for snapshots using the same classifiers as the analysis.
type Finder struct {
	endpoints *classify.EndpointClassifier
	purposes  *classify.PurposeClassifier
	probe     string
}

// NewFinder builds a Finder. An empty probe selects DefaultToolProbe.
func NewFinder(endpoints *classify.EndpointClassifier, purposes *classify.PurposeClassifier, probe string) *Finder {
	if endpoints == nil {
		endpoints = classify.NewEndpointClassifier()
	}
	if purposes == nil {
		purposes = classify.NewPurposeClassifier()
	}
	if strings.TrimSpace(probe) == "" {
		probe = DefaultToolProbe
	}
	return &Finder{endpoints: endpoints, purposes: purposes, probe: strings.ToLower(probe)}
}

// ToolDefinitions returns the tools of the first main-model request that offers
// tools and whose first user message contains the probe phrase.
func (f *Finder) ToolDefinitions(entries []types.LogEntry) (ToolDefinitions, bool) {
	for i, entry := range entries {
		body, ok := f.mainModelBody(entry)
		if !ok || !body.HasTools() {
			continue
		}

		text, found := firstUserText(body.Messages, func(s string) bool {
			return strings.Contains(strings.ToLower(s), f.probe)
		})
		if !found {
			continue
		}
		return ToolDefinitions{EntryIndex: i, UserText: text, Tools: body.Tools}, true
	}
	return ToolDefinitions{}, false
}

// SystemPrompt returns the system prompt of the first main-model request that
// carries one and is not the warmup request.
func (f *Finder) SystemPrompt(entries []types.LogEntry) (SystemPrompt, bool) {
	for i, entry := range entries {
		body, ok := f.mainModelBody(entry)
		if !ok || !body.HasSystem() {
			continue
		}

		text, _ := firstUserText(body.Messages, func(string) bool { return true })
		if strings.Contains(text, warmupMarker) {
			continue
		}

		return SystemPrompt{EntryIndex: i, UserText: text, Blocks: systemBlocks(body.System)}, true
	}
	return SystemPrompt{}, false
}

func (f *Finder) mainModelBody(entry types.LogEntry) (*types.RequestBody, bool) {
	endpoint := f.endpoints.Classify(entry.Request.URL, entry.Request.MethodOrUnknown())
	if endpoint.Tag != classify.TagMessage {
		return nil, false
	}
	body, ok := entry.Request.MessageBody()
	if !ok {
		return nil, false
	}
	family, ok := f.purposes.FamilyOf(body.Model)
	if !ok || family.Kind != classify.FamilyMain {
		return nil, false
	}
	return body, true
}

// firstUserText looks only at the first user message: its string content, or
// its first text block accepted by match.
func firstUserText(messages []types.Message, match func(string) bool) (string, bool) {
	for _, msg := range messages {
		if msg.Role != types.RoleUser {
			continue
		}
		switch msg.Content.Kind {
		case types.ContentText:
			return msg.Content.Text, match(msg.Content.Text)
		case types.ContentBlocks:
			for _, block := range msg.Content.Blocks {
				if block.Type == types.BlockText && match(block.Text) {
					return block.Text, true
				}
			}
		}
		return "", false
	}
	return "", false
}

func systemBlocks(system types.SystemPrompt) []types.ContentBlock {
	if system.Kind == types.ContentText {
		return []types.ContentBlock{{Type: types.BlockText, Text: system.Text}}
	}
	return system.Blocks
}

func toolName(tool types.Tool) string {
	if tool.Name == "" {
		return types.RoleUnknown
	}
	return tool.Name
}
