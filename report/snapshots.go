package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"trace-flow/snapshot"
	"trace-flow/types"
)

// RenderTools renders a tool-definition snapshot: a name index followed by
// every tool's description and input schema. With coreOnly set, connector
// tools are left out of the report; the snapshot itself is not changed.
func RenderTools(defs snapshot.ToolDefinitions, version string, coreOnly bool) string {
	tools := defs.Tools
	name := "TOOL DEFINITIONS"
	countLine := fmt.Sprintf("Tool Count: %d", len(tools))
	if coreOnly {
		tools = defs.CoreTools()
		name = "TOOL DEFINITIONS (CORE TOOLS ONLY)"
		countLine = fmt.Sprintf("Tool Count: %d (connector tools excluded)", len(tools))
	}

	var out lines
	out.add(banner(), title(name, version), banner(), "", countLine, "", "Tool Names:")
	for _, tool := range tools {
		out.addf("  - %s", toolLabel(tool))
	}
	out.add("")

	for i, tool := range tools {
		out.add(banner())
		out.addf("TOOL %d: %s", i+1, toolLabel(tool))
		out.add(banner(), "")
		out.add("DESCRIPTION:", rule(), tool.Description, "")
		out.add("INPUT SCHEMA:", rule(), indentJSON(tool.InputSchema), "")
	}

	out.add(banner(), "END OF TOOL DEFINITIONS", banner())
	return out.String()
}

type toolsDocument struct {
	Version            string            `json:"version"`
	ToolCount          int               `json:"tool_count"`
	ExtractedFromEntry int               `json:"extracted_from_entry"`
	Tools              []json.RawMessage `json:"tools"`
	Note               string            `json:"note,omitempty"`
}

// RenderToolsJSON renders the same snapshot as indented JSON, each tool
// reproduced as captured.
func RenderToolsJSON(defs snapshot.ToolDefinitions, version string, coreOnly bool) ([]byte, error) {
	tools := defs.Tools
	doc := toolsDocument{Version: version, ExtractedFromEntry: defs.EntryIndex}
	if coreOnly {
		tools = defs.CoreTools()
		doc.Note = "connector tools excluded"
	}

	doc.ToolCount = len(tools)
	doc.Tools = make([]json.RawMessage, 0, len(tools))
	for _, tool := range tools {
		raw := tool.Raw
		if len(raw) == 0 {
			encoded, err := json.Marshal(tool)
			if err != nil {
				return nil, fmt.Errorf("encode tool %q: %w", tool.Name, err)
			}
			raw = encoded
		}
		doc.Tools = append(doc.Tools, raw)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool definitions: %w", err)
	}
	return data, nil
}

// RenderSystemPrompt renders a system-prompt snapshot block by block: text
// blocks verbatim, anything else as indented JSON.
func RenderSystemPrompt(prompt snapshot.SystemPrompt, version string) string {
	var out lines
	out.add(banner(), title("SYSTEM PROMPT", version), banner(), "")
	out.addf("Block Count: %d", len(prompt.Blocks))
	out.addf("Extracted from entry: %d", prompt.EntryIndex)
	out.add("")

	for i, block := range prompt.Blocks {
		blockType := block.Type
		if blockType == "" {
			blockType = types.RoleUnknown
		}
		out.add(banner())
		out.addf("BLOCK %d - TYPE: %s", i+1, strings.ToUpper(blockType))
		out.add(banner(), "")
		if block.Type == types.BlockText {
			out.add(block.Text)
		} else {
			out.add(indentJSON(block.Raw))
		}
		out.add("")
	}

	out.add(banner(), "END OF SYSTEM PROMPT", banner())
	return out.String()
}

func toolLabel(tool types.Tool) string {
	if tool.Name == "" {
		return types.RoleUnknown
	}
	return tool.Name
}

// indentJSON pretty-prints raw JSON, keeping key order. Missing or invalid JSON
// renders as an empty object.
func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if len(bytes.TrimSpace(raw)) == 0 || json.Indent(&buf, raw, "", "  ") != nil {
		return "{}"
	}
	return buf.String()
}
