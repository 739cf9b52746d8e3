package extract

import (
	"encoding/json"

	"trace-flow/types"
)

// Response is what the analysis needs from a captured response body.
type Response struct {
	Text      string
	ToolCalls []string
}

// HasToolCalls reports whether the model invoked at least one tool.
func (r Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ParseResponse decodes a response body_raw payload. Bodies that are not JSON,
// are not objects, or carry no content list yield an empty Response.
func ParseResponse(bodyRaw string) Response {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(bodyRaw), &fields); err != nil {
		return Response{}
	}

	rawContent, ok := fields["content"]
	if !ok {
		return Response{}
	}

	var content types.MessageContent
	_ = content.UnmarshalJSON(rawContent)
	if content.Kind != types.ContentBlocks {
		return Response{}
	}

	return Response{
		Text:      joinTexts(content.Blocks),
		ToolCalls: ToolNames(content.Blocks),
	}
}
