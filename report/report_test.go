package report

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trace-flow/flow"
	"trace-flow/types"
)

const (
	haiku  = "claude-3-5-haiku-20241022"
	sonnet = "claude-sonnet-4-5-20250929"
)

func entry(url, method string, body interface{}, bodyRaw string) types.LogEntry {
	e := types.LogEntry{
		Request:  types.CapturedRequest{URL: url, Method: method},
		Response: types.CapturedResponse{BodyRaw: types.RawBody(bodyRaw)},
	}
	if body != nil {
		data, _ := json.Marshal(body)
		e.Request.Body = data
	}
	return e
}

func message(model, system string, messages []map[string]interface{}, bodyRaw string) types.LogEntry {
	body := map[string]interface{}{"model": model, "messages": messages}
	if system != "" {
		body["system"] = system
	}
	return entry("https://api.anthropic.com/v1/messages", "POST", body, bodyRaw)
}

func userMsg(content interface{}) map[string]interface{} {
	return map[string]interface{}{"role": "user", "content": content}
}

func analyze(entries ...types.LogEntry) *flow.Result {
	return flow.NewAnalyzer().Analyze(context.Background(), entries)
}

func fixture() []types.LogEntry {
	return []types.LogEntry{
		entry("https://api.anthropic.com/api/hello", "GET", nil, ""),
		message(haiku, "", []map[string]interface{}{userMsg("quota")}, ""),
		message(haiku, "Detect a new conversation topic", []map[string]interface{}{userMsg("add a test")}, ""),
		message(sonnet, "You are an agent", []map[string]interface{}{
			userMsg("add a test"),
			{"role": "assistant", "content": []map[string]interface{}{
				{"type": "text", "text": "Reading"},
				{"type": "tool_use", "name": "Read"},
			}},
			userMsg([]map[string]interface{}{{"type": "tool_result", "tool_use_id": "1"}}),
		}, `{"content":[{"type":"text","text":"Done.\nAll good."}]}`),
		entry("https://api.anthropic.com/api/hello", "GET", nil, ""),
	}
}

func TestRenderRequestFlow(t *testing.T) {
	out := RenderRequestFlow(analyze(fixture()...), "2.0.14")
	lines := strings.Split(out, "\n")

	assert.Equal(t, strings.Repeat("=", 120), lines[0])
	assert.Equal(t, "REQUEST FLOW - v2.0.14", lines[1])
	assert.Contains(t, out, "  🎬 Turn 0 - Initialization")
	assert.Contains(t, out, "  "+strings.Repeat("─", 116)+"\n  💬 Turn 1 - add a test\n")

	assert.Contains(t, out, "  [ 0] HEALTH     | Health check\n")
	assert.Contains(t, out, "  [ 1] MESSAGE    | 💰 Check quota limits\n")
	assert.Contains(t, out, "  [ 3] MESSAGE    | 💬 Sonnet turn (msgs:3, sys:true)\n")

	assert.Contains(t, out, "       Model: "+sonnet+"\n")
	assert.Contains(t, out, "       Msgs: 3, System: true, Tools: false\n")
	assert.Contains(t, out, "       💬 Conversation (3 messages in chain):\n")
	assert.Contains(t, out, "              [1] User: add a test\n")
	assert.Contains(t, out, "              [2] Assistant: Reading [Called tools: Read]\n")
	assert.Contains(t, out, "              [3] Tool: [Tool results received: 1 result(s)]\n")
	assert.Contains(t, out, "       💭 Response: Done.\n                    All good.\n")

	assert.Contains(t, out, "Total requests: 5\nTotal turns: 1\n")
	assert.Contains(t, out, "✅ All request types recognized")
	assert.True(t, strings.HasSuffix(out, "END OF FLOW\n"+strings.Repeat("=", 120)))
}

func TestRenderRequestFlowSingleMessage(t *testing.T) {
	long := strings.Repeat("z", 250)
	out := RenderRequestFlow(analyze(
		message(haiku, "", []map[string]interface{}{userMsg("Warmup")}, ""),
		message(sonnet, "", []map[string]interface{}{userMsg(long)}, ""),
	), "")

	assert.Contains(t, out, "REQUEST FLOW\n")
	assert.Contains(t, out, "       📥 User: Warmup\n")
	assert.Contains(t, out, "       📥 User: "+strings.Repeat("z", 100)+"... [250 chars]\n")
	assert.NotContains(t, out, "Conversation (")
}

func TestRenderRequestFlowUnknowns(t *testing.T) {
	out := RenderRequestFlow(analyze(
		entry("https://example.com/foo/bar", "GET", nil, ""),
		entry("https://example.com/foo/bar", "GET", nil, ""),
		message(haiku, "", []map[string]interface{}{userMsg("mystery request")}, ""),
		message(haiku, "", []map[string]interface{}{userMsg("mystery request")}, ""),
		message("gpt-4o", "", []map[string]interface{}{userMsg("other")}, ""),
	), "1.0")

	assert.Contains(t, out, "  [ 0] UNKNOWN    | ⚠️  Unknown endpoint: GET foo/bar\n")
	assert.Contains(t, out, "⚠️  UNKNOWN ENDPOINTS DETECTED:\n   - GET https://example.com/foo/bar\n   (These are new and not yet categorized)")
	assert.Equal(t, 1, strings.Count(out, "   - GET https://example.com/foo/bar"))

	assert.Contains(t, out, "⚠️  UNKNOWN MESSAGE PATTERNS DETECTED:\n")
	assert.Contains(t, out, "   - "+haiku+": mystery request... (seen 2 times)\n")
	assert.Contains(t, out, "   - gpt-4o: other...\n   (These may be new features or usage patterns)")
	assert.NotContains(t, out, "All request types recognized")
}

func TestRenderDetailedFlow(t *testing.T) {
	out := RenderDetailedFlow(analyze(fixture()...), "2.0.14")

	assert.Contains(t, out, "DETAILED API FLOW - v2.0.14\n")
	assert.Contains(t, out, "  ⬇️  Phase 1 completed - Health check\n")
	assert.Contains(t, out, "  ⬇️  Phase 2 completed - Health check\n")
	assert.Contains(t, out, "       📥 User: add a test\n")
	assert.NotContains(t, out, "Turn 1")
	assert.NotContains(t, out, "User messages in chain")
	assert.Contains(t, out, "Health check phases: 2\n")
}

func TestRenderDetailedFlowChainCount(t *testing.T) {
	out := RenderDetailedFlow(analyze(
		message(sonnet, "", []map[string]interface{}{userMsg("one"), userMsg("two")}, ""),
	), "")

	assert.Contains(t, out, "       📥 User: one\n       📚 User messages in chain: 2\n")
}

func TestRenderIsDeterministic(t *testing.T) {
	entries := fixture()
	require.Equal(t, RenderRequestFlow(analyze(entries...), "1"), RenderRequestFlow(analyze(entries...), "1"))
	require.Equal(t, RenderDetailedFlow(analyze(entries...), "1"), RenderDetailedFlow(analyze(entries...), "1"))
}
