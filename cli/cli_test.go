package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trace-flow/config"
)

const sessionTrace = `{"request":{"url":"https://api.anthropic.com/api/hello","method":"GET"},"response":{"status_code":200}}
{"request":{"url":"https://api.anthropic.com/v1/messages?beta=true","method":"POST","body":{"model":"claude-3-5-haiku","messages":[{"role":"user","content":"quota"}]}}}
{"request":{"url":"https://api.anthropic.com/v1/messages?beta=true","method":"POST","body":{"model":"claude-sonnet-4","system":[{"type":"text","text":"You are an interactive CLI tool."}],"tools":[{"name":"Read","description":"Reads a file.","input_schema":{"type":"object"}},{"name":"mcp__github__search","description":"Search.","input_schema":{"type":"object"}}],"messages":[{"role":"user","content":"what is your name"}]}}}
`

const bareTrace = `{"request":{"url":"https://api.anthropic.com/api/hello","method":"GET"}}
`

func writeTrace(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newRunner(t *testing.T) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.TraceDir = t.TempDir()
	cfg.LogLevel = "INFO"

	var stdout, stderr bytes.Buffer
	return &Runner{Stdout: &stdout, Stderr: &stderr, Config: cfg}, &stdout, &stderr
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "no command", args: nil, wantMsg: "missing command"},
		{name: "unknown command", args: []string{"replay"}, wantMsg: `unknown command: "replay"`},
		{name: "no traces", args: []string{"flow"}, wantMsg: "flow requires --all or at least one trace file"},
		{name: "all with paths", args: []string{"detailed", "--all", "x.jsonl"}, wantMsg: "detailed: --all takes no trace files"},
		{name: "tool flag on flow", args: []string{"flow", "--json", "x.jsonl"}, wantMsg: "flag provided but not defined: -json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRunner(t)
			err := r.Run(context.Background(), tt.args)

			var usage UsageError
			require.True(t, errors.As(err, &usage), "expected UsageError, got %v", err)
			assert.Equal(t, tt.wantMsg, usage.Message)
		})
	}
}

func TestRunHelp(t *testing.T) {
	r, stdout, _ := newRunner(t)
	require.NoError(t, r.Run(context.Background(), []string{"help"}))
	assert.Contains(t, stdout.String(), "trace-flow tools [--out] [--json] [--core-only]")
}

func TestRunFlowToStdout(t *testing.T) {
	r, stdout, stderr := newRunner(t)
	dir := t.TempDir()
	a := writeTrace(t, dir, "capture_1.0.jsonl", sessionTrace)
	b := writeTrace(t, dir, "capture_2.0.jsonl", bareTrace)

	require.NoError(t, r.Run(context.Background(), []string{"flow", a, b}))

	out := stdout.String()
	assert.Contains(t, out, "REQUEST FLOW - v1.0")
	assert.Contains(t, out, "REQUEST FLOW - v2.0")
	assert.Less(t, strings.Index(out, "v1.0"), strings.Index(out, "v2.0"))
	assert.Contains(t, out, "\n\n"+strings.Repeat("=", 120)+"\nREQUEST FLOW - v2.0")
	assert.Contains(t, stderr.String(), "Trace entries loaded")
}

func TestRunSkipsDuplicateVersions(t *testing.T) {
	r, stdout, stderr := newRunner(t)
	first := writeTrace(t, t.TempDir(), "a_1.0.jsonl", sessionTrace)
	second := writeTrace(t, t.TempDir(), "b_1.0.jsonl", bareTrace)

	require.NoError(t, r.Run(context.Background(), []string{"detailed", first, second}))

	assert.Equal(t, 1, strings.Count(stdout.String(), "DETAILED API FLOW - v1.0"))
	assert.Contains(t, stderr.String(), "Version already processed, skipping")
}

func TestRunAllWritesReports(t *testing.T) {
	r, stdout, _ := newRunner(t)
	writeTrace(t, r.Config.TraceDir, "capture_1.0.jsonl", sessionTrace)
	writeTrace(t, r.Config.TraceDir, "notes.txt", "ignored")

	require.NoError(t, r.Run(context.Background(), []string{"flow", "--out", "--all"}))

	path := filepath.Join(r.Config.OutputDir, "flows", "request_flow_1.0.txt")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "REQUEST FLOW - v1.0")
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Equal(t, "✓ Saved "+path+"\n", stdout.String())
}

func TestRunAllEmptyTraceDir(t *testing.T) {
	r, _, _ := newRunner(t)
	err := r.Run(context.Background(), []string{"flow", "--all"})
	require.Error(t, err)
	assert.Equal(t, "no .jsonl files found in "+r.Config.TraceDir, err.Error())
}

func TestRunToolsWritesAllVariants(t *testing.T) {
	r, _, _ := newRunner(t)
	path := writeTrace(t, t.TempDir(), "capture_2.0.14.jsonl", sessionTrace)

	require.NoError(t, r.Run(context.Background(), []string{"tools", "--out", path}))

	dir := filepath.Join(r.Config.OutputDir, "tool_definitions")
	for _, name := range []string{"tools_2.0.14.txt", "tools_2.0.14.json", "tools_no_mcp_2.0.14.txt", "tools_no_mcp_2.0.14.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	core, err := os.ReadFile(filepath.Join(dir, "tools_no_mcp_2.0.14.txt"))
	require.NoError(t, err)
	assert.NotContains(t, string(core), "mcp__github__search")
}

func TestRunToolsStdoutVariants(t *testing.T) {
	tests := []struct {
		name     string
		flags    []string
		contains string
		excludes string
	}{
		{name: "text", contains: "Tool Count: 2\n"},
		{name: "json", flags: []string{"--json"}, contains: `"tool_count": 2`},
		{name: "core only", flags: []string{"--core-only"}, contains: "Tool Count: 1 (connector tools excluded)", excludes: "mcp__github__search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, stdout, _ := newRunner(t)
			path := writeTrace(t, t.TempDir(), "capture_2.0.14.jsonl", sessionTrace)

			args := append([]string{"tools"}, tt.flags...)
			require.NoError(t, r.Run(context.Background(), append(args, path)))

			assert.Contains(t, stdout.String(), tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, stdout.String(), tt.excludes)
			}
		})
	}
}

func TestRunMissingSnapshot(t *testing.T) {
	for _, command := range []string{"tools", "system-prompt"} {
		t.Run(command, func(t *testing.T) {
			r, stdout, stderr := newRunner(t)
			path := writeTrace(t, t.TempDir(), "capture_3.0.jsonl", bareTrace)

			require.NoError(t, r.Run(context.Background(), []string{command, "--out", path}))

			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), "No snapshot found")
			assert.NoDirExists(t, r.Config.OutputDir)
		})
	}
}

func TestRunSystemPromptOut(t *testing.T) {
	r, _, _ := newRunner(t)
	path := writeTrace(t, t.TempDir(), "capture_2.0.14.jsonl", sessionTrace)

	require.NoError(t, r.Run(context.Background(), []string{"system-prompt", "--out", path}))

	data, err := os.ReadFile(filepath.Join(r.Config.OutputDir, "system_prompts", "system_prompt_2.0.14.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "You are an interactive CLI tool.")
}

func TestRunWritesMetrics(t *testing.T) {
	r, _, _ := newRunner(t)
	r.Config.MetricsFile = filepath.Join(t.TempDir(), "trace_flow.prom")
	path := writeTrace(t, t.TempDir(), "capture_1.0.jsonl", sessionTrace)

	require.NoError(t, r.Run(context.Background(), []string{"flow", path}))

	data, err := os.ReadFile(r.Config.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `trace_flow_requests_total{tag="HEALTH",version="1.0"} 1`)
	assert.Contains(t, string(data), `trace_flow_requests_total{tag="MESSAGE",version="1.0"} 2`)
}

func TestRunLogDir(t *testing.T) {
	r, _, stderr := newRunner(t)
	r.Config.LogDir = t.TempDir()
	path := writeTrace(t, t.TempDir(), "capture_1.0.jsonl", bareTrace)

	require.NoError(t, r.Run(context.Background(), []string{"flow", path}))

	assert.Empty(t, stderr.String())
	data, err := os.ReadFile(filepath.Join(r.Config.LogDir, "trace-flow.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"📨 Trace entries loaded"`)
	assert.Contains(t, string(data), `"run_id":`)
}

func TestRunMalformedTrace(t *testing.T) {
	r, _, _ := newRunner(t)
	path := writeTrace(t, t.TempDir(), "capture_1.0.jsonl", "{\"request\":{}}\nnot json\n")

	err := r.Run(context.Background(), []string{"flow", path})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), path+":2: "))
}
