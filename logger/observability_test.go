package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trace-flow/config"
	"trace-flow/internal"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{" info ", INFO},
		{"WARN", WARN},
		{"warning", WARN},
		{"ERROR", ERROR},
		{"verbose", INFO},
		{"", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestObservabilityLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewObservabilityLogger(&buf, INFO, FormatJSON)
	ctx := internal.WithRunID(context.Background(), "run-42")

	log.Debug(ctx, ComponentPipeline, CategoryLoad, "hidden", nil)
	LogEntriesLoaded(ctx, log, "/traces/capture_1.0.jsonl", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entries are below the INFO threshold")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, EmojiLoaded+" Trace entries loaded", entry["message"])
	assert.Equal(t, ComponentLoader, entry["component"])
	assert.Equal(t, CategoryLoad, entry["category"])
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, "/traces/capture_1.0.jsonl", entry["path"])
	assert.Equal(t, float64(12), entry["entries"])
	assert.Contains(t, entry, "timestamp")
}

func TestObservabilityLoggerHooks(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	log := NewWithLogrus(base)
	ctx := context.Background()

	LogUnknownEndpoint(ctx, log, 3, "GET", "https://api.anthropic.com/api/unknown")
	LogTurnBoundary(ctx, log, 5, 1, "refactor this")
	LogSnapshotMissing(ctx, log, "tool_definitions", "trace.jsonl")

	entries := hook.AllEntries()
	require.Len(t, entries, 3)

	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, ComponentEndpoint, entries[0].Data["component"])
	assert.Equal(t, CategoryUnknown, entries[0].Data["category"])
	assert.Equal(t, "unknown", entries[0].Data["run_id"])

	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
	assert.Equal(t, CategoryTurn, entries[1].Data["category"])

	assert.Equal(t, ComponentSnapshot, entries[2].Data["component"])
	assert.Equal(t, "tool_definitions", entries[2].Data["kind"])
}

func TestNilLoggerDiscards(t *testing.T) {
	var log *ObservabilityLogger
	assert.NotPanics(t, func() {
		log.Info(context.Background(), ComponentCLI, CategorySuccess, "ignored", nil)
		LogRunSummary(context.Background(), log, 1, 0, 0, 0, 0)
		require.NoError(t, log.Close())
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.LogLevel = "WARN"

		var buf bytes.Buffer
		log, err := FromConfig(cfg, &buf)
		require.NoError(t, err)

		log.Info(context.Background(), ComponentCLI, CategorySuccess, "quiet", nil)
		log.Warn(context.Background(), ComponentCLI, CategoryWarning, "loud", nil)

		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "msg=loud")
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.LogDir = filepath.Join(t.TempDir(), "logs")

		var buf bytes.Buffer
		log, err := FromConfig(cfg, &buf)
		require.NoError(t, err)

		log.Info(context.Background(), ComponentCLI, CategorySuccess, "to file", nil)
		require.NoError(t, log.Close())

		assert.Empty(t, buf.String())
		data, err := os.ReadFile(filepath.Join(cfg.LogDir, "trace-flow.jsonl"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"to file"`)
	})
}
