package logger

import (
	"context"
)

// Common emoji constants for different log types (maintaining existing visual style)
const (
	EmojiLoaded  = "📨"
	EmojiTurn    = "💬"
	EmojiPhase   = "⬇️"
	EmojiUnknown = "⚠️"
	EmojiReport  = "📋"
	EmojiStats   = "📊"
	EmojiSkip    = "🚫"
)

// Specialized logging functions for common analysis events

// LogEntriesLoaded logs how many entries a trace file yielded
func LogEntriesLoaded(ctx context.Context, l *ObservabilityLogger, path string, count int) {
	l.Info(ctx, ComponentLoader, CategoryLoad, EmojiLoaded+" Trace entries loaded", map[string]interface{}{
		"path":    path,
		"entries": count,
	})
}

// LogEntryClassified logs the classification of a single entry
func LogEntryClassified(ctx context.Context, l *ObservabilityLogger, index int, tag, purpose string) {
	l.Debug(ctx, ComponentPipeline, CategoryClassification, "Entry classified", map[string]interface{}{
		"index":   index,
		"tag":     tag,
		"purpose": purpose,
	})
}

// LogUnknownEndpoint logs a request no endpoint rule matched
func LogUnknownEndpoint(ctx context.Context, l *ObservabilityLogger, index int, method, url string) {
	l.Warn(ctx, ComponentEndpoint, CategoryUnknown, EmojiUnknown+" Unknown endpoint", map[string]interface{}{
		"index":  index,
		"method": method,
		"url":    url,
	})
}

// LogUnknownPattern logs a model request no purpose rule matched
func LogUnknownPattern(ctx context.Context, l *ObservabilityLogger, index int, model, preview string) {
	l.Warn(ctx, ComponentPurpose, CategoryUnknown, EmojiUnknown+" Unknown message pattern", map[string]interface{}{
		"index":   index,
		"model":   model,
		"preview": preview,
	})
}

// LogTurnBoundary logs the start of a user turn
func LogTurnBoundary(ctx context.Context, l *ObservabilityLogger, index, turn int, prompt string) {
	l.Debug(ctx, ComponentPipeline, CategoryTurn, EmojiTurn+" Turn boundary", map[string]interface{}{
		"index":  index,
		"turn":   turn,
		"prompt": prompt,
	})
}

// LogPhaseBoundary logs a health-check phase delimiter
func LogPhaseBoundary(ctx context.Context, l *ObservabilityLogger, index, phase int) {
	l.Debug(ctx, ComponentPipeline, CategoryPhase, EmojiPhase+" Phase boundary", map[string]interface{}{
		"index": index,
		"phase": phase,
	})
}

// LogRunSummary logs the totals of one analysis run
func LogRunSummary(ctx context.Context, l *ObservabilityLogger, entries, turns, phases, unknownEndpoints, unknownPatterns int) {
	l.Info(ctx, ComponentPipeline, CategorySuccess, EmojiStats+" Analysis complete", map[string]interface{}{
		"entries":           entries,
		"turns":             turns,
		"phases":            phases,
		"unknown_endpoints": unknownEndpoints,
		"unknown_patterns":  unknownPatterns,
	})
}

// LogReportWritten logs a report persisted to disk
func LogReportWritten(ctx context.Context, l *ObservabilityLogger, kind, path string, size int) {
	l.Info(ctx, ComponentReport, CategoryReport, EmojiReport+" Report written", map[string]interface{}{
		"kind":  kind,
		"path":  path,
		"bytes": size,
	})
}

// LogSnapshotMissing logs a trace that held no snapshot of the requested kind
func LogSnapshotMissing(ctx context.Context, l *ObservabilityLogger, kind, path string) {
	l.Warn(ctx, ComponentSnapshot, CategoryWarning, EmojiSkip+" No snapshot found", map[string]interface{}{
		"kind": kind,
		"path": path,
	})
}

// LogDuplicateVersion logs a trace skipped because its version was already handled
func LogDuplicateVersion(ctx context.Context, l *ObservabilityLogger, version, path string) {
	l.Info(ctx, ComponentCLI, CategoryWarning, EmojiSkip+" Version already processed, skipping", map[string]interface{}{
		"version": version,
		"path":    path,
	})
}
