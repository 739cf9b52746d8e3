package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"trace-flow/internal"

	"github.com/sirupsen/logrus"
)

// ObservabilityLogger provides structured logging using logrus.
// Every entry carries component, category and run_id fields.
// A nil *ObservabilityLogger is valid and discards everything.
type ObservabilityLogger struct {
	logger *logrus.Logger
	file   *os.File
}

// Component constants for consistent labeling
const (
	ComponentLoader   = "trace_loader"
	ComponentPipeline = "flow_pipeline"
	ComponentEndpoint = "endpoint_classifier"
	ComponentPurpose  = "purpose_classifier"
	ComponentReport   = "report_renderer"
	ComponentSnapshot = "snapshot"
	ComponentMetrics  = "metrics"
	ComponentConfig   = "configuration"
	ComponentCLI      = "cli"
)

// Category constants for log classification
const (
	CategoryLoad           = "load"
	CategoryClassification = "classification"
	CategoryUnknown        = "unknown"
	CategoryTurn           = "turn"
	CategoryPhase          = "phase"
	CategoryReport         = "report"
	CategorySuccess        = "success"
	CategoryWarning        = "warning"
	CategoryError          = "error"
)

// Log formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewObservabilityLogger creates a logger writing to out in the given format
// ("text" or "json") at the given minimum level.
func NewObservabilityLogger(out io.Writer, level Level, format string) *ObservabilityLogger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level.logrusLevel())

	if format == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	}

	return &ObservabilityLogger{logger: logger}
}

// NewFileObservabilityLogger creates a JSON logger appending to trace-flow.jsonl
// inside logDir.
func NewFileObservabilityLogger(logDir string, level Level) (*ObservabilityLogger, error) {
	// Ensure log directory exists
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, "trace-flow.jsonl")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	obs := NewObservabilityLogger(file, level, FormatJSON)
	obs.file = file
	return obs, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *ObservabilityLogger {
	return NewObservabilityLogger(io.Discard, ERROR, FormatText)
}

// NewWithLogrus wraps an existing logrus logger, e.g. one from logrus/hooks/test.
func NewWithLogrus(l *logrus.Logger) *ObservabilityLogger {
	return &ObservabilityLogger{logger: l}
}

// Close closes the log file
func (o *ObservabilityLogger) Close() error {
	if o != nil && o.file != nil {
		return o.file.Close()
	}
	return nil
}

// createEntry creates a logrus entry with standard fields
func (o *ObservabilityLogger) createEntry(ctx context.Context, component, category string, fields map[string]interface{}) *logrus.Entry {
	entry := o.logger.WithFields(logrus.Fields{
		"component": component,
		"category":  category,
		"run_id":    internal.GetRunID(ctx),
	})

	if fields != nil {
		entry = entry.WithFields(fields)
	}

	return entry
}

// Debug logs a debug message
func (o *ObservabilityLogger) Debug(ctx context.Context, component, category, message string, fields map[string]interface{}) {
	if o == nil {
		return
	}
	o.createEntry(ctx, component, category, fields).Debug(message)
}

// Info logs an info message
func (o *ObservabilityLogger) Info(ctx context.Context, component, category, message string, fields map[string]interface{}) {
	if o == nil {
		return
	}
	o.createEntry(ctx, component, category, fields).Info(message)
}

// Warn logs a warning message
func (o *ObservabilityLogger) Warn(ctx context.Context, component, category, message string, fields map[string]interface{}) {
	if o == nil {
		return
	}
	o.createEntry(ctx, component, category, fields).Warn(message)
}

// Error logs an error message
func (o *ObservabilityLogger) Error(ctx context.Context, component, category, message string, fields map[string]interface{}) {
	if o == nil {
		return
	}
	o.createEntry(ctx, component, category, fields).Error(message)
}
