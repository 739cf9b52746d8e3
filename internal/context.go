package internal

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	RunIDKey contextKey = "run_id"
)

// GetRunID retrieves the analysis run ID from context
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// WithRunID adds an analysis run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}
