package logger

import (
	"io"

	"trace-flow/config"
)

// FromConfig builds the run logger from the configured level and format.
// Unknown levels fall back to INFO and unknown formats to text. With a LogDir
// configured, entries are appended as JSON to a file there instead of out.
func FromConfig(cfg *config.Config, out io.Writer) (*ObservabilityLogger, error) {
	level := ParseLevel(cfg.LogLevel)
	if cfg.LogDir != "" {
		return NewFileObservabilityLogger(cfg.LogDir, level)
	}
	return NewObservabilityLogger(out, level, cfg.LogFormat), nil
}
