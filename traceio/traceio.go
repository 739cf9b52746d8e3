// Package traceio reads captured traces: one JSON LogEntry per line.
package traceio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trace-flow/types"
)

// maxLineSize bounds one trace line. Requests carrying a full tool set and
// system prompt run to several hundred kilobytes.
const maxLineSize = 10 * 1024 * 1024

// LineError reports a trace line that is not a JSON object.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Load decodes every non-blank line of r into a LogEntry, in order.
func Load(r io.Reader) ([]types.LogEntry, error) {
	var entries []types.LogEntry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry types.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return entries, nil
}

// LoadFile opens and loads the trace at path. Line errors carry the path.
func LoadFile(path string) ([]types.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	entries, err := Load(f)
	if err != nil {
		if lineErr, ok := err.(*LineError); ok {
			lineErr.Path = path
			return nil, lineErr
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// VersionFromPath derives the client version from a trace file name: the last
// underscore-separated segment of the name without its extension, so
// "capture_2.0.14.jsonl" yields "2.0.14". A name without underscores yields
// the whole stem.
func VersionFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[i+1:]
	}
	return stem
}

// FindTraces lists the *.jsonl files directly under dir, sorted by name.
func FindTraces(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("list traces in %s: %w", dir, err)
	}
	return paths, nil
}
