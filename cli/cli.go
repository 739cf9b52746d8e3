// Package cli implements the trace-flow command line.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"trace-flow/config"
	"trace-flow/internal"
	"trace-flow/logger"
	"trace-flow/metrics"
	"trace-flow/traceio"
)

// UsageError reports a malformed command line. main exits with status 2 for it.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

// Usage returns the help text.
func Usage() string {
	return `trace-flow: analyze captured assistant API traces

Usage:
  trace-flow flow [--out] (--all | <trace.jsonl>...)
  trace-flow detailed [--out] (--all | <trace.jsonl>...)
  trace-flow tools [--out] [--json] [--core-only] (--all | <trace.jsonl>...)
  trace-flow system-prompt [--out] (--all | <trace.jsonl>...)

Flags:
  --all        process every *.jsonl file in the trace directory
  --out        write reports under the output directory instead of stdout
  --json       print tool definitions as JSON
  --core-only  leave connector (mcp__) tools out of the tool report

Environment:
  TRACE_FLOW_TRACE_DIR     trace directory for --all (default .claude-trace)
  TRACE_FLOW_OUTPUT_DIR    output directory for --out (default output)
  TRACE_FLOW_RULES_FILE    YAML file of extra classification rules
  TRACE_FLOW_METRICS_FILE  write run counters in Prometheus text format
  TRACE_FLOW_TOOL_PROBE    prompt phrase marking the tool-definition request
  TRACE_FLOW_LOG_LEVEL     DEBUG | INFO | WARN | ERROR
  TRACE_FLOW_LOG_FORMAT    text | json
  TRACE_FLOW_LOG_DIR       append JSON logs to trace-flow.jsonl in this directory
`
}

// Run loads the configuration from the environment and runs one command.
func Run(args []string) error {
	cfg, err := config.LoadConfigWithEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r := &Runner{Stdout: os.Stdout, Stderr: os.Stderr, Config: cfg}
	return r.Run(context.Background(), args)
}

// Runner executes commands against explicit streams and configuration.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
}

// Run dispatches args to a subcommand. Each invocation gets its own run ID.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "missing command"}
	}
	if r.Config == nil {
		r.Config = config.GetDefaultConfig()
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(r.Stdout, Usage())
		return nil
	case commandFlow, commandDetailed, commandSystemPrompt:
		opts, err := parseOptions(args[0], args[1:], false)
		if err != nil {
			return err
		}
		return r.execute(ctx, args[0], opts)
	case commandTools:
		opts, err := parseOptions(args[0], args[1:], true)
		if err != nil {
			return err
		}
		return r.execute(ctx, args[0], opts)
	default:
		return UsageError{Message: fmt.Sprintf("unknown command: %q", args[0])}
	}
}

const (
	commandFlow         = "flow"
	commandDetailed     = "detailed"
	commandTools        = "tools"
	commandSystemPrompt = "system-prompt"
)

type options struct {
	all      bool
	out      bool
	json     bool
	coreOnly bool
	paths    []string
}

func parseOptions(command string, args []string, toolFlags bool) (options, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts options
	fs.BoolVar(&opts.all, "all", false, "process every trace in the trace directory")
	fs.BoolVar(&opts.out, "out", false, "write reports to the output directory")
	if toolFlags {
		fs.BoolVar(&opts.json, "json", false, "print tool definitions as JSON")
		fs.BoolVar(&opts.coreOnly, "core-only", false, "exclude connector tools")
	}

	if err := fs.Parse(args); err != nil {
		return options{}, UsageError{Message: err.Error()}
	}
	opts.paths = fs.Args()

	switch {
	case opts.all && len(opts.paths) > 0:
		return options{}, UsageError{Message: fmt.Sprintf("%s: --all takes no trace files", command)}
	case !opts.all && len(opts.paths) == 0:
		return options{}, UsageError{Message: fmt.Sprintf("%s requires --all or at least one trace file", command)}
	}
	return opts, nil
}

func (r *Runner) execute(ctx context.Context, command string, opts options) error {
	ctx = internal.WithRunID(ctx, uuid.NewString())
	log, err := logger.FromConfig(r.Config, r.Stderr)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	log.Debug(ctx, logger.ComponentConfig, logger.CategoryLoad, "Configuration loaded", map[string]interface{}{
		"trace_dir":      r.Config.TraceDir,
		"output_dir":     r.Config.OutputDir,
		"rules_file":     r.Config.RulesFile,
		"endpoint_rules": len(r.Config.Rules.EndpointRules),
		"metrics_file":   r.Config.MetricsFile,
	})

	paths := opts.paths
	if opts.all {
		found, err := traceio.FindTraces(r.Config.TraceDir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no .jsonl files found in %s", r.Config.TraceDir)
		}
		paths = found
	}

	var collector *metrics.Collector
	if r.Config.MetricsFile != "" {
		collector = metrics.NewCollector()
	}

	p := &pipeline{
		cfg:       r.Config,
		log:       log,
		collector: collector,
		opts:      opts,
	}

	seen := make(map[string]bool)
	first := true
	for _, path := range paths {
		version := traceio.VersionFromPath(path)
		if seen[version] {
			logger.LogDuplicateVersion(ctx, log, version, path)
			continue
		}
		seen[version] = true

		entries, err := traceio.LoadFile(path)
		if err != nil {
			return err
		}
		logger.LogEntriesLoaded(ctx, log, path, len(entries))

		outputs, err := p.render(ctx, command, path, version, entries)
		if err != nil {
			return err
		}

		for _, o := range outputs {
			if opts.out {
				if err := r.write(ctx, log, command, o); err != nil {
					return err
				}
				continue
			}
			if !first {
				fmt.Fprintln(r.Stdout)
			}
			first = false
			fmt.Fprintln(r.Stdout, o.content)
		}
	}

	if collector != nil {
		if err := collector.WriteTextfile(r.Config.MetricsFile); err != nil {
			return err
		}
		log.Info(ctx, logger.ComponentMetrics, logger.CategorySuccess, "Metrics written", map[string]interface{}{
			"path": r.Config.MetricsFile,
		})
	}
	return nil
}

func (r *Runner) write(ctx context.Context, log *logger.ObservabilityLogger, command string, o output) error {
	dir := filepath.Join(r.Config.OutputDir, outputSubdir(command))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, o.name)
	data := []byte(o.content + "\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.LogReportWritten(ctx, log, o.kind, path, len(data))
	fmt.Fprintf(r.Stdout, "✓ Saved %s\n", path)
	return nil
}

func outputSubdir(command string) string {
	switch command {
	case commandTools:
		return "tool_definitions"
	case commandSystemPrompt:
		return "system_prompts"
	default:
		return "flows"
	}
}
