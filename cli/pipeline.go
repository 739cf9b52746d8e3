package cli

import (
	"context"
	"fmt"

	"trace-flow/config"
	"trace-flow/flow"
	"trace-flow/logger"
	"trace-flow/metrics"
	"trace-flow/report"
	"trace-flow/snapshot"
	"trace-flow/types"
)

// output is one rendered report and the file name it is saved under.
type output struct {
	kind    string
	name    string
	content string
}

type pipeline struct {
	cfg       *config.Config
	log       *logger.ObservabilityLogger
	collector *metrics.Collector
	opts      options
}

func (p *pipeline) render(ctx context.Context, command, path, version string, entries []types.LogEntry) ([]output, error) {
	switch command {
	case commandFlow:
		result := p.analyze(ctx, version, entries)
		return []output{{
			kind:    "request_flow",
			name:    fmt.Sprintf("request_flow_%s.txt", version),
			content: report.RenderRequestFlow(result, version),
		}}, nil
	case commandDetailed:
		result := p.analyze(ctx, version, entries)
		return []output{{
			kind:    "detailed_flow",
			name:    fmt.Sprintf("detailed_flow_%s.txt", version),
			content: report.RenderDetailedFlow(result, version),
		}}, nil
	case commandTools:
		return p.tools(ctx, path, version, entries)
	case commandSystemPrompt:
		prompt, ok := p.finder().SystemPrompt(entries)
		if !ok {
			logger.LogSnapshotMissing(ctx, p.log, "system_prompt", path)
			return nil, nil
		}
		return []output{{
			kind:    "system_prompt",
			name:    fmt.Sprintf("system_prompt_%s.txt", version),
			content: report.RenderSystemPrompt(prompt, version),
		}}, nil
	default:
		return nil, UsageError{Message: fmt.Sprintf("unknown command: %q", command)}
	}
}

func (p *pipeline) analyze(ctx context.Context, version string, entries []types.LogEntry) *flow.Result {
	opts := []flow.Option{
		flow.WithEndpointClassifier(p.cfg.EndpointClassifier()),
		flow.WithPurposeClassifier(p.cfg.PurposeClassifier()),
		flow.WithLogger(p.log),
	}
	if p.collector != nil {
		opts = append(opts, flow.WithObserver(p.collector.Observer(version)))
	}
	return flow.NewAnalyzer(opts...).Analyze(ctx, entries)
}

func (p *pipeline) finder() *snapshot.Finder {
	return snapshot.NewFinder(p.cfg.EndpointClassifier(), p.cfg.PurposeClassifier(), p.cfg.ToolProbe)
}

// tools renders the tool snapshot. Saving writes all four variants; printing
// shows the one the flags select.
func (p *pipeline) tools(ctx context.Context, path, version string, entries []types.LogEntry) ([]output, error) {
	defs, ok := p.finder().ToolDefinitions(entries)
	if !ok {
		logger.LogSnapshotMissing(ctx, p.log, "tool_definitions", path)
		return nil, nil
	}

	if !p.opts.out {
		o, err := toolsOutput(defs, version, p.opts.json, p.opts.coreOnly)
		if err != nil {
			return nil, err
		}
		return []output{o}, nil
	}

	var outputs []output
	for _, coreOnly := range []bool{false, true} {
		for _, asJSON := range []bool{false, true} {
			o, err := toolsOutput(defs, version, asJSON, coreOnly)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, o)
		}
	}
	return outputs, nil
}

func toolsOutput(defs snapshot.ToolDefinitions, version string, asJSON, coreOnly bool) (output, error) {
	stem := "tools"
	if coreOnly {
		stem = "tools_no_mcp"
	}

	if asJSON {
		data, err := report.RenderToolsJSON(defs, version, coreOnly)
		if err != nil {
			return output{}, err
		}
		return output{kind: stem + "_json", name: fmt.Sprintf("%s_%s.json", stem, version), content: string(data)}, nil
	}
	return output{
		kind:    stem,
		name:    fmt.Sprintf("%s_%s.txt", stem, version),
		content: report.RenderTools(defs, version, coreOnly),
	}, nil
}
