package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"trace-flow/snapshot"
)

// Environment keys. A .env file in the working directory may set any of them;
// values already present in the process environment win.
const (
	EnvLogLevel    = "TRACE_FLOW_LOG_LEVEL"
	EnvLogFormat   = "TRACE_FLOW_LOG_FORMAT"
	EnvLogDir      = "TRACE_FLOW_LOG_DIR"
	EnvOutputDir   = "TRACE_FLOW_OUTPUT_DIR"
	EnvTraceDir    = "TRACE_FLOW_TRACE_DIR"
	EnvRulesFile   = "TRACE_FLOW_RULES_FILE"
	EnvMetricsFile = "TRACE_FLOW_METRICS_FILE"
	EnvToolProbe   = "TRACE_FLOW_TOOL_PROBE"
)

// Config holds every setting of a trace-flow run.
type Config struct {
	LogLevel  string `json:"log_level"`  // DEBUG, INFO, WARN or ERROR
	LogFormat string `json:"log_format"` // text or json
	LogDir    string `json:"log_dir"`    // when set, logs go to a JSON file here

	OutputDir string `json:"output_dir"` // where --out writes reports
	TraceDir  string `json:"trace_dir"`  // scanned by --all

	// RulesFile optionally names a YAML file of extra classification rules.
	RulesFile string        `json:"rules_file"`
	Rules     RuleOverrides `json:"rules"`

	// MetricsFile, when set, receives run counters in the Prometheus text format.
	MetricsFile string `json:"metrics_file"`

	// ToolProbe is the prompt phrase that marks the request carrying the tool set.
	ToolProbe string `json:"tool_probe"`
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Config {
	return &Config{
		LogLevel:  "INFO",
		LogFormat: "text",
		OutputDir: "output",
		TraceDir:  ".claude-trace",
		ToolProbe: snapshot.DefaultToolProbe,
	}
}

// LoadConfigWithEnv loads the given env files (".env" when none are named) into
// the process environment, then builds the configuration from it. Missing env
// files are fine; a named rules file that cannot be read or validated is not.
func LoadConfigWithEnv(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := GetDefaultConfig()
	setFromEnv(&cfg.LogLevel, EnvLogLevel)
	setFromEnv(&cfg.LogFormat, EnvLogFormat)
	setFromEnv(&cfg.LogDir, EnvLogDir)
	setFromEnv(&cfg.OutputDir, EnvOutputDir)
	setFromEnv(&cfg.TraceDir, EnvTraceDir)
	setFromEnv(&cfg.RulesFile, EnvRulesFile)
	setFromEnv(&cfg.MetricsFile, EnvMetricsFile)
	setFromEnv(&cfg.ToolProbe, EnvToolProbe)

	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if cfg.RulesFile != "" {
		rules, err := LoadRuleOverrides(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}
