package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Input modes.
const (
	InputModeFile  = "file"
	InputModeRedis = "redis"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the root configuration.
type Config struct {
	ThreatSnap ThreatSnapConfig `yaml:"threatsnap"`
}

// ThreatSnapConfig is the project configuration.
type ThreatSnapConfig struct {
	Input   InputConfig   `yaml:"input"`
	Report  ReportConfig  `yaml:"report"`
	Rules   RulesConfig   `yaml:"rules"`
	Demo    DemoConfig    `yaml:"demo"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig controls where alerts are read from.
type InputConfig struct {
	Mode  string          `yaml:"mode"` // file|redis
	File  FileInputConfig `yaml:"file"`
	Redis RedisConfig     `yaml:"redis"`
}

// FileInputConfig config for the JSONL alert file.
type FileInputConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig controls the Redis list input.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	TopN   int              `yaml:"top_n"`
	Format string           `yaml:"format"` // text|json
	JSON   FileOutputConfig `yaml:"json"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// RulesConfig controls Sigma suppression rules.
type RulesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DemoConfig controls the sample alert file written when the input file is missing.
type DemoConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus textfile output.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// DemoEnabled reports whether the sample file may be written. Defaults to true.
func (d DemoConfig) DemoEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset values.
func ApplyDefaults(cfg *Config) {
	c := &cfg.ThreatSnap
	if c.Input.Mode == "" {
		c.Input.Mode = InputModeFile
	}
	if c.Input.File.Path == "" {
		c.Input.File.Path = "alerts.jsonl"
	}
	if c.Input.Redis.Addr == "" {
		c.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Input.Redis.Key == "" {
		c.Input.Redis.Key = "suricata_alerts"
	}

	if c.Report.TopN == 0 {
		c.Report.TopN = 3
	}
	if c.Report.Format == "" {
		c.Report.Format = FormatText
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		c.Metrics.Textfile = "output/threatsnap.prom"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ApplyEnv overrides values from THREATSNAP_* environment variables.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	c := &cfg.ThreatSnap
	if v := strings.TrimSpace(getenv("THREATSNAP_INPUT")); v != "" {
		c.Input.File.Path = v
	}
	if v := strings.TrimSpace(getenv("THREATSNAP_TOP_N")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("THREATSNAP_TOP_N: %w", err)
		}
		c.Report.TopN = n
	}
	if v := strings.TrimSpace(getenv("THREATSNAP_LOG_LEVEL")); v != "" {
		c.Logging.Enabled = true
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv("THREATSNAP_REDIS_ADDR")); v != "" {
		c.Input.Redis.Addr = v
	}
	return nil
}

// Validate checks values that defaults cannot repair.
func Validate(cfg *Config) error {
	c := cfg.ThreatSnap
	if c.Report.TopN <= 0 {
		return fmt.Errorf("report.top_n must be positive, got %d", c.Report.TopN)
	}
	switch c.Input.Mode {
	case InputModeFile, InputModeRedis:
	default:
		return fmt.Errorf("unknown input mode: %s", c.Input.Mode)
	}
	switch c.Report.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown report format: %s", c.Report.Format)
	}
	if c.Rules.Enabled && strings.TrimSpace(c.Rules.Path) == "" {
		return fmt.Errorf("rules enabled but rules.path is empty")
	}
	return nil
}
