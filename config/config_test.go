package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	c := cfg.ThreatSnap
	assert.Equal(t, InputModeFile, c.Input.Mode)
	assert.Equal(t, "alerts.jsonl", c.Input.File.Path)
	assert.Equal(t, "127.0.0.1:6379", c.Input.Redis.Addr)
	assert.Equal(t, "suricata_alerts", c.Input.Redis.Key)
	assert.Equal(t, 3, c.Report.TopN)
	assert.Equal(t, FormatText, c.Report.Format)
	assert.True(t, c.Demo.DemoEnabled())
	assert.False(t, c.Logging.Enabled)
	assert.Equal(t, "info", c.Logging.Level)
	require.NoError(t, Validate(&cfg))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threatsnap.yml")
	require.NoError(t, os.WriteFile(path, []byte(`threatsnap:
  input:
    mode: redis
    redis:
      addr: redis:6379
      key: eve_alerts
  report:
    top_n: 10
    format: json
    json:
      path: output/snapshot.json
  rules:
    enabled: true
    path: rules/suppress
  demo:
    enabled: false
  metrics:
    enabled: true
  logging:
    enabled: true
    level: debug
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	ApplyDefaults(cfg)
	require.NoError(t, Validate(cfg))

	c := cfg.ThreatSnap
	assert.Equal(t, InputModeRedis, c.Input.Mode)
	assert.Equal(t, "redis:6379", c.Input.Redis.Addr)
	assert.Equal(t, "eve_alerts", c.Input.Redis.Key)
	assert.Equal(t, 10, c.Report.TopN)
	assert.Equal(t, FormatJSON, c.Report.Format)
	assert.Equal(t, "output/snapshot.json", c.Report.JSON.Path)
	assert.Equal(t, "rules/suppress", c.Rules.Path)
	assert.False(t, c.Demo.DemoEnabled())
	assert.Equal(t, "output/threatsnap.prom", c.Metrics.Textfile)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("threatsnap: [\n"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	env := map[string]string{
		"THREATSNAP_INPUT":      "/var/log/suricata/alerts.jsonl",
		"THREATSNAP_TOP_N":      "5",
		"THREATSNAP_LOG_LEVEL":  "warn",
		"THREATSNAP_REDIS_ADDR": "10.1.1.1:6379",
	}
	require.NoError(t, ApplyEnv(&cfg, func(k string) string { return env[k] }))

	c := cfg.ThreatSnap
	assert.Equal(t, "/var/log/suricata/alerts.jsonl", c.Input.File.Path)
	assert.Equal(t, 5, c.Report.TopN)
	assert.True(t, c.Logging.Enabled)
	assert.Equal(t, "warn", c.Logging.Level)
	assert.Equal(t, "10.1.1.1:6379", c.Input.Redis.Addr)

	err := ApplyEnv(&cfg, func(k string) string {
		if k == "THREATSNAP_TOP_N" {
			return "many"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*ThreatSnapConfig){
		"negative top_n": func(c *ThreatSnapConfig) { c.Report.TopN = -1 },
		"input mode":     func(c *ThreatSnapConfig) { c.Input.Mode = "socket" },
		"format":         func(c *ThreatSnapConfig) { c.Report.Format = "html" },
		"rules path":     func(c *ThreatSnapConfig) { c.Rules.Enabled = true },
	}
	for name, mutate := range cases {
		var cfg Config
		ApplyDefaults(&cfg)
		mutate(&cfg.ThreatSnap)
		assert.Error(t, Validate(&cfg), name)
	}
}
