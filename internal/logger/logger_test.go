package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLoggerIsSilent(t *testing.T) {
	require.NoError(t, Init(false, "debug", "", true))
	assert.False(t, Enabled("error"))
	Errorf("dropped %d", 1)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, initWriter(&buf, "warn"))
	defer Init(false, "", "", false)

	Infof("hidden %s", "info")
	Warnf("shown %s", "warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "level=warning")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, initWriter(&buf, "debug"))
	defer Init(false, "", "", false)

	WithFields("debug", map[string]interface{}{"line": 7, "reason": "malformed"}, "skipped line")

	out := buf.String()
	assert.Contains(t, out, "skipped line")
	assert.Contains(t, out, "line=7")
	assert.Contains(t, out, "reason=malformed")
}

func TestInitCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "threatsnap.log")
	require.NoError(t, Init(true, "info", path, false))
	defer Init(false, "", "", false)

	Infof("snapshot %s", "done")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshot done")
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("verbose"))
	assert.Equal(t, parseLevel("warn"), parseLevel("WARNING"))
}
