package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatsnap/internal/input/jsonl"
	"threatsnap/internal/output/snapshotjson"
)

func TestRunSnapshotWritesDemoAndReports(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), nil, &out))

	_, err := os.Stat("alerts.jsonl")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "=== Network Threat Snapshot ===")
	assert.Contains(t, text, "Top 3 Source IPs (Talkers):\n  10.0.0.5           -> 2 alerts\n")
	assert.Contains(t, text, "Top 3 Destination Ports:\n  22    -> 2 alerts\n")
	assert.Contains(t, text, "Top 3 Alert Signatures:\n    2x  ET SCAN Potential SSH Scan\n")
}

func TestRunSnapshotEmptyFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("alerts.jsonl", []byte("garbage\n\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), nil, &out))
	assert.Equal(t, "No valid alert events found.\n", out.String())
}

func TestRunSnapshotMissingSourceWithoutDemo(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("threatsnap.yml", []byte("threatsnap:\n  demo:\n    enabled: false\n"), 0644))

	var out bytes.Buffer
	err := runSnapshot(context.Background(), nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsonl.ErrSourceNotFound))
}

func TestRunSnapshotFlagsAndJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	lines := []string{
		`{"src_ip":"1.1.1.1","dest_ip":"10.0.0.1","dest_port":443}`,
		`{"src_ip":"2.2.2.2","dest_ip":"10.0.0.1","dest_port":443}`,
		`{"src_ip":"2.2.2.2","dest_ip":"10.0.0.2","dest_port":80}`,
	}
	require.NoError(t, os.WriteFile("eve.jsonl", []byte(strings.Join(lines, "\n")), 0644))

	var out bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), []string{"-input", "eve.jsonl", "-top", "1", "-format", "json"}, &out))

	var snap snapshotjson.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, 3, snap.TotalAlerts)
	require.Len(t, snap.TopSourceIPs, 1)
	assert.Equal(t, "2.2.2.2", snap.TopSourceIPs[0].Key)
	require.Len(t, snap.TopDestinationPorts, 1)
	assert.Equal(t, 443, snap.TopDestinationPorts[0].Key)
	assert.Equal(t, "UNKNOWN ALERT", snap.TopSignatures[0].Key)

	_, err := os.Stat("alerts.jsonl")
	assert.True(t, os.IsNotExist(err))
}

func TestRunSnapshotMetricsTextfile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("threatsnap.yml", []byte("threatsnap:\n  metrics:\n    enabled: true\n    textfile: snap.prom\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), nil, &out))

	data, err := os.ReadFile("snap.prom")
	require.NoError(t, err)
	assert.Contains(t, string(data), `threatsnap_input_lines_total{outcome="accepted"} 4`)
}

func TestRunSnapshotRejectsBadTop(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	assert.Error(t, runSnapshot(context.Background(), []string{"-top", "-2"}, &out))
}

func TestRunDemo(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	require.NoError(t, runDemo([]string{"samples/alerts.jsonl"}, &out))
	assert.Equal(t, "wrote 4 demo alerts to samples/alerts.jsonl\n", out.String())

	assert.Error(t, runDemo([]string{"samples/alerts.jsonl"}, &out))
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Equal(t, "", findConfigFile(""))

	require.NoError(t, os.WriteFile("threatsnap.yml", []byte("threatsnap: {}\n"), 0644))
	assert.Equal(t, "threatsnap.yml", findConfigFile(""))
	assert.Equal(t, "threatsnap.yml", findConfigFile("missing.yml"))
}
