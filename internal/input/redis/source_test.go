package redis

import (
	"context"
	"errors"
	"testing"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatsnap/internal/input/jsonl"
)

type fakeList struct {
	key    string
	values []string
	err    error
}

func (f *fakeList) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.key = key
	return redis.NewStringSliceResult(f.values, f.err)
}

func TestSourceLoadAppliesLinePolicy(t *testing.T) {
	list := &fakeList{values: []string{
		`{"src_ip":"10.0.0.5","dest_ip":"192.168.1.10","dest_port":22,"alert":{"signature":"ET SCAN Potential SSH Scan"}}`,
		`not json`,
		``,
		`{"dest_ip":"192.168.1.10"}`,
		`{"src_ip":"8.8.8.8","dest_ip":"192.168.1.30","dest_port":53}`,
	}}
	src := &Source{client: list, key: "suricata_alerts"}

	alerts, stats, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "suricata_alerts", list.key)
	require.Len(t, alerts, 2)
	assert.Equal(t, "10.0.0.5", alerts[0].SrcIP)
	assert.Equal(t, "8.8.8.8", alerts[1].SrcIP)
	assert.Equal(t, jsonl.LoadStats{Lines: 5, Blank: 1, Malformed: 1, Invalid: 1, Accepted: 2}, stats)
	assert.NoError(t, src.Close())
}

func TestSourceLoadMissingKeyIsEmpty(t *testing.T) {
	src := &Source{client: &fakeList{err: redis.Nil}, key: "absent"}

	alerts, stats, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Equal(t, 0, stats.Lines)
}

func TestSourceLoadPropagatesErrors(t *testing.T) {
	src := &Source{client: &fakeList{err: errors.New("connection refused")}, key: "k"}

	_, _, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewSourceRequiresKey(t *testing.T) {
	_, err := NewSource(Config{Addr: "127.0.0.1:6379"})
	assert.Error(t, err)

	src, err := NewSource(Config{Key: "suricata_alerts"})
	require.NoError(t, err)
	assert.NoError(t, src.Close())
}
