package redis

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"threatsnap/internal/input/jsonl"
	"threatsnap/internal/logger"
	"threatsnap/pkg/models"
)

// Config configures the Redis list source.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type lister interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Source reads a static batch of EVE alert lines from a Redis list.
// The list is read once and left untouched.
type Source struct {
	client lister
	closer func() error
	key    string
}

// NewSource creates a Redis list source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("redis key is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Source{
		client: client,
		closer: client.Close,
		key:    cfg.Key,
	}, nil
}

// Load reads every element of the list and applies the JSONL line policy to each.
func (s *Source) Load(ctx context.Context) ([]models.Alert, jsonl.LoadStats, error) {
	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err == redis.Nil {
		values = nil
	} else if err != nil {
		return nil, jsonl.LoadStats{}, fmt.Errorf("read redis list %s: %w", s.key, err)
	}

	lines := make([][]byte, 0, len(values))
	for _, v := range values {
		lines = append(lines, []byte(v))
	}

	alerts, stats := jsonl.LoadLines(lines)
	logger.Debugf("Read alerts from redis list %s: lines=%d accepted=%d malformed=%d invalid=%d",
		s.key, stats.Lines, stats.Accepted, stats.Malformed, stats.Invalid)
	return alerts, stats, nil
}

// Close closes the Redis client.
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
