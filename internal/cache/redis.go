package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/project-tracker/internal/model"
)

const (
	keyPrefix = "tracker:stats:"
	genPrefix = "tracker:stats:gen:"
)

// Redis keeps stats as JSON strings with a fixed TTL. Generation counters
// live under their own keys without expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type entry struct {
	Gen   int64              `json:"gen"`
	Stats model.ProjectStats `json:"stats"`
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Dial parses a redis:// URL and verifies the server answers.
func Dial(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func key(orgID string) string {
	return keyPrefix + orgID
}

func genKey(orgID string) string {
	return genPrefix + orgID
}

func (r *Redis) Get(ctx context.Context, orgID string) (model.ProjectStats, int64, bool, error) {
	vals, err := r.client.MGet(ctx, genKey(orgID), key(orgID)).Result()
	if err != nil {
		return model.ProjectStats{}, 0, false, fmt.Errorf("reading stats for %s: %w", orgID, err)
	}

	var gen int64
	if raw, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return model.ProjectStats{}, 0, false, fmt.Errorf("decoding stats generation for %s: %w", orgID, err)
		}
	}
	raw, ok := vals[1].(string)
	if !ok {
		return model.ProjectStats{}, gen, false, nil
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return model.ProjectStats{}, gen, false, fmt.Errorf("decoding stats for %s: %w", orgID, err)
	}
	if e.Gen != gen {
		return model.ProjectStats{}, gen, false, nil
	}
	return e.Stats, gen, true, nil
}

func (r *Redis) Set(ctx context.Context, orgID string, gen int64, stats model.ProjectStats) error {
	raw, err := json.Marshal(entry{Gen: gen, Stats: stats})
	if err != nil {
		return fmt.Errorf("encoding stats for %s: %w", orgID, err)
	}
	if err := r.client.Set(ctx, key(orgID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing stats for %s: %w", orgID, err)
	}
	return nil
}

// Invalidate bumps the generation and drops the entry in one transaction.
func (r *Redis) Invalidate(ctx context.Context, orgID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(orgID))
		pipe.Del(ctx, key(orgID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating stats for %s: %w", orgID, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ping checks the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
