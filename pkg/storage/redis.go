package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding stored settings.
const DefaultRedisKey = "foxconf:settings"

// RedisStore implements Adapter on a Redis hash, one field per key holding
// the JSON-encoded value. Useful for sharing settings between machines.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options, key string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStoreWithClient(client, key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// GetAll returns every field of the hash.
func (s *RedisStore) GetAll(ctx context.Context) (map[string]any, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return decodeFields(fields)
}

// Set writes items as hash fields.
func (s *RedisStore) Set(ctx context.Context, items map[string]any) error {
	if len(items) == 0 {
		return nil
	}
	fields, err := encodeFields(items)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encodeFields(items map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(items))
	for k, v := range items {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for %s: %w", k, err)
		}
		fields[k] = string(data)
	}
	return fields, nil
}

func decodeFields(fields map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to decode stored value for %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
