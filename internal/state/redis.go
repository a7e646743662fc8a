package state

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps plugin contexts as fields of one redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore wraps rdb. If key is empty it defaults to "reddit-source:context".
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "reddit-source:context"
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", s.key)
	}

	snap := make(Snapshot, len(fields))
	for plugin, value := range fields {
		snap[plugin] = json.RawMessage(value)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(snap) == 0 {
			return nil
		}
		values := make(map[string]any, len(snap))
		for plugin, value := range snap {
			values[plugin] = string(value)
		}
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", s.key)
	}
	return nil
}

// Close closes the underlying redis connection
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
