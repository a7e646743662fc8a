// Package state persists plugin contexts between pipeline runs.
//
// A Store is loaded once at the start of a run and saved after bootstrap.
// Plugins never touch a Store directly; the pipeline hands each one a typed
// view of its own entry in the Snapshot.
package state

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"reddit-source/internal/config"
)

// Snapshot maps a plugin name to its serialized context.
type Snapshot map[string]json.RawMessage

// Store loads and saves snapshots. Implementations must treat a missing
// backing medium as an empty snapshot.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Clone returns a copy whose values do not share memory with s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Delete drops the context of plugin. It reports whether one existed.
func (s Snapshot) Delete(plugin string) bool {
	if _, ok := s[plugin]; !ok {
		return false
	}
	delete(s, plugin)
	return true
}

// Plugins returns the plugin names in s in sorted order.
func (s Snapshot) Plugins() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Open returns the Store selected by cfg.Driver.
func Open(cfg config.StateConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(rdb, cfg.Redis.Key), nil
	default:
		return nil, errors.WithHint(
			errors.Newf("unknown state driver %q", cfg.Driver),
			"state.driver must be one of: file, sqlite, redis",
		)
	}
}
