package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-source/internal/config"
)

func testSnapshot() Snapshot {
	return Snapshot{
		"sourcebit-source-reddit": json.RawMessage(`{"entries":[{"title":"hello"}]}`),
		"other":                   json.RawMessage(`{"entries":[]}`),
	}
}

// storeRoundTrip exercises the Store contract shared by every backend.
func storeRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty, "fresh store should load an empty snapshot")

	require.NoError(t, s.Save(ctx, testSnapshot()))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.JSONEq(t, `{"entries":[{"title":"hello"}]}`, string(loaded["sourcebit-source-reddit"]))
	assert.JSONEq(t, `{"entries":[]}`, string(loaded["other"]))

	// Save replaces, it does not merge.
	loaded.Delete("other")
	require.NoError(t, s.Save(ctx, loaded))

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sourcebit-source-reddit"}, again.Plugins())
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "cache.json"))
	defer s.Close()
	storeRoundTrip(t, s)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	storeRoundTrip(t, s)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer s.Close()
	storeRoundTrip(t, s)

	assert.True(t, mr.Exists("reddit-source:context"))
}

func TestSnapshot_CloneDoesNotAlias(t *testing.T) {
	orig := testSnapshot()
	clone := orig.Clone()

	clone["other"][0] = 'X'
	clone.Delete("sourcebit-source-reddit")

	assert.Equal(t, byte('{'), orig["other"][0])
	assert.Len(t, orig, 2)
}

func TestSnapshot_Delete(t *testing.T) {
	snap := testSnapshot()
	assert.True(t, snap.Delete("other"))
	assert.False(t, snap.Delete("other"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StateConfig{Driver: "file", Path: filepath.Join(dir, "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.StateConfig{Driver: "sqlite", Path: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StateConfig{Driver: "etcd"})
	assert.ErrorContains(t, err, "unknown state driver")
}
