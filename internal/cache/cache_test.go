package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/factgraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	k := CacheKey("openai", "gpt-4o-mini", "prompt", "chunk")
	assert.True(t, strings.HasPrefix(k, "factgraph:v1:"))
	assert.Equal(t, k, CacheKey("openai", "gpt-4o-mini", "prompt", "chunk"))

	// Part boundaries matter
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
	assert.NotEqual(t, k, CacheKey("anthropic", "gpt-4o-mini", "prompt", "chunk"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("p", "m", "prompt", "chunk")

	require.NoError(t, c.Set(key, []byte("has_part(a, b)."), 0))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "has_part(a, b).", string(got))

	hash := key[len("factgraph:v1:"):]
	_, err := os.Stat(filepath.Join(dir, hash[:2], hash+".json"))
	require.NoError(t, err)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, hash[:2]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	require.NoError(t, c.Set("factgraph:v1:abcd", []byte("x"), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok := c.Get("factgraph:v1:abcd")
	assert.False(t, ok)
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ab"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ab", "abcd.json"), []byte("{torn"), 0644))

	_, ok := c.Get("factgraph:v1:abcd")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("x")

	require.NoError(t, NewDiskCache(dir, time.Hour).Set(key, []byte("v"), 0))

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	// Still served from memory after the disk copy is gone
	require.NoError(t, os.RemoveAll(dir))
	got, ok = c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestLayeredCache_DeleteMissing(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	assert.NoError(t, c.Delete(CacheKey("never-set")))
}

func TestNew(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(model.CacheConfig{Enabled: true, Backend: "memory", TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(model.CacheConfig{Enabled: true, Backend: "disk", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DiskCache{}, c)

	c, err = New(model.CacheConfig{Enabled: true, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LayeredCache{}, c)

	_, err = New(model.CacheConfig{Enabled: true, Backend: "redis"})
	assert.Error(t, err)

	_, err = New(model.CacheConfig{Enabled: true, Backend: "tape"})
	assert.Error(t, err)
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	c, err := NewRedisCache(addr, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	key := CacheKey("redis-test", time.Now().String())
	require.NoError(t, c.Set(key, []byte("v"), 0))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Delete(key))
	_, ok = c.Get(key)
	assert.False(t, ok)
}
