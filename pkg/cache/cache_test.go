package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRedis implements the two commands LineCache uses
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestNewLineCache_RejectsNilClient(t *testing.T) {
	_, err := NewLineCache(nil, Scope{Rules: "abc"}, time.Hour, zap.NewNop())
	assert.Error(t, err)
}

func TestLineCache_Key(t *testing.T) {
	c, err := NewLineCache(newFakeRedis(), Scope{Rules: "0123abcd"}, time.Hour, nil)
	require.NoError(t, err)

	fields := []string{"", "Seoul", "Südkorea"}
	key := c.Key(fields, ", ")

	assert.True(t, strings.HasPrefix(key, "statusline:0123abcd:"))
	assert.Equal(t, key, c.Key([]string{"", "Seoul", "Südkorea"}, ", "))
	assert.NotEqual(t, key, c.Key(fields, " | "))
	assert.NotEqual(t, key, c.Key([]string{"Seoul", "", "Südkorea"}, ", "))

	other, err := NewLineCache(newFakeRedis(), Scope{Rules: "ffff0000"}, time.Hour, nil)
	require.NoError(t, err)
	assert.NotEqual(t, key, other.Key(fields, ", "))
}

func TestLineCache_GetSet(t *testing.T) {
	client := newFakeRedis()
	c, err := NewLineCache(client, Scope{Rules: "fp"}, 10*time.Minute, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	fields := []string{"", "Seoul", "Gangnam-gu", "Südkorea", "1.5.2019", "Creator"}

	_, ok, err := c.Get(ctx, fields, ", ")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, fields, ", ", "Seoul, Südkorea, 1.5.2019, Creator"))
	assert.Equal(t, 10*time.Minute, client.ttls[c.Key(fields, ", ")])

	line, ok, err := c.Get(ctx, fields, ", ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Seoul, Südkorea, 1.5.2019, Creator", line)
}

func TestLineCache_Errors(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("connection reset")
	c, err := NewLineCache(client, Scope{Rules: "fp"}, time.Minute, zap.NewNop())
	require.NoError(t, err)

	_, ok, err := c.Get(context.Background(), []string{"a"}, ", ")
	assert.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(context.Background(), []string{"a"}, ", ", "a"))
}

func TestLineCache_KeyDependsOnSettings(t *testing.T) {
	fields := []string{"Berlin", "Berlin", "", "Deutschland", "1.1.2018", "Creator"}
	base := Scope{Rules: "fp", Uniquify: true}

	scopes := []Scope{
		base,
		{Rules: "fp", Uniquify: true, Prejoin: true},
		{Rules: "fp", Uniquify: true, HideEmpty: true},
		{Rules: "fp"},
	}

	seen := make(map[string]Scope)
	for _, scope := range scopes {
		c, err := NewLineCache(newFakeRedis(), scope, time.Hour, nil)
		require.NoError(t, err)

		key := c.Key(fields, ", ")
		prev, dup := seen[key]
		assert.False(t, dup, "scopes %+v and %+v share key %s", prev, scope, key)
		seen[key] = scope
	}
}

func TestLineCache_PrejoinDoesNotServeSplitLine(t *testing.T) {
	client := newFakeRedis()
	ctx := context.Background()
	fields := []string{"Berlin", "Berlin", "", "Deutschland", "1.1.2018", "Creator"}

	split, err := NewLineCache(client, Scope{Rules: "fp", Uniquify: true}, time.Hour, nil)
	require.NoError(t, err)
	require.NoError(t, split.Set(ctx, fields, ", ", "Berlin, Deutschland, 1.1.2018, Creator"))

	joined, err := NewLineCache(client, Scope{Rules: "fp", Uniquify: true, Prejoin: true}, time.Hour, nil)
	require.NoError(t, err)
	_, ok, err := joined.Get(ctx, fields, ", ")
	require.NoError(t, err)
	assert.False(t, ok)
}
