package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "property_listing/internal/adapters/redis"
)

type amenity struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	require.NoError(t, c.Ping(ctx))

	var got []amenity
	ok, err := c.Get(ctx, "catalog:amenities", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []amenity{{Name: "Wifi", Category: "basic"}, {Name: "Oven", Category: "kitchen"}}
	require.NoError(t, c.Set(ctx, "catalog:amenities", want, 60))
	assert.True(t, mr.Exists("test:catalog:amenities"))

	ok, err = c.Get(ctx, "catalog:amenities", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, c.Del(ctx, "catalog:amenities"))
	ok, err = c.Get(ctx, "catalog:amenities", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.Set(ctx, "k", amenity{Name: "Pool"}, 30))
	mr.FastForward(31 * time.Second)

	var got amenity
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_UndecodableValueIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	require.NoError(t, mr.Set("test:k", "not json"))

	var got amenity
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ServerDownIsError(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	mr.Close()

	var got amenity
	_, err := c.Get(ctx, "k", &got)
	assert.Error(t, err)
}
