package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a Redis storage on it
func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, ttl), mr
}

func TestRedis(t *testing.T) {
	s, _ := setupTestRedis(t, 0)
	testStorageContract(t, s)
}

func TestRedis_KeyFormat(t *testing.T) {
	s, mr := setupTestRedis(t, 0)

	require.NoError(t, s.Set(context.Background(), "@RocketShoes:cart", "[]"))

	stored, err := mr.Get("cart:@RocketShoes:cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
}

func TestRedis_NoTTLByDefault(t *testing.T) {
	s, mr := setupTestRedis(t, 0)

	require.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.Equal(t, time.Duration(0), mr.TTL(redisKey("k")))
}

func TestRedis_WithTTL(t *testing.T) {
	s, mr := setupTestRedis(t, 24*time.Hour)

	require.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.Equal(t, 24*time.Hour, mr.TTL(redisKey("k")))

	mr.FastForward(25 * time.Hour)
	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_ServerDown(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	assert.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, ErrNotFound)

	err = s.Set(context.Background(), "k", "v")
	assert.ErrorContains(t, err, "redis set failed")
}
