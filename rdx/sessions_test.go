package rdx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionsRevoke(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	s := NewSessions(client)

	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "abc", time.Hour))
	revoked, err = s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	// revoking twice is fine
	require.NoError(t, s.Revoke(ctx, "abc", time.Hour))

	mr.FastForward(2 * time.Hour)
	revoked, err = s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSessionsWithoutRedis(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(nil)

	require.NoError(t, s.Revoke(ctx, "abc", time.Hour))
	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestConnect(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()

	client, err = Connect(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = Connect(context.Background(), "http://localhost:6379")
	assert.Error(t, err)
}
