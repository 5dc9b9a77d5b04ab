package redis

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with AURA_TEST_REDIS_ADDR=localhost:6379 go test ./internal/storage/redis
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("AURA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AURA_TEST_REDIS_ADDR not set, skipping redis test")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewClient(context.Background(), host, port, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "aura:test:" + t.Name()
	t.Cleanup(func() { c.Delete(context.Background(), key) })

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "[]"))
	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestNewClientUnreachable(t *testing.T) {
	_, err := NewClient(context.Background(), "127.0.0.1", 1, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}
