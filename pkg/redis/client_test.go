package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "garbage scheme", url: "invalid://url"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, zap.NewNop())
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_GetSet(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	_, err := client.Get(ctx, "leads:user:u1")
	assert.Equal(t, goredis.Nil, err)

	require.NoError(t, client.Set(ctx, "leads:user:u1", `[{"id":1}]`, TTLLeadsByUser))

	val, err := client.Get(ctx, "leads:user:u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, val)
}

func TestClient_SetExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "leads:lead:7", "x", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := client.Get(ctx, "leads:lead:7")
	assert.Equal(t, goredis.Nil, err)
}

func TestClient_Delete(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "leads:user:u1", "x", time.Minute))
	require.NoError(t, client.Delete(ctx, "leads:user:u1"))

	n, err := client.Exists(ctx, "leads:user:u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_InvalidatePattern(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "leads:user:u1", "x", time.Minute))
	require.NoError(t, client.Set(ctx, "leads:user:u2", "y", time.Minute))
	require.NoError(t, client.Set(ctx, "other:key", "z", time.Minute))

	require.NoError(t, client.InvalidatePattern(ctx, "leads:user:*"))

	n, err := client.Exists(ctx, "leads:user:u1", "leads:user:u2")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = client.Exists(ctx, "other:key")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}
