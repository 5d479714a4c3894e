//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wms/backend/internal/testutil"
)

func TestRedisSequenceStore(t *testing.T) {
	ctx, cancel := testutil.ContextWithTimeout(t, 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	store := NewRedisSequenceStoreWithClient(client, "test:seq:")
	defer store.Close()
	require.NoError(t, store.Ping(ctx))

	for want := int64(1); want <= 3; want++ {
		got, err := store.Next(ctx, "WH:261015", 48*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	ttl, err := client.TTL(ctx, "test:seq:WH:261015").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 47*time.Hour)
}
