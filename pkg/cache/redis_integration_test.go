//go:build integration
// +build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *RedisClient {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := NewRedisClient(&Config{Addr: endpoint})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocks(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "idem:test", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLock(ctx, "idem:test", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Only the holder can release.
	require.NoError(t, client.ReleaseLock(ctx, "idem:test", "b"))
	ok, _ = client.AcquireLock(ctx, "idem:test", "c", time.Minute)
	assert.False(t, ok)

	require.NoError(t, client.ReleaseLock(ctx, "idem:test", "a"))
	ok, err = client.AcquireLock(ctx, "idem:test", "c", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, client.Ping(ctx))
}
