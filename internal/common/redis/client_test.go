package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/configtypes"
)

func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(&configtypes.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		config    *configtypes.RedisConfig
		logger    *zap.Logger
		errorText string
	}{
		{name: "nil config", config: nil, logger: zap.NewNop(), errorText: "redis config is required"},
		{name: "nil logger", config: &configtypes.RedisConfig{Addr: "localhost:6379"}, logger: nil, errorText: "logger is required"},
		{name: "unreachable", config: &configtypes.RedisConfig{Addr: "invalid:99999"}, logger: zap.NewNop(), errorText: "failed to connect to Redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config, tt.logger)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorText)
			assert.Nil(t, client)
		})
	}
}

func TestClientOperations(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, client.HealthCheck(ctx))
	})

	t.Run("set and get bytes", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "k", []byte{0, 1, 2}, time.Minute))

		value, found, err := client.GetBytes(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{0, 1, 2}, value)

		ttl, err := client.TTL(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("missing key", func(t *testing.T) {
		value, found, err := client.GetBytes(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "short", "v", time.Second))
		mr.FastForward(2 * time.Second)

		_, found, err := client.GetBytes(ctx, "short")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "gone", "v", time.Minute))
		require.NoError(t, client.Del(ctx, "gone"))
		assert.False(t, mr.Exists("gone"))
		assert.NoError(t, client.Del(ctx))
	})
}

func TestClient_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client, err := NewClient(&configtypes.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	mr.Close()

	ctx := context.Background()
	_, _, err = client.GetBytes(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, client.HealthCheck(ctx))
}

func TestCutKey(t *testing.T) {
	base := CutKey{HTML: "<p>Hello</p>", Length: 10, Marker: "…", StripDenylisted: true}

	key := base.String()
	assert.Regexp(t, `^cut:[0-9a-f]{16}$`, key)
	assert.Equal(t, key, base.String(), "keys are deterministic")

	variants := []CutKey{
		{HTML: "<p>Hello</p>", Length: 11, Marker: "…", StripDenylisted: true},
		{HTML: "<p>Hello</p>", Length: 10, Paragraphs: 1, Marker: "…", StripDenylisted: true},
		{HTML: "<p>Hello</p>", Length: 10, Marker: "...", StripDenylisted: true},
		{HTML: "<p>Hello</p>", Length: 10, Marker: "…"},
		{HTML: "<p>Hello!</p>", Length: 10, Marker: "…", StripDenylisted: true},
		{HTML: "<p>Hello</p>", Length: 10, Marker: "…", StripDenylisted: true, Config: "deny=img"},
	}
	for _, v := range variants {
		assert.NotEqual(t, key, v.String())
	}
}
