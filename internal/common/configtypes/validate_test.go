package configtypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgecomet/htmlcut/pkg/types"
)

func validConfig() *ServiceConfig {
	return &ServiceConfig{
		Server: ServerConfig{Listen: ":10080", Timeout: types.Duration(5 * time.Second)},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Cache: CacheConfig{
			Enabled:     true,
			TTL:         types.Duration(time.Hour),
			Compression: types.CompressionLZ4,
		},
		Log: LogConfig{
			Level:   LogLevelInfo,
			Console: ConsoleLogConfig{Enabled: true, Format: LogFormatConsole},
		},
		Metrics: MetricsConfig{Enabled: true, Listen: ":10081", Path: "/metrics"},
	}
}

func TestServiceConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *ServiceConfig)
		errContains string
	}{
		{name: "valid", mutate: func(c *ServiceConfig) {}},
		{
			name:        "missing listen",
			mutate:      func(c *ServiceConfig) { c.Server.Listen = "" },
			errContains: "server.listen",
		},
		{
			name:        "cache without redis",
			mutate:      func(c *ServiceConfig) { c.Redis.Addr = "" },
			errContains: "redis.addr",
		},
		{
			name:   "redis not needed when cache disabled",
			mutate: func(c *ServiceConfig) { c.Cache.Enabled = false; c.Redis.Addr = "" },
		},
		{
			name:        "zero ttl",
			mutate:      func(c *ServiceConfig) { c.Cache.TTL = 0 },
			errContains: "cache.ttl",
		},
		{
			name:        "unknown compression",
			mutate:      func(c *ServiceConfig) { c.Cache.Compression = "zstd" },
			errContains: "cache.compression",
		},
		{
			name:        "metrics on server port",
			mutate:      func(c *ServiceConfig) { c.Metrics.Listen = "0.0.0.0:10080" },
			errContains: "must differ",
		},
		{
			name:        "bad punctuation pattern",
			mutate:      func(c *ServiceConfig) { c.Truncate.TrailingPunctuation = "[" },
			errContains: "truncate.trailing_punctuation",
		},
		{
			name:        "negative depth",
			mutate:      func(c *ServiceConfig) { c.Truncate.MaxDepth = -1 },
			errContains: "truncate.max_depth",
		},
		{
			name:        "bad log level",
			mutate:      func(c *ServiceConfig) { c.Log.Level = "trace" },
			errContains: "log.level",
		},
		{
			name:        "file logging without path",
			mutate:      func(c *ServiceConfig) { c.Log.File.Enabled = true },
			errContains: "log.file.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestListenPort(t *testing.T) {
	tests := []struct {
		listen  string
		want    int
		wantErr bool
	}{
		{listen: ":8080", want: 8080},
		{listen: "8080", want: 8080},
		{listen: "localhost:9090", want: 9090},
		{listen: "0.0.0.0:65535", want: 65535},
		{listen: "", wantErr: true},
		{listen: ":0", wantErr: true},
		{listen: ":70000", wantErr: true},
		{listen: "host:port", wantErr: true},
		{listen: "a:b:c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.listen, func(t *testing.T) {
			port, err := ListenPort(tt.listen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, port)
		})
	}
}

func TestNormalizeListen(t *testing.T) {
	addr, err := NormalizeListen("8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	addr, err = NormalizeListen("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", addr)
}
