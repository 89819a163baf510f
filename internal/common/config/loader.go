package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/configtypes"
	"github.com/edgecomet/htmlcut/internal/common/yamlutil"
	"github.com/edgecomet/htmlcut/pkg/types"
)

// Service defaults
const (
	DefaultListen          = ":10080"
	DefaultTimeout         = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodySize     = 4 * 1024 * 1024
	DefaultCacheTTL        = 24 * time.Hour
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsNS       = "htmlcut"
	DefaultLength          = 200
)

// applyDefaults fills zero values. Runs before validation so a minimal file is valid.
func applyDefaults(cfg *configtypes.ServiceConfig) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = types.Duration(DefaultTimeout)
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = types.Duration(DefaultShutdownTimeout)
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = types.Duration(DefaultCacheTTL)
	}
	if cfg.Cache.Compression == "" {
		cfg.Cache.Compression = types.CompressionSnappy
	}
	if cfg.Cache.MinSize == 0 {
		cfg.Cache.MinSize = types.CompressionMinSize
	}

	if cfg.Truncate.DefaultLength == 0 {
		cfg.Truncate.DefaultLength = DefaultLength
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNS
	}

	ApplyLogDefaults(&cfg.Log)
}

// ApplyLogDefaults enables console output when no output is configured and
// fills output formats.
func ApplyLogDefaults(log *configtypes.LogConfig) {
	if !log.Console.Enabled && !log.File.Enabled {
		log.Console.Enabled = true
	}
	if log.Console.Format == "" {
		log.Console.Format = configtypes.LogFormatConsole
	}
	if log.File.Format == "" {
		log.File.Format = configtypes.LogFormatText
	}
}

// LoadServiceConfig reads, defaults and validates a service configuration file.
func LoadServiceConfig(path string, logger *zap.Logger) (*configtypes.ServiceConfig, error) {
	logger.Info("Loading service configuration", zap.String("path", path))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseServiceConfig(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Service configuration loaded successfully",
		zap.String("listen", cfg.Server.Listen),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled))

	return cfg, nil
}

// ParseServiceConfig decodes YAML strictly, applies defaults and validates.
func ParseServiceConfig(data []byte) (*configtypes.ServiceConfig, error) {
	var cfg configtypes.ServiceConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
