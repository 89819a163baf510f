package configtypes

import (
	"fmt"
	"regexp"
	"time"

	"github.com/edgecomet/htmlcut/pkg/types"
)

var (
	validLogLevels = map[string]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}
	validCompression = map[string]bool{
		"":                      true,
		types.CompressionNone:   true,
		types.CompressionSnappy: true,
		types.CompressionLZ4:    true,
	}
)

// Validate checks the full service configuration
func (c *ServiceConfig) Validate() error {
	if c == nil {
		return nil
	}

	serverPort, err := ListenPort(c.Server.Listen)
	if err != nil {
		return fmt.Errorf("invalid server.listen: %w", err)
	}
	if c.Server.Timeout.ToDuration() < 0 {
		return fmt.Errorf("server.timeout must be >= 0, got %v", c.Server.Timeout)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}

	if c.Cache.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr must be specified when cache is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
		}
		if time.Duration(c.Cache.TTL) <= 0 {
			return fmt.Errorf("cache.ttl must be > 0 when cache is enabled")
		}
	}
	if !validCompression[c.Cache.Compression] {
		return fmt.Errorf("cache.compression must be one of: none, snappy, lz4, got '%s'", c.Cache.Compression)
	}
	if c.Cache.MinSize < 0 {
		return fmt.Errorf("cache.min_size must be >= 0, got %d", c.Cache.MinSize)
	}

	if c.Metrics.Enabled {
		metricsPort, err := ListenPort(c.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("invalid metrics.listen: %w", err)
		}
		if metricsPort == serverPort {
			return fmt.Errorf("metrics.listen port (%d) must differ from server.listen port (%d)", metricsPort, serverPort)
		}
	}

	if err := c.Truncate.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Validate checks the truncate section
func (t *TruncateConfig) Validate() error {
	if t.TrailingPunctuation != "" {
		if _, err := regexp.Compile(t.TrailingPunctuation); err != nil {
			return fmt.Errorf("truncate.trailing_punctuation is not a valid pattern: %w", err)
		}
	}
	if t.MaxDepth < 0 {
		return fmt.Errorf("truncate.max_depth must be >= 0, got %d", t.MaxDepth)
	}
	if t.DefaultLength < 0 {
		return fmt.Errorf("truncate.default_length must be >= 0, got %d", t.DefaultLength)
	}
	return nil
}

// Validate checks the log section
func (l *LogConfig) Validate() error {
	if l.Level != "" && !validLogLevels[l.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error, got '%s'", l.Level)
	}

	if l.Console.Enabled && l.Console.Format != "" &&
		l.Console.Format != LogFormatJSON && l.Console.Format != LogFormatConsole {
		return fmt.Errorf("log.console.format must be 'json' or 'console', got '%s'", l.Console.Format)
	}

	if l.File.Enabled {
		if l.File.Path == "" {
			return fmt.Errorf("log.file.path must be specified when file logging is enabled")
		}
		if l.File.Format != "" && l.File.Format != LogFormatJSON && l.File.Format != LogFormatText {
			return fmt.Errorf("log.file.format must be 'json' or 'text', got '%s'", l.File.Format)
		}
		r := l.File.Rotation
		if r.MaxSize < 0 || r.MaxAge < 0 || r.MaxBackups < 0 {
			return fmt.Errorf("log.file.rotation values must be >= 0")
		}
	}
	return nil
}
