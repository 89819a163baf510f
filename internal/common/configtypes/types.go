package configtypes

import (
	"github.com/edgecomet/htmlcut/pkg/types"
)

// Log level constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
	LogFormatText    = "text"
)

// ServiceConfig is the root configuration of the preview service.
// The CLI reads the same file and only uses Truncate and Log.
type ServiceConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Truncate TruncateConfig `yaml:"truncate"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Listen          string         `yaml:"listen"`
	Timeout         types.Duration `yaml:"timeout"`
	MaxBodySize     int            `yaml:"max_body_size"`    // bytes
	ShutdownTimeout types.Duration `yaml:"shutdown_timeout"` // graceful shutdown window
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig controls the Redis-backed result cache
type CacheConfig struct {
	Enabled     bool           `yaml:"enabled"`
	TTL         types.Duration `yaml:"ttl"`
	Compression string         `yaml:"compression"` // none, snappy, lz4
	MinSize     int            `yaml:"min_size"`    // compress values at least this large
}

// TruncateConfig maps onto htmlcut.Config. Empty tag lists keep the built-in defaults.
type TruncateConfig struct {
	Denylist            []string `yaml:"denylist,omitempty"`
	ExtraDenylist       []string `yaml:"extra_denylist,omitempty"`
	ParagraphTags       []string `yaml:"paragraph_tags,omitempty"`
	TextCapableTags     []string `yaml:"text_capable_tags,omitempty"`
	TrailingPunctuation string   `yaml:"trailing_punctuation,omitempty"`
	MaxDepth            int      `yaml:"max_depth,omitempty"`
	DefaultMarker       *string  `yaml:"default_marker,omitempty"`
	DefaultLength       int      `yaml:"default_length,omitempty"`
}

type LogConfig struct {
	Level   string           `yaml:"level"`
	Console ConsoleLogConfig `yaml:"console"`
	File    FileLogConfig    `yaml:"file"`
}

type ConsoleLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Level   string `yaml:"level,omitempty"`
}

type FileLogConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Path     string         `yaml:"path"`
	Format   string         `yaml:"format"`
	Level    string         `yaml:"level,omitempty"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`
	MaxAge     int  `yaml:"max_age"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}
