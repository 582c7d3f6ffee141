package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/net/html/charset"

	"github.com/yegors/flightrec/internal/flightlog"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Reader  ReaderConfig  `toml:"reader"`
}

// LoggingConfig represents logger settings
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, console
}

// ServerConfig represents the HTTP API settings
type ServerConfig struct {
	ListenAddr          string   `toml:"listen_addr"`
	CORSAllowedOrigins  []string `toml:"cors_allowed_origins"`
	MaxUploadBytes      int64    `toml:"max_upload_bytes"`
	ReadTimeoutSeconds  int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds"`
	CacheTTLSeconds     int      `toml:"cache_ttl_seconds"` // 0 disables the flight cache
}

// StorageConfig represents the SQLite storage settings
type StorageConfig struct {
	Path string `toml:"path"`
}

// ReaderConfig controls how flight logs are read and decoded
type ReaderConfig struct {
	Charset     string `toml:"charset"`       // label understood by x/net/html/charset, e.g. "utf-8", "latin1"
	Workers     int    `toml:"workers"`       // concurrent line decoders
	StopOnError bool   `toml:"stop_on_error"` // abort a file at its first malformed line
	MaxLineSize int    `toml:"max_line_size"` // bytes
}

// Options converts the reader settings into flight log reader options
func (r ReaderConfig) Options() flightlog.Options {
	return flightlog.Options{
		Charset:     r.Charset,
		Workers:     r.Workers,
		StopOnError: r.StopOnError,
		MaxLineSize: r.MaxLineSize,
	}
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			ListenAddr:          "127.0.0.1:8080",
			MaxUploadBytes:      16 << 20,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 30,
			CacheTTLSeconds:     60,
		},
		Storage: StorageConfig{
			Path: "flightrec.db",
		},
		Reader: ReaderConfig{
			Charset:     "utf-8",
			Workers:     4,
			StopOnError: false,
			MaxLineSize: 64 * 1024,
		},
	}
}

// Load reads a TOML file and overlays the keys it defines onto the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("logging", "level") {
		cfg.Logging.Level = strings.TrimSpace(raw.Logging.Level)
	}
	if meta.IsDefined("logging", "format") {
		cfg.Logging.Format = strings.TrimSpace(raw.Logging.Format)
	}
	if meta.IsDefined("server", "listen_addr") {
		cfg.Server.ListenAddr = strings.TrimSpace(raw.Server.ListenAddr)
	}
	if meta.IsDefined("server", "cors_allowed_origins") {
		cfg.Server.CORSAllowedOrigins = raw.Server.CORSAllowedOrigins
	}
	if meta.IsDefined("server", "max_upload_bytes") {
		cfg.Server.MaxUploadBytes = raw.Server.MaxUploadBytes
	}
	if meta.IsDefined("server", "read_timeout_seconds") {
		cfg.Server.ReadTimeoutSeconds = raw.Server.ReadTimeoutSeconds
	}
	if meta.IsDefined("server", "write_timeout_seconds") {
		cfg.Server.WriteTimeoutSeconds = raw.Server.WriteTimeoutSeconds
	}
	if meta.IsDefined("server", "cache_ttl_seconds") {
		cfg.Server.CacheTTLSeconds = raw.Server.CacheTTLSeconds
	}
	if meta.IsDefined("storage", "path") {
		cfg.Storage.Path = strings.TrimSpace(raw.Storage.Path)
	}
	if meta.IsDefined("reader", "charset") {
		cfg.Reader.Charset = strings.TrimSpace(raw.Reader.Charset)
	}
	if meta.IsDefined("reader", "workers") {
		cfg.Reader.Workers = raw.Reader.Workers
	}
	if meta.IsDefined("reader", "stop_on_error") {
		cfg.Reader.StopOnError = raw.Reader.StopOnError
	}
	if meta.IsDefined("reader", "max_line_size") {
		cfg.Reader.MaxLineSize = raw.Reader.MaxLineSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen_addr must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.CacheTTLSeconds < 0 {
		return fmt.Errorf("server cache_ttl_seconds must not be negative, got %d", c.Server.CacheTTLSeconds)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must not be empty")
	}
	if c.Reader.Workers < 1 {
		return fmt.Errorf("reader workers must be at least 1, got %d", c.Reader.Workers)
	}
	if c.Reader.MaxLineSize < 128 {
		return fmt.Errorf("reader max_line_size must be at least 128, got %d", c.Reader.MaxLineSize)
	}
	if _, name := charset.Lookup(c.Reader.Charset); name == "" {
		return fmt.Errorf("unknown reader charset %q", c.Reader.Charset)
	}
	return nil
}
