// Package config loads the learnfil configuration from a TOML file
// and applies environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"digital.vasic.lessons/pkg/env"
)

// Duration is a time.Duration that reads from TOML strings such
// as "2s" or "150ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Auth       AuthConfig       `toml:"auth"`
	Storage    StorageConfig    `toml:"storage"`
	Content    ContentConfig    `toml:"content"`
	Sandbox    SandboxConfig    `toml:"sandbox"`
	Completion CompletionConfig `toml:"completion"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type AuthConfig struct {
	JWTKey   string   `toml:"jwt_key"`
	TokenTTL Duration `toml:"token_ttl"`
}

type StorageConfig struct {
	// DataDir holds the badger database. Empty means in-memory.
	DataDir string `toml:"data_dir"`
}

type ContentConfig struct {
	// Dir holds additional bank files loaded after the seed.
	Dir string `toml:"dir"`
	// Seed loads the embedded seed course.
	Seed bool `toml:"seed"`
}

type SandboxConfig struct {
	Timeout         Duration `toml:"timeout"`
	MaxCallStack    int      `toml:"max_call_stack"`
	MaxConsoleBytes int      `toml:"max_console_bytes"`
}

type CompletionConfig struct {
	// AllowEmpty completes lessons that have no assertions.
	AllowEmpty bool `toml:"allow_empty"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			TokenTTL: Duration{24 * time.Hour},
		},
		Content: ContentConfig{
			Seed: true,
		},
		Sandbox: SandboxConfig{
			Timeout:         Duration{2 * time.Second},
			MaxCallStack:    1024,
			MaxConsoleBytes: 8 << 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string, loader *env.DefaultLoader) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if loader == nil {
		loader = env.NewLoader()
	}
	if err := cfg.applyEnv(loader); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(l *env.DefaultLoader) error {
	if v := l.Lookup("ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := l.Lookup("JWT_KEY"); v != "" {
		c.Auth.JWTKey = v
	}
	if v := l.Lookup("DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := l.Lookup("CONTENT_DIR"); v != "" {
		c.Content.Dir = v
	}
	if v := l.Lookup("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	d, ok, err := l.GetDuration(env.Prefix + "SANDBOX_TIMEOUT")
	if err != nil {
		return err
	}
	if ok {
		c.Sandbox.Timeout = Duration{d}
	}

	b, ok, err := l.GetBool(env.Prefix + "ALLOW_EMPTY")
	if err != nil {
		return err
	}
	if ok {
		c.Completion.AllowEmpty = b
	}
	return nil
}

// Validate checks settings every command needs.
func (c *Config) Validate() error {
	if c.Sandbox.Timeout.Duration <= 0 {
		return errors.New("sandbox.timeout must be positive")
	}
	if c.Sandbox.MaxCallStack <= 0 {
		return errors.New("sandbox.max_call_stack must be positive")
	}
	if c.Auth.TokenTTL.Duration <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// ValidateServe checks the settings required to run the HTTP
// server.
func (c *Config) ValidateServe() error {
	if c.Auth.JWTKey == "" {
		return errors.New(
			"auth.jwt_key is required (or set " + env.Prefix + "JWT_KEY)",
		)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}
