// Package env reads environment variables with optional .env file
// support. Variables set in the process environment always take
// precedence over values loaded from files.
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every key looked up through Lookup.
const Prefix = "LEARNFIL_"

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads variables from one or more .env files.
	Load(paths ...string) error
	// Get retrieves an environment variable value.
	Get(key string) string
	// GetRequired retrieves a required variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves a variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// GetBool parses a boolean variable.
	GetBool(key string) (value bool, ok bool, err error)
	// GetDuration parses a time.Duration variable.
	GetDuration(key string) (value time.Duration, ok bool, err error)
	// Set sets an environment variable.
	Set(key, value string) error
	// All returns all variables loaded from files.
	All() map[string]string
}

// DefaultLoader implements Loader on top of godotenv.
type DefaultLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
}

// NewLoader creates an empty DefaultLoader.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
	}
}

// Load parses the given .env files. Later files override earlier
// ones. With no arguments, ".env" in the working directory is read.
func (l *DefaultLoader) Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range paths {
		vars, err := godotenv.Read(p)
		if err != nil {
			return fmt.Errorf("read env file %s: %w", p, err)
		}
		for k, v := range vars {
			l.vars[k] = v
		}
	}

	l.loaded = true
	return nil
}

// LoadOptional behaves like Load but ignores files that do not
// exist.
func (l *DefaultLoader) LoadOptional(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return l.Load(existing...)
}

func (l *DefaultLoader) Get(key string) string {
	// OS env takes precedence
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

// Lookup returns the value of Prefix+name.
func (l *DefaultLoader) Lookup(name string) string {
	return l.Get(Prefix + name)
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf(
			"required environment variable %s is not set", key,
		)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (l *DefaultLoader) GetBool(key string) (bool, bool, error) {
	raw := strings.TrimSpace(l.Get(key))
	if raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, true, nil
}

func (l *DefaultLoader) GetDuration(key string) (time.Duration, bool, error) {
	raw := strings.TrimSpace(l.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, true, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, true, nil
}

func (l *DefaultLoader) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
	return os.Setenv(key, value)
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
