package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.lessons/pkg/env"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "learnfil.toml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", env.NewLoader())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Sandbox.Timeout.Duration)
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStack)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.True(t, cfg.Content.Seed)
	assert.False(t, cfg.Completion.AllowEmpty)
	assert.Empty(t, cfg.Storage.DataDir)
}

func TestLoad_File(t *testing.T) {
	p := writeFile(t, `
[server]
addr = "127.0.0.1:9000"
allowed_origins = ["http://localhost:5173"]

[auth]
jwt_key = "file-key"
token_ttl = "1h"

[sandbox]
timeout = "500ms"
max_call_stack = 256

[completion]
allow_empty = true

[content]
dir = "content"
seed = false
`)

	cfg, err := Load(p, env.NewLoader())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "file-key", cfg.Auth.JWTKey)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Sandbox.Timeout.Duration)
	assert.Equal(t, 256, cfg.Sandbox.MaxCallStack)
	assert.Equal(t, 8<<10, cfg.Sandbox.MaxConsoleBytes)
	assert.True(t, cfg.Completion.AllowEmpty)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.False(t, cfg.Content.Seed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeFile(t, "[auth]\njwt_key = \"file-key\"\n")

	t.Setenv("LEARNFIL_JWT_KEY", "env-key")
	t.Setenv("LEARNFIL_ADDR", ":7000")
	t.Setenv("LEARNFIL_SANDBOX_TIMEOUT", "3s")
	t.Setenv("LEARNFIL_ALLOW_EMPTY", "true")
	t.Setenv("LEARNFIL_DATA_DIR", "/var/lib/learnfil")

	cfg, err := Load(p, env.NewLoader())
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Auth.JWTKey)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Sandbox.Timeout.Duration)
	assert.True(t, cfg.Completion.AllowEmpty)
	assert.Equal(t, "/var/lib/learnfil", cfg.Storage.DataDir)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("LEARNFIL_SANDBOX_TIMEOUT", "forever")
	_, err := Load("", env.NewLoader())
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/learnfil.toml", nil)
	assert.Error(t, err)

	p := writeFile(t, "[sandbox\ntimeout = ")
	_, err = Load(p, nil)
	assert.Error(t, err)

	p = writeFile(t, "[sandbox]\ntimeout = \"never\"\n")
	_, err = Load(p, nil)
	assert.Error(t, err)

	p = writeFile(t, "[sandbox]\nmax_call_stack = 0\n")
	_, err = Load(p, nil)
	assert.Error(t, err)
}

func TestConfig_ValidateServe(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateServe())

	cfg.Auth.JWTKey = "secret"
	assert.NoError(t, cfg.ValidateServe())

	cfg.Server.Addr = ""
	assert.Error(t, cfg.ValidateServe())
}
