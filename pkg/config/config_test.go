package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

const sampleConfig = `
log_level: debug
port: 9000
audit_enabled: false
authenticators:
  zeta_db:
    authenticator: database
    options:
      connection: postgres://casino@localhost/casino
      table: users
  comment: "not an authenticator"
  alpha_static:
    class: casino-static_authenticator.StaticAuthenticator
    options:
      users:
        alice:
          password: secret
external_authenticators:
  github:
    authenticator: jwt
    options:
      jwks_uri: https://idp.example.com/keys
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CASINO_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())
	assert.True(t, cfg.AuditEnabled)
	assert.Empty(t, cfg.Entries(authenticator.Local))
	assert.Equal(t, "default", cfg.Source("port"))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)
	t.Setenv("CASINO_CONFIG_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "file", cfg.Source("audit_enabled"))
	assert.Equal(t, "default", cfg.Source("log_format"))

	local := cfg.Entries(authenticator.Local)
	require.Len(t, local, 3)
	assert.Equal(t, []string{"zeta_db", "comment", "alpha_static"}, []string{local[0].Name, local[1].Name, local[2].Name})

	assert.Equal(t, authenticator.Entry{
		Name:          "zeta_db",
		Authenticator: "database",
		Options: authenticator.Options{
			"connection": "postgres://casino@localhost/casino",
			"table":      "users",
		},
		Record: true,
	}, local[0])
	assert.False(t, local[1].Record)
	assert.Equal(t, "casino-static_authenticator.StaticAuthenticator", local[2].Class)

	external := cfg.Entries(authenticator.External)
	require.Len(t, external, 1)
	assert.Equal(t, "jwt", external[0].Authenticator)

	assert.Nil(t, cfg.Entries(authenticator.ChainType(5)))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)
	t.Setenv("CASINO_CONFIG_PATH", dir)
	t.Setenv("CASINO_LOG_LEVEL", "WARN")
	t.Setenv("CASINO_PORT", "9443")
	t.Setenv("CASINO_AUDIT_ENABLED", "1")
	t.Setenv("CASINO_BIND_ADDRESS", "127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9443", cfg.Address())
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, "environment", cfg.Source("port"))
	assert.Equal(t, "file", cfg.Source("authenticators"))
}

func TestLoad_InvalidPortIgnored(t *testing.T) {
	t.Setenv("CASINO_CONFIG_PATH", t.TempDir())
	t.Setenv("CASINO_PORT", "http")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "default", cfg.Source("port"))
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"not yaml", "authenticators: [", "failed to parse config file"},
		{"group is a list", "authenticators:\n  - database\n", "must be a mapping"},
		{"duplicate name", "authenticators:\n  db: {authenticator: database}\n  db: {authenticator: static}\n", "defined twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadFile(path)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CasinoConfig)
		errMsg string
	}{
		{"log level", func(c *CasinoConfig) { c.LogLevel = "trace" }, "invalid log_level"},
		{"log format", func(c *CasinoConfig) { c.LogFormat = "xml" }, "invalid log_format"},
		{"port", func(c *CasinoConfig) { c.Port = 70000 }, "invalid port"},
		{"entry without implementation", func(c *CasinoConfig) {
			c.ExternalAuthenticators = Group{{Name: "github", Record: true}}
		}, "external_authenticators.github: one of class or authenticator is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	cfg := newDefault()
	cfg.Authenticators = Group{{Name: "note"}}
	assert.NoError(t, cfg.Validate())
}

func TestFormat(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	text := cfg.FormatText()
	assert.Contains(t, text, "Config file: "+path)
	assert.Contains(t, text, "zeta_db,alpha_static")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, path, decoded.ConfigFile)
	assert.Contains(t, decoded.Attributes, Attribute{Name: "port", Value: "9000", Source: "file"})
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "authenticators:\n  a: {authenticator: static}\n")

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *CasinoConfig, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg *CasinoConfig, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	writeConfig(t, dir, "authenticators:\n  b: {authenticator: static}\n  c: {authenticator: static}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.yml"), []byte("x: 1"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if len(cfg.Authenticators.Names()) == 2 {
				assert.Equal(t, []string{"b", "c"}, cfg.Authenticators.Names())
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("configuration was not reloaded")
		}
	}
}

func TestWatch_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "authenticators:\n  a: {authenticator: static}\n")

	w, err := NewWatcher(path)
	require.NoError(t, err)
	w.Debounce = 300 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *CasinoConfig, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(cfg *CasinoConfig, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	for _, name := range []string{"b", "c", "d", "e"} {
		writeConfig(t, dir, "authenticators:\n  "+name+": {authenticator: static}\n")
	}

	select {
	case cfg := <-reloaded:
		assert.Equal(t, []string{"e"}, cfg.Authenticators.Names())
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected second reload: %v", cfg.Authenticators.Names())
	case <-time.After(time.Second):
	}

	cancel()
	require.NoError(t, <-done)
}
