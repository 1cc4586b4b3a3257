package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ContentBackendSeed, cfg.Content.Backend)
	assert.Equal(t, "next-auth.session-token", cfg.Auth.CookieName)
	assert.Equal(t, 72*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, 5*time.Second, cfg.Sanity.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CONTENT_BACKEND", "sanity")
	t.Setenv("SANITY_PROJECT_ID", "abc123")
	t.Setenv("SANITY_DATASET", "production")
	t.Setenv("CART_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "abc123", cfg.Sanity.ProjectID)
	assert.Equal(t, 30*time.Minute, cfg.Cart.TTL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: 7070\nlog_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DevelopmentFile(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ContentBackendSeed, cfg.Content.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CART_TTL", "forever")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Content: ContentConfig{Backend: ContentBackendMySQL},
			Cart:    CartConfig{TTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "backend", mutate: func(c *Config) { c.Content.Backend = "postgres" }, wantErr: ErrInvalidContentBackend},
		{name: "sanity project", mutate: func(c *Config) { c.Content.Backend = ContentBackendSanity }, wantErr: ErrMissingSanityProject},
		{name: "cart ttl", mutate: func(c *Config) { c.Cart.TTL = 0 }, wantErr: ErrInvalidCartTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
