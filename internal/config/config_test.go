package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http", cfg.AI.Backend)
	assert.Equal(t, "http://127.0.0.1:8001/chat", cfg.AI.URL)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "video_conference", cfg.Relay.Group)
	assert.Equal(t, "memory", cfg.Relay.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, RateLimitConfig{AuthPerMinute: 5, SignupPerHour: 20, ChatPerMinute: 30}, cfg.Server.RateLimit)
}

func TestLoadFile_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"server": {"port": 9100},
		"ai": {"url": "http://responder:8001/chat", "timeout": "12s"},
		"relay": {"send_buffer": 8}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("MINDSPACE_DATABASE_DRIVER", "sqlite3")
	t.Setenv("POSTGRES_USER", "therapist")
	t.Setenv("MINDSPACE_SERVER_RATE_LIMIT_CHAT_PER_MINUTE", "0")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "http://responder:8001/chat", cfg.AI.URL)
	assert.Equal(t, 12*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 8, cfg.Relay.SendBuffer)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "therapist", cfg.Database.User)
	assert.Zero(t, cfg.Server.RateLimit.ChatPerMinute)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "postgres"},
			AI:       AIConfig{Backend: "http", URL: "http://x/chat", Timeout: time.Second},
			Relay:    RelayConfig{Group: "video_conference", Backend: "memory", SendBuffer: 4},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "openai without key", mutate: func(c *Config) { c.AI.Backend = "openai" }, wantErr: true},
		{name: "openai with key", mutate: func(c *Config) { c.AI.Backend = "openai"; c.AI.OpenAI.APIKey = "sk" }},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: true},
		{name: "unknown relay backend", mutate: func(c *Config) { c.Relay.Backend = "nats" }, wantErr: true},
		{name: "empty send buffer", mutate: func(c *Config) { c.Relay.SendBuffer = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
