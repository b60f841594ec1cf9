package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DISCORD_BOT_TOKEN", "DISCORD_APPLICATION_ID", "DISCORD_PUBLIC_KEY", "DISCORD_CLIENT_ID",
	"DISCORD_CLIENT_SECRET", "DISCORD_REDIRECT_URL", "DATABASE_URL", "STORE_DRIVER", "SERVER_PORT",
	"JWT_SECRET_KEY", "SESSION_TTL", "EVENT_MATCH_POLICY", "EVENT_ID_PREFIX", "EVENT_TIMEZONE",
	"FOLLOWUP_DELAY", "GATEWAY_ENABLED", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME",
	"R2_PUBLIC_BASE_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func publicKeyHex(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return hex.EncodeToString(pub)
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_APPLICATION_ID", "123")
	t.Setenv("DISCORD_PUBLIC_KEY", publicKeyHex(t))
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/forza")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "exact", cfg.Events.MatchPolicy)
	assert.Equal(t, "FH5-", cfg.Events.IDPrefix)
	assert.Equal(t, time.Second, cfg.Events.FollowupDelay)
	assert.Equal(t, 24*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.Discord.GatewayEnabled)

	key, err := cfg.PublicKey()
	require.NoError(t, err)
	assert.Len(t, key, ed25519.PublicKeySize)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
  allowed_origins: ["https://1234.discordsays.com"]
events:
  match_policy: channel_fallback
  followup_delay: 2s
r2:
  bucket_name: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GATEWAY_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "channel_fallback", cfg.Events.MatchPolicy)
	assert.Equal(t, 2*time.Second, cfg.Events.FollowupDelay)
	assert.Equal(t, "from-file", cfg.R2.BucketName)
	assert.True(t, cfg.Discord.GatewayEnabled)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE_DRIVER", StoreDriverMemory)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Database.Driver)
}

func TestLoad_ReportsEveryMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	for _, key := range []string{"DISCORD_BOT_TOKEN", "DISCORD_APPLICATION_ID", "DISCORD_PUBLIC_KEY", "JWT_SECRET_KEY", "DATABASE_URL"} {
		assert.ErrorContains(t, err, key)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"port not a number", "SERVER_PORT", "http", "SERVER_PORT"},
		{"port out of range", "SERVER_PORT", "70000", "between 1 and 65535"},
		{"bad duration", "FOLLOWUP_DELAY", "soon", "FOLLOWUP_DELAY"},
		{"zero follow-up delay", "FOLLOWUP_DELAY", "0s", "must be positive"},
		{"bad public key", "DISCORD_PUBLIC_KEY", "abcd", "hex encoded"},
		{"unknown driver", "STORE_DRIVER", "redis", "STORE_DRIVER"},
		{"unknown timezone", "EVENT_TIMEZONE", "Mars/Olympus", "EVENT_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
