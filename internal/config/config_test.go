package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowOrigin(t *testing.T) {
	cfg := &Config{}
	cfg.SetOrigins("http://localhost:3000, https://app.example.com/")

	assert.True(t, cfg.AllowOrigin("http://localhost:3000"))
	assert.True(t, cfg.AllowOrigin("https://app.example.com"))
	assert.False(t, cfg.AllowOrigin("https://evil.example.com"))
	assert.False(t, cfg.AllowOrigin(""))
}

func TestAllowOriginWildcard(t *testing.T) {
	cfg := &Config{}
	cfg.SetOrigins("*")

	assert.True(t, cfg.AllowOrigin("https://anything.example.org"))
	assert.False(t, cfg.AllowOrigin(""))
}

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "AUTH_MODE", "UPLOAD_MAX_MB", "KAFKA_BROKERS", "METRICS_ENABLED", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, AuthModeJWT, cfg.AuthMode)
	assert.Equal(t, 10, cfg.UploadMaxMB)
	assert.Equal(t, int64(10*1024*1024), cfg.UploadMaxBytes())
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "order-events", cfg.KafkaOrderTopic)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.AllowOrigin("http://localhost:3000"))
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "REMOTE")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("UPLOAD_MAX_MB", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := FromEnv()
	assert.Equal(t, AuthModeRemote, cfg.AuthMode)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 10, cfg.UploadMaxMB)
	require.Len(t, cfg.KafkaBrokers, 2)
	assert.Equal(t, "k2:9092", cfg.KafkaBrokers[1])
	assert.False(t, cfg.MetricsEnabled)
}
