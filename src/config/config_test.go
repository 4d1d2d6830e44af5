package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "MAX_UPLOAD_SIZE_BYTES", "CACHE_EXPIRATION", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "9090")

	cfg := fromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSizeBytes, "empty size falls back to 10MB")
	assert.Equal(t, 15*time.Minute, cfg.CacheExpiration)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "2048")
	t.Setenv("CACHE_EXPIRATION", "2m")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := fromEnv()

	assert.Equal(t, int64(2048), cfg.MaxUploadSizeBytes)
	assert.Equal(t, 2*time.Minute, cfg.CacheExpiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}
