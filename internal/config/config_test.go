package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/loan-risk-service/internal/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, config.ModelBackendPMML, cfg.ModelBackend)
	assert.Equal(t, 10*time.Second, cfg.ModelTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Len(t, cfg.EncryptionKey, 32)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.RescoreSchedule)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_BACKEND", "remote")
	t.Setenv("MODEL_URL", "http://model:8080/invocations")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("ENCRYPTION_KEY", "00112233445566778899aabbccddeeff")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.ModelBackendRemote, cfg.ModelBackend)
	assert.Equal(t, "http://model:8080/invocations", cfg.ModelURL)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Len(t, cfg.EncryptionKey, 16)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"empty db", "DB_CONN", ""},
		{"empty jwt secret", "JWT_SECRET", ""},
		{"unknown backend", "MODEL_BACKEND", "onnx"},
		{"bad timeout", "MODEL_TIMEOUT", "soon"},
		{"bad ttl", "CACHE_TTL", "forever"},
		{"non-hex key", "ENCRYPTION_KEY", "zz"},
		{"short key", "ENCRYPTION_KEY", "0011"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.NewConfig()
			assert.Error(t, err)
		})
	}
}
