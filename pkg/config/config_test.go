package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("FIREFLY_BASE_URL", "https://ff.example.com")
	t.Setenv("FIREFLY_TOKEN", "test-token")
	t.Setenv("INCOME_ACCOUNT_ID", "40")
	t.Setenv("OWED_ACCOUNT_ID", "20")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5010", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "USD", cfg.CurrencyCode)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("CURRENCY_CODE", "EUR")
	t.Setenv("TIMEZONE", "America/Chicago")
	t.Setenv("DATABASE_URL", "postgres://localhost/ffrelay")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "EUR", cfg.CurrencyCode)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, "postgres://localhost/ffrelay", cfg.DatabaseURL)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing base url", "FIREFLY_BASE_URL"},
		{"missing token", "FIREFLY_TOKEN"},
		{"missing income account", "INCOME_ACCOUNT_ID"},
		{"missing owed account", "OWED_ACCOUNT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}
