package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/fieldops")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "25", cfg.Pricing.DefaultHourlyRate.String())
	assert.True(t, cfg.Pricing.DefaultVatRate.IsZero())
	assert.Equal(t, 5, cfg.Numbering.MaxAttempts)
	assert.Equal(t, "@every 1h", cfg.Worker.QuoteExpirySchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/fieldops")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("PRICING_DEFAULT_HOURLY_RATE", "32.50")
	t.Setenv("PRICING_DEFAULT_VAT_RATE", "20")
	t.Setenv("NUMBERING_MAX_ATTEMPTS", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "32.5", cfg.Pricing.DefaultHourlyRate.String())
	assert.Equal(t, "20", cfg.Pricing.DefaultVatRate.String())
	assert.Equal(t, 9, cfg.Numbering.MaxAttempts)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{"JWT_ACCESS_SECRET": "secret"}},
		{"missing secret", map[string]string{"DB_DSN": "postgres://x"}},
		{"negative rate", map[string]string{"DB_DSN": "postgres://x", "JWT_ACCESS_SECRET": "s", "PRICING_DEFAULT_HOURLY_RATE": "-1"}},
		{"bad rate", map[string]string{"DB_DSN": "postgres://x", "JWT_ACCESS_SECRET": "s", "PRICING_DEFAULT_HOURLY_RATE": "abc"}},
		{"vat over 100", map[string]string{"DB_DSN": "postgres://x", "JWT_ACCESS_SECRET": "s", "PRICING_DEFAULT_VAT_RATE": "101"}},
		{"zero attempts", map[string]string{"DB_DSN": "postgres://x", "JWT_ACCESS_SECRET": "s", "NUMBERING_MAX_ATTEMPTS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "")
			t.Setenv("JWT_ACCESS_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
