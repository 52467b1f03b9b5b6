package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := NewAppConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestNewAppConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	cfg, err := NewAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ScrapeMinDelay)
	assert.Equal(t, 0.3, cfg.SimilarityGate)
	assert.Equal(t, 0.1, cfg.CombinedGate)
	assert.Equal(t, 0.15, cfg.SimilarityFilter)
	assert.Equal(t, 0.01, cfg.CombinedFilter)
	assert.Equal(t, 0.5, cfg.SimilarityWeight)
	assert.Equal(t, 0.5, cfg.SkillWeight)
	assert.Equal(t, 0.8, cfg.SkillOnlyMultiplier)
}

func TestNewAppConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("SCORE_SIMILARITY_GATE", "0.5")
	t.Setenv("SCRAPE_MIN_DELAY_SECONDS", "0.5")

	cfg, err := NewAppConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.SimilarityGate)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapeMinDelay)
}

func TestNewAppConfigInvalidFloat(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("SCORE_COMBINED_GATE", "not-a-number")

	_, err := NewAppConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCORE_COMBINED_GATE")
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-0123456789abcdef")
	t.Setenv("JWT_TTL", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-0123456789abcdef", cfg.Secret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestNewJWTConfigTTLOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-0123456789abcdef")
	t.Setenv("JWT_TTL", "90m")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
}

func TestNewJWTConfigMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	require.Error(t, err)
}

func TestNewJWTConfigShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := NewJWTConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestPasswordHashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, cfg.VerifyPassword("hunter2hunter2", hash))
	assert.False(t, cfg.VerifyPassword("wrong-password", hash))
}

func TestPasswordCostOutOfRange(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")

	_, err := NewPasswordConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
