package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(10), cfg.MinStake)
	assert.Equal(t, 1, cfg.MessageCooldownMinutes)
	assert.Equal(t, int64(5), cfg.VoiceAwardIntervalMinutes)
	assert.Equal(t, 10*time.Minute, cfg.SettlementInterval())
	assert.Equal(t, time.Second, cfg.OracleRateLimitDelay())
	assert.Equal(t, []int{39, 140, 135, 78, 61, 106}, cfg.SupportedCompetitions)
	assert.Equal(t, "typer.promotions", cfg.PromotionSubject)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("MIN_STAKE", "25")
	t.Setenv("MESSAGE_COOLDOWN_MINUTES", "3")
	t.Setenv("SUPPORTED_COMPETITIONS", "39,2")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(25), cfg.MinStake)
	assert.Equal(t, 3*time.Minute, cfg.MessageCooldown())
	assert.Equal(t, []int{39, 2}, cfg.SupportedCompetitions)
}

func TestLoad_RequiresTokenOutsideTest(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")

	_, err := load()
	assert.ErrorContains(t, err, "DISCORD_TOKEN")
}

func TestValidate_RejectsNonPositiveRules(t *testing.T) {
	cfg := NewTestConfig()
	cfg.MinStake = 0
	assert.Error(t, cfg.Validate())

	cfg = NewTestConfig()
	cfg.VoiceAwardIntervalMinutes = 0
	assert.Error(t, cfg.Validate())

	cfg = NewTestConfig()
	assert.NoError(t, cfg.Validate())
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	cfg := NewTestConfig()
	cfg.MinStake = 42
	SetTestConfig(cfg)

	assert.Equal(t, int64(42), Get().MinStake)
}
