package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Backend  string        `env:"TEST_CFG_BACKEND" envDefault:"memory"`
	Timeout  time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"2s"`
	Origins  []string      `env:"TEST_CFG_ORIGINS" envDefault:"*" envSeparator:","`
	CacheOff bool          `env:"TEST_CFG_CACHE_OFF" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Origins)
	assert.False(t, cfg.CacheOff)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BACKEND", "postgres")
	t.Setenv("TEST_CFG_TIMEOUT", "750ms")
	t.Setenv("TEST_CFG_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("TEST_CFG_CACHE_OFF", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres", cfg.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins)
	assert.True(t, cfg.CacheOff)
}

func TestLoad_Prefix(t *testing.T) {
	t.Setenv("SEED_TEST_CFG_PORT", "7070")

	var cfg testConfig
	require.NoError(t, Load(&cfg, "SEED_"))
	assert.Equal(t, 7070, cfg.Port)
}

type requiredConfig struct {
	Token string `env:"TEST_CFG_TOKEN,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
