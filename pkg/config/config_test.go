package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Port    int           `env:"TEST_PORT" envDefault:"5000"`
	Driver  string        `env:"TEST_STORE_DRIVER" envDefault:"mongo"`
	Brokers []string      `env:"TEST_KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"5s"`
	Enabled bool          `env:"TEST_ENABLED" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg serverConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "mongo", cfg.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Enabled)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")
	t.Setenv("TEST_STORE_DRIVER", "postgres")
	t.Setenv("TEST_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_TIMEOUT", "250ms")
	t.Setenv("TEST_ENABLED", "true")

	var cfg serverConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Enabled)
}

type secretConfig struct {
	Secret string `env:"TEST_JWT_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg secretConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")

	var cfg secretConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "s3cret", cfg.Secret)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_PORT", "five-thousand")

	var cfg serverConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
