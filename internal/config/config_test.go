package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadAppliesDefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t, "SERVER_PORT", "PIPELINE_DEFAULT_CPU_CORES", "JWT_SECRET")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Pipeline.DefaultCPUCores)
	assert.True(t, cfg.Pipeline.CacheEvictionOn)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "too-short")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "verbose")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })
	_, err := Load()
	require.Error(t, err)
}

func TestPostgresDSNFormatsConnectionString(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "awr", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=awr sslmode=disable", c.DSN())
}
