package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv_OverridesDefaults(t *testing.T) {
	cfg := Defaults()
	err := applyEnv(&cfg, envMap(map[string]string{
		"PORT":                  "9090",
		"SECRET_KEY":            "s3cret",
		"SESSION_TTL":           "24h",
		"CAPABILITY_TTL":        "5m",
		"CAPABILITY_SINGLE_USE": "true",
		"PUBLIC_BASE_URL":       "https://billing.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.CapabilityTTL)
	assert.True(t, cfg.CapabilitySingleUse)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_SecretKeyWinsOverJWTSecret(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, applyEnv(&cfg, envMap(map[string]string{
		"JWT_SECRET": "old",
		"SECRET_KEY": "new",
	})))
	assert.Equal(t, "new", cfg.SecretKey)
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	cfg := Defaults()
	err := applyEnv(&cfg, envMap(map[string]string{"SESSION_TTL": "seven days"}))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.SecretKey = "x"
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.SecretKey = ""
	assert.Error(t, noSecret.Validate())

	prodDefault := base
	prodDefault.Env = EnvProd
	prodDefault.SecretKey = devSecret
	assert.Error(t, prodDefault.Validate())

	badURL := base
	badURL.PublicBaseURL = "localhost"
	assert.Error(t, badURL.Validate())

	badTTL := base
	badTTL.CapabilityTTL = 0
	assert.Error(t, badTTL.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\nsecret_key: from-file\npublic_base_url: https://files.example.com\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, "https://files.example.com", cfg.PublicBaseURL)
}
