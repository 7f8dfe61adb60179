package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	conf, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, 15*time.Minute, conf.Auth.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, conf.Auth.Refresh.TTL)
	assert.Equal(t, 120*time.Second, conf.Auth.Refresh.GracePeriod)
	assert.Equal(t, int64(10), conf.Auth.Refresh.RateLimit)
	assert.Equal(t, time.Minute, conf.Auth.Refresh.RateWindow)
	assert.Equal(t, 5, conf.Auth.Login.MaxAttempts)
	assert.Equal(t, 15*time.Minute, conf.Auth.Login.Window)
	assert.Equal(t, 12, conf.Auth.BcryptCost)
	assert.False(t, conf.Auth.Captcha.Enabled)
	assert.False(t, conf.Email.Enabled)
	require.NotNil(t, conf.Jaeger)
	assert.Equal(t, "const", conf.Jaeger.Sampler.Type)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("AUTH_REFRESH_GRACE_PERIOD", "30s")
	t.Setenv("AUTH_LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	conf, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, conf.Server.TrustedProxies)
	assert.Equal(t, 30*time.Second, conf.Auth.Refresh.GracePeriod)
	assert.Equal(t, 3, conf.Auth.Login.MaxAttempts)
	assert.Equal(t, "db", conf.DB.Host)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AUTH_JWT_SECRET=from-file\nSERVER_PORT=9090\n"), 0o600))
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", conf.Auth.JWT.Secret)
	assert.Equal(t, 9090, conf.Server.Port)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
