package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every external source at empty temp locations.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", filepath.Join(dir, "secrets"))
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "recipedia", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_name: fromfile\ndb_host: filehost\npage_size: 10\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("JWT_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "fromfile", cfg.DBName)
	assert.Equal(t, "envhost", cfg.DBHost)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
}

func TestLoadConfigSecretsOverlay(t *testing.T) {
	dir := isolate(t)

	secrets := filepath.Join(dir, "secrets")
	require.NoError(t, os.MkdirAll(secrets, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "db_password"), []byte("s3cr3t"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "s3cr3t", cfg.DBPassword)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Contains(t, err.Error(), "db_password")
}

func TestValidateConfigUnknownDriver(t *testing.T) {
	isolate(t)
	cfg := defaultConfig()
	cfg.DBDriver = "mysql"

	err := ValidateConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_driver")
}

func TestValidateConfigSQLite(t *testing.T) {
	isolate(t)
	cfg := defaultConfig()
	cfg.DBDriver = "sqlite"
	cfg.DBHost = ""

	assert.NoError(t, ValidateConfig(&cfg))

	cfg.SQLitePath = ""
	assert.Error(t, ValidateConfig(&cfg))
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: "http://a.test, http://b.test,,"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
