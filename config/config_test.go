package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFrom_JSONSections(t *testing.T) {
	p := writeConfig(t, `{
		"app": {"AppPort": "9090", "Profile": "default", "RateLimitPerMinute": 30, "AllowedOrigins": ["https://a.example"]},
		"database": {"DBHost": "db", "DBName": "board"},
		"redis": {"Enabled": false, "RedisPort": 6380},
		"security": {"CSRFSecret": "s3cret", "ConsolePath": "console/", "CSRFTokenTTLMinutes": 15},
		"log": {"Level": "debug", "MaxBackups": 9}
	}`)

	c, err := LoadFrom(p)
	require.NoError(t, err)
	require.Equal(t, "9090", c.AppPort)
	require.Equal(t, 30, c.RateLimitPerMinute)
	require.Equal(t, []string{"https://a.example"}, c.AllowedOrigins)
	require.Equal(t, "db", c.DBHost)
	require.Equal(t, "3306", c.DBPort)
	require.Equal(t, "board", c.DBName)
	require.False(t, c.CacheEnabled)
	require.Equal(t, 6380, c.RedisPort)
	require.True(t, c.CSRFEnabled)
	require.Equal(t, "s3cret", c.CSRFSecret)
	require.Equal(t, 15, c.CSRFTokenTTLMinutes)
	require.Equal(t, "/console", c.ConsolePath)
	require.Equal(t, "SAMEORIGIN", c.FrameOptions)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, 9, c.LogMaxBackups)
	require.False(t, c.IsTest())
}

func TestLoadFrom_EnvOverridesJSON(t *testing.T) {
	p := writeConfig(t, `{"app": {"AppPort": "9090"}, "security": {"CSRFSecret": "from-file"}}`)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("CSRF_SECRET", "from-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_ENABLED", "false")

	c, err := LoadFrom(p)
	require.NoError(t, err)
	require.Equal(t, "7070", c.AppPort)
	require.Equal(t, "from-env", c.CSRFSecret)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	require.Equal(t, 3, c.RedisDB)
	require.False(t, c.CacheEnabled)
}

func TestLoadFrom_TestProfile(t *testing.T) {
	t.Setenv("APP_PROFILE", ProfileTest)

	c, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.True(t, c.IsTest())
	require.False(t, c.CacheEnabled)
	require.Equal(t, testCSRFSecret, c.CSRFSecret)
	require.Equal(t, ":memory:?_pragma=foreign_keys(1)", c.SQLiteDSN)
	require.Equal(t, "/db-console", c.ConsolePath)
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("missing csrf secret", func(t *testing.T) {
		t.Setenv("APP_PROFILE", "")
		t.Setenv("CSRF_ENABLED", "")
		t.Setenv("CSRF_SECRET", "")
		_, err := LoadFrom("")
		require.ErrorContains(t, err, "CSRF_SECRET")
	})
	t.Run("csrf disabled needs no secret", func(t *testing.T) {
		t.Setenv("CSRF_ENABLED", "false")
		_, err := LoadFrom("")
		require.NoError(t, err)
	})
	t.Run("unknown profile", func(t *testing.T) {
		t.Setenv("APP_PROFILE", "staging")
		t.Setenv("CSRF_SECRET", "x")
		_, err := LoadFrom("")
		require.ErrorContains(t, err, "staging")
	})
	t.Run("invalid integer", func(t *testing.T) {
		t.Setenv("CSRF_SECRET", "x")
		t.Setenv("REDIS_PORT", "abc")
		_, err := LoadFrom("")
		require.ErrorContains(t, err, "REDIS_PORT")
	})
	t.Run("root console path", func(t *testing.T) {
		t.Setenv("CSRF_SECRET", "x")
		t.Setenv("CONSOLE_PATH", "/")
		_, err := LoadFrom("")
		require.ErrorContains(t, err, "CONSOLE_PATH")
	})
	t.Run("root console path in json", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, `{"security": {"CSRFSecret": "x", "ConsolePath": "///"}}`))
		require.ErrorContains(t, err, "CONSOLE_PATH")
	})
	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, `{"app":`))
		require.Error(t, err)
	})
}

func TestDefaults(t *testing.T) {
	c := Defaults(ProfileTest)
	require.True(t, c.IsTest())
	require.True(t, c.CSRFEnabled)
	require.NotEmpty(t, c.CSRFSecret)

	d := Defaults(ProfileDefault)
	require.True(t, d.CacheEnabled)
	require.Empty(t, d.CSRFSecret)
	require.Equal(t, "8080", d.AppPort)
}

func TestMySQLDSN(t *testing.T) {
	c := Defaults(ProfileDefault)
	c.DBPassword = "pw"
	require.Equal(t, "root:pw@tcp(127.0.0.1:3306)/sbb?charset=utf8mb4&parseTime=True&loc=Local", mysqlDSN(c))

	c.DatabaseURI = "u:p@tcp(h:1)/x"
	require.Equal(t, "u:p@tcp(h:1)/x", mysqlDSN(c))
}
