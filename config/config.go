package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// ProfileDefault persists to MySQL.
	ProfileDefault = "default"
	// ProfileTest persists to an in-memory SQLite database.
	ProfileTest = "test"

	testCSRFSecret = "sbb-test-csrf-secret"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults outside the test profile and must come from config.json or the environment.
type AppConfig struct {
	AppPort            string
	Profile            string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Persistence
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLiteDSN   string
	// Redis cache for question payloads
	CacheEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Security filter
	CSRFEnabled         bool
	CSRFSecret          string
	CSRFTokenTTLMinutes int
	ConsolePath         string
	FrameOptions        string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load reads config/config.json, applies defaults and environment overrides. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}
	c, err := LoadFrom(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Intended for tests and embedding.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}

// LoadFrom builds a configuration from the given JSON file (missing file is fine),
// defaults and environment variables, in that order of precedence from lowest to highest.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	// Tri-state switches start enabled; JSON or env may turn them off.
	c.CSRFEnabled = true
	c.CacheEnabled = true
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)

	if c.Profile != ProfileDefault && c.Profile != ProfileTest {
		return AppConfig{}, fmt.Errorf("unknown profile %q", c.Profile)
	}
	if c.ConsolePath == "/" {
		return AppConfig{}, errors.New("CONSOLE_PATH must not be the root path")
	}
	if c.CSRFEnabled && c.CSRFSecret == "" {
		return AppConfig{}, errors.New("CSRF_SECRET must be set outside the test profile")
	}
	return c, nil
}

// Defaults returns the built-in configuration of a profile, ignoring files and environment.
func Defaults(profile string) AppConfig {
	c := AppConfig{Profile: profile, CSRFEnabled: true, CacheEnabled: true}
	applyDefaults(&c)
	return c
}

// IsTest reports whether the in-memory test profile is active.
func (c AppConfig) IsTest() bool {
	return c.Profile == ProfileTest
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads grouped sections from the JSON file if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getBool := func(m map[string]any, key string, def bool) bool {
		if b, ok := m[key].(bool); ok {
			return b
		}
		return def
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.Profile = getString(app, "Profile")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
		out.SQLiteDSN = getString(dbs, "SQLiteDSN")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.CacheEnabled = getBool(rds, "Enabled", out.CacheEnabled)
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if sec, ok := raw["security"].(map[string]any); ok {
		out.CSRFEnabled = getBool(sec, "CSRFEnabled", out.CSRFEnabled)
		out.CSRFSecret = getString(sec, "CSRFSecret")
		out.CSRFTokenTTLMinutes = getInt(sec, "CSRFTokenTTLMinutes")
		out.ConsolePath = getString(sec, "ConsolePath")
		out.FrameOptions = getString(sec, "FrameOptions")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.GinMode = getString(lg, "GinMode")
		out.GinPath = getString(lg, "GinPath")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress", false)
	}
	return nil
}

// applyDefaults sets sane defaults for zero-value fields. The test profile swaps the
// durable store for SQLite and turns the Redis cache off.
func applyDefaults(c *AppConfig) {
	if c.Profile == "" {
		c.Profile = ProfileDefault
	}
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "sbb"
	}
	if c.SQLiteDSN == "" {
		c.SQLiteDSN = ":memory:?_pragma=foreign_keys(1)"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CSRFTokenTTLMinutes == 0 {
		c.CSRFTokenTTLMinutes = 120
	}
	if c.ConsolePath == "" {
		c.ConsolePath = "/db-console"
	}
	c.ConsolePath = "/" + strings.Trim(c.ConsolePath, "/")
	if c.FrameOptions == "" {
		c.FrameOptions = "SAMEORIGIN"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}

	if c.Profile == ProfileTest {
		c.CacheEnabled = false
		if c.CSRFSecret == "" {
			c.CSRFSecret = testCSRFSecret
		}
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var err error
	setInt := func(key string, dst *int) {
		v := getEnv(key, "")
		if v == "" || err != nil {
			return
		}
		i, perr := strconv.Atoi(v)
		if perr != nil {
			err = fmt.Errorf("invalid integer value %s=%s: %w", key, v, perr)
			return
		}
		*dst = i
	}
	setBool := func(key string, dst *bool) {
		if v := getEnv(key, ""); v != "" {
			*dst = v == "true" || v == "1"
		}
	}
	setString := func(key string, dst *string) {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("APP_PROFILE", &c.Profile)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)
	setString("SQLITE_DSN", &c.SQLiteDSN)
	setBool("CACHE_ENABLED", &c.CacheEnabled)
	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)
	setBool("CSRF_ENABLED", &c.CSRFEnabled)
	setString("CSRF_SECRET", &c.CSRFSecret)
	setInt("CSRF_TOKEN_TTL_MINUTES", &c.CSRFTokenTTLMinutes)
	setString("CONSOLE_PATH", &c.ConsolePath)
	setString("FRAME_OPTIONS", &c.FrameOptions)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_PATH", &c.GinPath)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)
	return err
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
