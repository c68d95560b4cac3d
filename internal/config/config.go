package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string        `yaml:"port"`
	APIBaseURL   string        `yaml:"api_base_url"`
	APITimeout   time.Duration `yaml:"api_timeout"`
	PageSize     int           `yaml:"page_size"`
	BulkSize     int           `yaml:"bulk_size"`
	LogLevel     string        `yaml:"log_level"`
	CookieDomain string        `yaml:"cookie_domain"`
	CookieSecure bool          `yaml:"cookie_secure"`
	CSRFKey      []byte        `yaml:"-"`
	SessionKey   []byte        `yaml:"-"`

	DevBackend DevBackendConfig `yaml:"dev_backend"`
}

// DevBackendConfig configures the local stand-in for the remote API.
type DevBackendConfig struct {
	Port          string `yaml:"port"`
	DBPath        string `yaml:"db_path"`
	JWTSecret     string `yaml:"jwt_secret"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	UploadDir     string `yaml:"upload_dir"`
}

func defaults() *Config {
	return &Config{
		Port:       "8585",
		APIBaseURL: "http://localhost:8686",
		APITimeout: 15 * time.Second,
		PageSize:   5,
		BulkSize:   1000,
		LogLevel:   "debug",
		DevBackend: DevBackendConfig{
			Port:          "8686",
			DBPath:        "./carmate-dev.db",
			AdminEmail:    "admin@carmate.local",
			AdminPassword: "Admin@123",
			UploadDir:     "./carmate-uploads",
		},
	}
}

// LoadConfig builds the server configuration from defaults, the optional
// YAML file named by CONFIG_FILE, and finally the environment.
func LoadConfig() (*Config, error) {
	cfg, err := LoadClientConfig()
	if err != nil {
		return nil, err
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}
	return cfg, nil
}

// LoadDevBackendConfig is LoadClientConfig plus the development backend's
// token secret.
func LoadDevBackendConfig() (*Config, error) {
	cfg, err := LoadClientConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DevBackend.JWTSecret == "" {
		slog.Warn("DEV_BACKEND_JWT_SECRET not set. Generating a random secret; issued tokens will not survive a restart.")
		cfg.DevBackend.JWTSecret = base64.StdEncoding.EncodeToString(generateRandomBytes(32))
	}
	if _, err := strconv.Atoi(cfg.DevBackend.Port); err != nil {
		slog.Error("Invalid DEV_BACKEND_PORT. Falling back to default.", "DEV_BACKEND_PORT", cfg.DevBackend.Port)
		cfg.DevBackend.Port = "8686"
	}
	return cfg, nil
}

// LoadClientConfig reads what a backend client needs and leaves the
// server secrets unset.
func LoadClientConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", cfg.CookieDomain)
	cfg.CookieSecure = getEnv("COOKIE_SECURE", strconv.FormatBool(cfg.CookieSecure)) == "true"
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.BulkSize = getEnvInt("BULK_SIZE", cfg.BulkSize)

	if v, ok := os.LookupEnv("API_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("Invalid API_TIMEOUT, keeping default", "API_TIMEOUT", v, "default", cfg.APITimeout)
		} else {
			cfg.APITimeout = d
		}
	}

	cfg.DevBackend.Port = getEnv("DEV_BACKEND_PORT", cfg.DevBackend.Port)
	cfg.DevBackend.DBPath = getEnv("DEV_BACKEND_DB_PATH", cfg.DevBackend.DBPath)
	cfg.DevBackend.JWTSecret = getEnv("DEV_BACKEND_JWT_SECRET", cfg.DevBackend.JWTSecret)
	cfg.DevBackend.AdminEmail = getEnv("DEV_BACKEND_ADMIN_EMAIL", cfg.DevBackend.AdminEmail)
	cfg.DevBackend.AdminPassword = getEnv("DEV_BACKEND_ADMIN_PASSWORD", cfg.DevBackend.AdminPassword)
	cfg.DevBackend.UploadDir = getEnv("DEV_BACKEND_UPLOAD_DIR", cfg.DevBackend.UploadDir)

	if cfg.PageSize < 1 {
		slog.Warn("PAGE_SIZE must be positive. Falling back to default.", "PAGE_SIZE", cfg.PageSize)
		cfg.PageSize = 5
	}
	if cfg.BulkSize < 1 {
		slog.Warn("BULK_SIZE must be positive. Falling back to default.", "BULK_SIZE", cfg.BulkSize)
		cfg.BulkSize = 1000
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level; unknown values mean debug.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelDebug
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadKey decodes a base64 key of at least 32 bytes, falling back to a random one.
func loadKey(name string) []byte {
	keyStr := os.Getenv(name)
	if keyStr == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decodedKey, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil || len(decodedKey) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decodedKey
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer environment variable, keeping default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		// Fallback to a less secure random string if crypto/rand fails
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		paddedKey := make([]byte, n)
		copy(paddedKey, fallbackKey)
		return paddedKey
	}
	return b
}
