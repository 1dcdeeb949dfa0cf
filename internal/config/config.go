package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

const (
	defaultStorageQuota = "500 MB"
	defaultAdminCode    = "1234"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	MediaPath         string
	StaticPath        string
	MediaURLPrefix    string
	StorageQuota      int64
	QuotaThreshold    float64
	QuotaCheckTimeout time.Duration
	AdminCode         string
	LogLevel          string
	LogFile           string
}

// Load reads the configuration from the environment, after merging a .env
// file from the working directory when one exists. Malformed optional values
// fall back to their defaults; a malformed admin code is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:            getEnv("DB_PATH", "/data/slotimg.db"),
		MediaPath:         getEnv("MEDIA_PATH", "/data/media"),
		StaticPath:        getEnv("STATIC_PATH", "/data/static"),
		MediaURLPrefix:    getEnv("MEDIA_URL_PREFIX", "/media"),
		StorageQuota:      getEnvBytes("STORAGE_QUOTA", defaultStorageQuota),
		QuotaThreshold:    getEnvFraction("QUOTA_THRESHOLD", 0.9),
		QuotaCheckTimeout: getEnvDuration("QUOTA_CHECK_TIMEOUT", 2*time.Second),
		AdminCode:         strings.TrimSpace(getEnv("ADMIN_CODE", defaultAdminCode)),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}

	if err := validateAdminCode(cfg.AdminCode); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateAdminCode(code string) error {
	if code == "" {
		return fmt.Errorf("ADMIN_CODE must not be empty")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("ADMIN_CODE must be numeric")
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvBytes parses human sizes such as "500 MB" or "2GiB".
func getEnvBytes(key, defaultVal string) int64 {
	def, _ := humanize.ParseBytes(defaultVal)
	raw, ok := os.LookupEnv(key)
	if !ok {
		return int64(def)
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil || n == 0 {
		slog.Warn("invalid size, using default", "key", key, "value", raw, "default", defaultVal)
		return int64(def)
	}
	return int64(n)
}

// getEnvFraction accepts values in (0, 1].
func getEnvFraction(key string, defaultVal float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f <= 0 || f > 1 {
		slog.Warn("invalid fraction, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return d
}
