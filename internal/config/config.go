package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"boxoffice/internal/cache"
	"boxoffice/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Path to a YAML catalog; the built-in catalog is used when empty
	CatalogFile   string
	AuditInterval time.Duration

	MetricsEnabled bool

	NATS   messaging.Config
	Valkey cache.Config
}

// Load загружает конфигурацию из переменных окружения. Values from a .env
// file in the working directory are used for variables that are not set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		CatalogFile:   getEnv("CATALOG_FILE", ""),
		AuditInterval: getEnvDuration("AUDIT_INTERVAL", time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "boxoffice"),
			ClientID:  getEnv("NATS_CLIENT_ID", "boxoffice-api"),
		},

		Valkey: cache.Config{
			Enabled:  getEnvBool("VALKEY_ENABLED", false),
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TTL:      getEnvDuration("VALKEY_TTL", 5*time.Minute),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
