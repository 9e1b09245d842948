package config

import (
	"os"
	"strings"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	STUNServers    []string
	Redis          RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis presence mirror has been configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func Load() *Config {
	// Parse allowed origins (comma-separated); empty means allow any,
	// matching the reference deployment's wide-open CORS.
	var origins []string
	if originsStr := getEnv("ALLOWED_ORIGINS", ""); originsStr != "" {
		origins = strings.Split(originsStr, ",")
	}

	stun := strings.Split(getEnv("STUN_URLS", "stun:stunprotocol.org"), ",")

	return &Config{
		Port:           getEnv("PORT", "5000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		STUNServers:    stun,
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
