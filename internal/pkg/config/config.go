// Package config loads service configuration from environment variables
// with sensible local-development defaults.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	HTTPAddr string
	DBPath   string

	// RedisAddr selects the redis session store. Empty means the in-memory
	// store, which is what local development and tests use.
	RedisAddr string

	// CheckoutNumberAttempts bounds the order-number collision retry loop.
	CheckoutNumberAttempts int
}

func Load() Config {
	return Config{
		ServiceName:            getEnv("SERVICE_NAME", "fulfillment-service"),
		Env:                    getEnv("APP_ENV", "local"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DBPath:                 getEnv("DB_PATH", "./data/fulfillment.db"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		CheckoutNumberAttempts: getEnvInt("CHECKOUT_NUMBER_ATTEMPTS", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
