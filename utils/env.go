package utils

import (
	"os"
	"strconv"
	"time"
)

// GetEnvAsString retrieves an environment variable or returns a default value
func GetEnvAsString(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// GetEnvAsInt retrieves an environment variable and converts it to an integer
func GetEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultVal
}

// GetEnvAsDuration retrieves an environment variable and converts it to Duration
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultVal
}

// IsProduction reports whether the server runs in production mode.
// Controls cookie flags and how much error detail leaves the API.
func IsProduction() bool {
	return os.Getenv("GO_ENV") == "production"
}
