package harperdb

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// GetEnvDurationOrDefault parses key with time.ParseDuration. A bare number
// is read as seconds.
func GetEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err == nil {
		return d, nil
	}
	if seconds, parseErr := strconv.ParseFloat(value, 64); parseErr == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
}
