package pkg

import "os"

// Getenv returns the value of key, or defaultValue if key is not set.
// A key set to an empty string is returned as is.
func Getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return defaultValue
}
