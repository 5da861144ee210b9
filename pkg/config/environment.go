package config

import "os"

// Environment variables that take precedence over the config file
const (
	EnvConfigPath        = "LIVY_CONFIG_PATH"
	EnvAPIURL            = "LIVY_API_URL"
	EnvTelemetryDisabled = "LIVY_TELEMETRY_DISABLED"
)

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
