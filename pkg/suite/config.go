package suite

import (
	"os"
	"strconv"
)

// Config holds runtime settings for a suite run
type Config struct {
	// ResultsPath is where per-check results and the summary are written.
	// Empty disables writing.
	ResultsPath string

	// DefaultFixture is applied to checks that set neither dir nor fixture
	DefaultFixture string

	// FailFast stops the run at the first failing check
	FailFast bool
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		ResultsPath:    getEnv("CMDCHECK_RESULTS_PATH", ""),
		DefaultFixture: getEnv("CMDCHECK_DEFAULT_FIXTURE", "tmpdir"),
		FailFast:       getEnvBool("CMDCHECK_FAIL_FAST", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
