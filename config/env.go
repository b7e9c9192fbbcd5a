package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment is the runtime environment the service is deployed in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment resolves the environment from CI and ENV. CI wins.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch Environment(os.Getenv("ENV")) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// usesDotEnv reports whether a local .env file should be consulted.
func (e Environment) usesDotEnv() bool {
	return e == Development || e == Test
}

// loadDotEnv reads the given files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}
