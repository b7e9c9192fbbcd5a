package config

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// ValidateConfig checks the configuration and reports every problem at once
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if cfg.Env == Production && len(cfg.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters in production")
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, "JWT_TTL must be positive")
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("SERVER_PORT must be between 1 and 65535, got %q", cfg.ServerPort))
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
			errors = append(errors, "DB_HOST, DB_NAME and DB_USER are required for postgres")
		}
		if cfg.Env == CI && cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD environment variable is required in CI environment")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required for sqlite")
		}
	default:
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver))
	}

	if !contains(validLogLevels, cfg.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	if !contains(validLogFormats, cfg.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if cfg.RecipeCreateLimit < 1 || cfg.RecipeCreateWindow <= 0 {
		errors = append(errors, "RECIPE_CREATE_LIMIT and RECIPE_CREATE_WINDOW must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
