package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirements lists the keys that must be non-empty per database driver.
var requirements = map[string][]string{
	"postgres": {"db_host", "db_port", "db_user", "db_name"},
	"sqlite":   {"sqlite_path"},
}

// ValidateConfig checks the configuration for the current environment and
// reports every problem at once.
func ValidateConfig(cfg *Config) error {
	var errs []string

	values := map[string]string{
		"db_host":     cfg.DBHost,
		"db_port":     cfg.DBPort,
		"db_user":     cfg.DBUser,
		"db_name":     cfg.DBName,
		"sqlite_path": cfg.SQLitePath,
	}

	reqs, ok := requirements[cfg.DBDriver]
	if !ok {
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}
	for _, key := range reqs {
		if values[key] == "" {
			errs = append(errs, ValidationError{key, "is required"}.Error())
		}
	}

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"server_port", "is required"}.Error())
	}
	if cfg.PageSize <= 0 {
		errs = append(errs, ValidationError{"page_size", "must be positive"}.Error())
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{"jwt_ttl", "must be positive"}.Error())
	}

	switch GetEnvironment() {
	case Production:
		if cfg.JWTSecret == "" || cfg.JWTSecret == devJWTSecret {
			errs = append(errs, ValidationError{"jwt_secret", "secret is required in production"}.Error())
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "secret is required in production"}.Error())
		}
	case CI:
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"jwt_secret", "JWT_SECRET environment variable is required in CI environment"}.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
