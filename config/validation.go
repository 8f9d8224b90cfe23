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

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig checks the configuration against the rules of the current environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.Server.Port == "" {
		add("server.port", "is required")
	}
	if cfg.Server.PageSize < 1 {
		add("server.page_size", "must be at least 1")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.Name == "") {
			add("database", "postgres requires a URL or host and name")
		}
	case "sqlite":
		if cfg.Database.Path == "" {
			add("database.path", "is required for sqlite")
		}
	default:
		add("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver))
	}

	if cfg.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		add("auth.token_ttl", "must be positive")
	}

	switch cfg.Storage.Backend {
	case "local":
		if cfg.Storage.MediaRoot == "" {
			add("storage.media_root", "is required for local storage")
		}
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			add("storage.s3_bucket", "is required for s3 storage")
		}
	default:
		add("storage.backend", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend))
	}

	if cfg.RateLimit.RecipeCreation < 0 {
		add("rate_limit.recipe_creation", "must not be negative")
	}
	if cfg.RateLimit.RecipeCreation > 0 && cfg.RateLimit.Window <= 0 {
		add("rate_limit.window", "must be positive")
	}

	if GetEnvironment() == Production {
		if cfg.Auth.JWTSecret == DefaultJWTSecret {
			add("auth.jwt_secret", "the development secret is not allowed in production")
		}
		if cfg.Database.Driver != "postgres" {
			add("database.driver", "production requires postgres")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
