package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the optional YAML configuration file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultJWTSecret is accepted outside production only.
const DefaultJWTSecret = "foodgram-dev-secret"

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Redis        RedisConfig        `koanf:"redis"`
	Auth         AuthConfig         `koanf:"auth"`
	Storage      StorageConfig      `koanf:"storage"`
	Logging      LoggingConfig      `koanf:"logging"`
	CORS         CORSConfig         `koanf:"cors"`
	RateLimit    RateLimitConfig    `koanf:"rate_limit"`
	ShoppingList ShoppingListConfig `koanf:"shopping_list"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// PageSize is the default page size of paginated listings.
	PageSize int `koanf:"page_size"`
}

type DatabaseConfig struct {
	// Driver is postgres or sqlite.
	Driver   string `koanf:"driver"`
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`
	// Path is the sqlite database file.
	Path        string `koanf:"path"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Enabled reports whether a Redis server was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type StorageConfig struct {
	// Backend is local or s3.
	Backend     string `koanf:"backend"`
	MediaRoot   string `koanf:"media_root"`
	MediaURL    string `koanf:"media_url"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3PublicURL string `koanf:"s3_public_url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	// RecipeCreation is the number of recipes a user may create per Window. Zero disables the limit.
	RecipeCreation int           `koanf:"recipe_creation"`
	Window         time.Duration `koanf:"window"`
}

type ShoppingListConfig struct {
	Title    string `koanf:"title"`
	FontPath string `koanf:"font_path"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			PageSize:        6,
		},
		Database: DatabaseConfig{
			Driver:      "postgres",
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Name:        "foodgram",
			SSLMode:     "disable",
			Path:        "foodgram.db",
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			JWTSecret: DefaultJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend:   "local",
			MediaRoot: "media",
			MediaURL:  "/media/",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: RateLimitConfig{
			RecipeCreation: 30,
			Window:         time.Hour,
		},
		ShoppingList: ShoppingListConfig{
			Title: "Shopping list",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// environment variables and Docker secrets, in increasing precedence.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"page_size":               "server.page_size",

	"db_driver":       "database.driver",
	"database_url":    "database.url",
	"db_host":         "database.host",
	"db_port":         "database.port",
	"db_user":         "database.user",
	"db_password":     "database.password",
	"db_name":         "database.name",
	"db_ssl_mode":     "database.ssl_mode",
	"db_path":         "database.path",
	"db_auto_migrate": "database.auto_migrate",

	"redis_url":      "redis.url",
	"redis_host":     "redis.host",
	"redis_port":     "redis.port",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",

	"jwt_secret": "auth.jwt_secret",
	"jwt_ttl":    "auth.token_ttl",

	"storage_backend": "storage.backend",
	"media_root":      "storage.media_root",
	"media_url":       "storage.media_url",
	"s3_bucket_name":  "storage.s3_bucket",
	"aws_region":      "storage.s3_region",
	"s3_public_url":   "storage.s3_public_url",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"cors_allowed_origins": "cors.allowed_origins",

	"recipe_rate_limit":        "rate_limit.recipe_creation",
	"recipe_rate_limit_window": "rate_limit.window",

	"shopping_list_title": "shopping_list.title",
	"pdf_font_path":       "shopping_list.font_path",
}

// envTransformFunc maps flat environment variable names onto config paths.
// Unknown variables are dropped.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

var listPaths = []string{"cors.allowed_origins"}

// splitListFields turns comma separated env values into string slices.
func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// applySecrets overrides sensitive values with Docker secrets when present.
func applySecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.Database.Password = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.Redis.Password = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
