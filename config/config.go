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

const (
	// ConfigPathEnvVar points at an optional YAML config file.
	ConfigPathEnvVar  = "CONFIG_PATH"
	defaultConfigFile = "config.yaml"

	// devJWTSecret is only accepted outside production.
	devJWTSecret = "recipedia-dev-secret"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string `koanf:"server_host"`
	ServerPort string `koanf:"server_port"`

	// Database configuration
	DBDriver   string `koanf:"db_driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	SQLitePath string `koanf:"sqlite_path"`

	// Redis configuration. Redis is optional; without it rate limiting
	// and token revocation are disabled.
	RedisURL      string `koanf:"redis_url"`
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// CORSOrigins is a comma separated list; "*" allows any origin.
	CORSOrigins string `koanf:"cors_origins"`

	// Media storage. S3 is used when S3BucketName is set.
	MediaDir     string `koanf:"media_dir"`
	MediaURL     string `koanf:"media_url"`
	S3BucketName string `koanf:"s3_bucket_name"`
	AWSRegion    string `koanf:"aws_region"`

	RecipeCreateLimit int `koanf:"rate_limit_recipe_create"`
	PageSize          int `koanf:"page_size"`
}

func defaultConfig() Config {
	return Config{
		ServerHost:        "0.0.0.0",
		ServerPort:        "8080",
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBName:            "recipedia",
		DBSSLMode:         "disable",
		SQLitePath:        "recipedia.db",
		RedisPort:         "6379",
		JWTTTL:            24 * time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
		CORSOrigins:       "*",
		MediaDir:          "media",
		MediaURL:          "/media/",
		RecipeCreateLimit: 30,
		PageSize:          6,
	}
}

// LoadConfig builds the configuration from, in increasing priority:
// built-in defaults, the optional YAML file, environment variables and
// docker secrets.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db_host
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	applySecrets(cfg)

	if cfg.JWTSecret == "" && GetEnvironment() != Production {
		cfg.JWTSecret = devJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// AllowedOrigins splits CORSOrigins.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// PostgresDSN returns the lib/pq style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// applySecrets overlays Docker secrets on top of the loaded values.
func applySecrets(cfg *Config) {
	overlay := map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
	}
	for name, field := range overlay {
		if v := readSecret(name); v != "" {
			*field = v
		}
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
