package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BLOG_SESSION_SECRET_KEY.
const EnvPrefix = "BLOG"

// LoadConfig loads configuration from configFile, environment overrides and defaults.
// A missing config file is not an error; defaults and environment are used instead.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults so that every key can be overridden from the environment
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.production_mode", false)
	v.SetDefault("server.max_upload_mb", 16)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/blog.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("session.secret_key", "")
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.expire_minutes", 60*24*7)
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.store", "database")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.upload_dir", "static/uploads/images")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "images/")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.max_concurrent_uploads", 4)
	v.SetDefault("redis.slot_ttl_seconds", 60)

	v.SetDefault("cors.origins", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Length", "Content-Type"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validateConfig checks the loaded values and prepares local directories
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Session.SecretKey == "" {
		return errors.New("session secret key must not be empty")
	}
	if cfg.Session.ExpireMinutes <= 0 {
		return fmt.Errorf("invalid session lifetime: %d minutes", cfg.Session.ExpireMinutes)
	}
	switch cfg.Session.Store {
	case "database":
	case "redis":
		if !cfg.Redis.Enabled {
			return errors.New("redis session store requires redis.enabled")
		}
	default:
		return fmt.Errorf("unknown session store: %s", cfg.Session.Store)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		dbDir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	case "postgres":
		if cfg.Database.DSN == "" {
			return errors.New("postgres driver requires database.dsn")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}

	switch cfg.Storage.Provider {
	case "local":
		if cfg.Storage.UploadDir == "" {
			return errors.New("storage.upload_dir must not be empty")
		}
		if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
			return fmt.Errorf("create upload directory: %w", err)
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("s3 storage requires storage.s3.bucket")
		}
	default:
		return fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}

	if cfg.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d MB", cfg.Server.MaxUploadMB)
	}

	return nil
}
