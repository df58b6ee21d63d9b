package config

import (
	"fmt"
	"time"
)

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	ProductionMode bool   `mapstructure:"production_mode"`
	MaxUploadMB    int64  `mapstructure:"max_upload_mb"`
}

// GetAddress returns host:port
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm driver. Path is used by sqlite, DSN by postgres.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig login session settings
type SessionConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	CookieName    string `mapstructure:"cookie_name"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
	SecureCookie  bool   `mapstructure:"secure_cookie"`
	// Store is "database" or "redis".
	Store string `mapstructure:"store"`
}

// GetExpireDuration returns the session lifetime
func (s *SessionConfig) GetExpireDuration() time.Duration {
	return time.Duration(s.ExpireMinutes) * time.Minute
}

// StorageConfig upload storage settings
type StorageConfig struct {
	// Provider is "local" or "s3".
	Provider  string   `mapstructure:"provider"`
	UploadDir string   `mapstructure:"upload_dir"`
	S3        S3Config `mapstructure:"s3"`
}

// S3Config S3 compatible bucket
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	DB                   int    `mapstructure:"db"`
	Password             string `mapstructure:"password"`
	MaxConcurrentUploads int    `mapstructure:"max_concurrent_uploads"`
	SlotTTLSeconds       int    `mapstructure:"slot_ttl_seconds"`
}

// GetAddress returns the Redis address
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetSlotTTL returns how long an upload slot survives without release
func (r *RedisConfig) GetSlotTTL() time.Duration {
	return time.Duration(r.SlotTTLSeconds) * time.Second
}

// CORSConfig CORS settings
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
