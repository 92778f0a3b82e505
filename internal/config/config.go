package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8080"
	DefaultJWTExpiresIn = "24h"
	DefaultPGHost       = "127.0.0.1"
	DefaultPGPort       = 5432
	DefaultPGUser       = "postgres"
	DefaultPGDatabase   = "returns"
	DefaultPGSSLMode    = "disable"
	DefaultS3Region     = "ap-southeast-1"
	DefaultS3Prefix     = "images/"
	DefaultWebOrigin    = "https://returnscoi.vercel.app"
	// DefaultCleanupSpec runs the deleted-notes purge once a day.
	DefaultCleanupSpec      = "@daily"
	DefaultCleanupRetention = "168h"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Admin    AdminConfig    `toml:"admin"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Telegram TelegramConfig `toml:"telegram"`
	Cleanup  CleanupConfig  `toml:"cleanup"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AdminConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// DSN renders the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type S3Config struct {
	Bucket string `toml:"bucket"`
	Region string `toml:"region"`
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO, R2). Empty means the real AWS endpoint.
	Endpoint string `toml:"endpoint"`
	Prefix   string `toml:"prefix"`
}

type TelegramConfig struct {
	// BotToken is secret-managed; prefer the TELEGRAM_TOKEN env var over
	// committing it to config.toml.
	BotToken string `toml:"bot_token"`
	// WebOrigin is the fixed origin deep links point at.
	WebOrigin string `toml:"web_origin"`
}

type CleanupConfig struct {
	Schedule  string `toml:"schedule"`
	Retention string `toml:"retention"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Email:    "you@example.com",
			Password: "change-your-password-here",
			Name:     "Admin",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		S3: S3Config{
			Region: DefaultS3Region,
			Prefix: DefaultS3Prefix,
		},
		Telegram: TelegramConfig{
			WebOrigin: DefaultWebOrigin,
		},
		Cleanup: CleanupConfig{
			Schedule:  DefaultCleanupSpec,
			Retention: DefaultCleanupRetention,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return applyEnv(cfg), nil
}

// applyEnv layers secret-bearing environment variables over the file config,
// mirroring how the bot token is injected at deploy time rather than stored.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	return cfg
}
