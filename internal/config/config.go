package config

import (
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Password PasswordConfig
}

// Validate checks the values cleanenv cannot express with tags.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.JWT.SigningKey == "" {
		return fmt.Errorf("jwt signing key must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}
	return nil
}

// ExposeErrors reports whether error details may be sent to clients.
func (c *Config) ExposeErrors() bool {
	return c.Env == EnvDev || c.Env == EnvLocal
}

type HTTPConfig struct {
	Host               string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port               string        `env:"HTTP_PORT" env-default:"5000"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSAllowedOrigins []string      `env:"HTTP_CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	AuthRateLimit      float64       `env:"HTTP_AUTH_RATE_LIMIT" env-default:"5"`
	AuthRateBurst      int           `env:"HTTP_AUTH_RATE_BURST" env-default:"10"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE" env-default:"tasks"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	AutoMigrate    bool          `env:"POSTGRES_AUTO_MIGRATE" env-default:"true"`
}

type JWTConfig struct {
	Issuer     string        `env:"JWT_ISSUER" env-default:"task-manager"`
	SigningKey string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	TTL        time.Duration `env:"JWT_TTL" env-default:"720h"`
}

type PasswordConfig struct {
	Hasher string `env:"PASSWORD_HASHER" env-default:"argon2id"`
}

// ClientConfig configures the taskctl terminal client.
type ClientConfig struct {
	ServerURL   string        `env:"TASKCTL_SERVER_URL" env-default:"http://localhost:5000"`
	SessionFile string        `env:"TASKCTL_SESSION_FILE"`
	Timeout     time.Duration `env:"TASKCTL_TIMEOUT" env-default:"10s"`
}
