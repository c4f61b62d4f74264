package app

import (
	"fmt"
	"slices"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager/internal/config"
)

func MustReadEnv() {
	cfg, err := loadConfig(config.NewEnvReader(), globalLogger)
	if err != nil {
		panic(err)
	}
	config.SetGlobal(cfg)
}

// loadConfig reads the server configuration and logs the settings that
// shape how the process runs. Secrets are never logged.
func loadConfig(reader config.Reader, logger zerolog.Logger) (*config.Config, error) {
	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read env")
		return nil, fmt.Errorf("read config: %w", err)
	}

	logger.Info().
		Str("env", cfg.Env).
		Str("http_addr", cfg.HTTP.Host+":"+cfg.HTTP.Port).
		Str("storage_driver", cfg.Storage.Driver).
		Str("password_hasher", cfg.Password.Hasher).
		Bool("expose_errors", cfg.ExposeErrors()).
		Dur("jwt_ttl", cfg.JWT.TTL).
		Msg("read env")

	if cfg.Env != config.EnvProd {
		return cfg, nil
	}
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn().Msg("memory storage in prod, data is lost on restart")
	}
	if slices.Contains(cfg.HTTP.CORSAllowedOrigins, "*") {
		logger.Warn().Msg("CORS allows any origin in prod")
	}
	return cfg, nil
}
