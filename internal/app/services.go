package app

import (
	"fmt"

	"github.com/adanyl0v/task-manager/internal/auth"
	"github.com/adanyl0v/task-manager/internal/config"
	"github.com/adanyl0v/task-manager/internal/services"
	"github.com/adanyl0v/task-manager/internal/storage"
	"github.com/adanyl0v/task-manager/internal/storage/memory"
	"github.com/adanyl0v/task-manager/internal/storage/postgres"
)

var (
	globalUserRepository storage.UserRepository
	globalTaskRepository storage.TaskRepository

	globalAuthService services.AuthService
	globalTaskService services.TaskService
)

// MustInitStorage opens the backend selected by STORAGE_DRIVER.
func MustInitStorage() {
	cfg := config.Global()

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		MustConnectPostgres()
		if cfg.Postgres.AutoMigrate {
			MustMigratePostgres()
		}
		globalUserRepository = postgres.NewUserRepository(globalPostgresPool)
		globalTaskRepository = postgres.NewTaskRepository(globalPostgresPool)
	case config.StorageDriverMemory:
		store := memory.New()
		globalUserRepository = store.Users()
		globalTaskRepository = store.Tasks()
		globalLogger.Warn().Msg("using in-memory storage, data will not survive a restart")
	default:
		err := fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
		globalLogger.Error().
			Err(err).
			Msg("failed to init storage")
		panic(err)
	}

	globalLogger.Info().
		Str("driver", cfg.Storage.Driver).
		Msg("initialized storage")
}

func CloseStorage() {
	DisconnectPostgres()
}

func MustInitServices() {
	cfg := config.Global()

	hasher, err := auth.NewPasswordHasher(cfg.Password.Hasher)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init password hasher")
		panic(err)
	}
	tokens := auth.NewTokenIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.SigningKey), cfg.JWT.TTL)

	globalAuthService = services.NewAuthService(globalLogger, globalUserRepository, hasher, tokens)
	globalTaskService = services.NewTaskService(globalLogger, globalTaskRepository)

	globalLogger.Info().
		Str("password_hasher", cfg.Password.Hasher).
		Msg("initialized services")
}
