// Package testutil starts a complete API server backed by in-memory
// storage for client tests.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/task-manager/internal/app"
	"github.com/adanyl0v/task-manager/internal/auth"
	"github.com/adanyl0v/task-manager/internal/config"
	"github.com/adanyl0v/task-manager/internal/delivery/http/v1"
	"github.com/adanyl0v/task-manager/internal/services"
	"github.com/adanyl0v/task-manager/internal/storage/memory"
)

// NewServer returns a running server that is closed with the test.
func NewServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	store := memory.New()
	handler := v1.New(
		logger,
		services.NewAuthService(
			logger,
			store.Users(),
			auth.NewBcryptHasher(bcrypt.MinCost),
			auth.NewTokenIssuer("test", []byte("test-key"), time.Hour),
		),
		services.NewTaskService(logger, store.Tasks()),
		false,
	)
	cfg := &config.Config{
		Env:  config.EnvProd,
		HTTP: config.HTTPConfig{CORSAllowedOrigins: []string{"*"}},
	}

	server := httptest.NewServer(app.NewRouter(cfg, logger, handler))
	t.Cleanup(server.Close)
	return server
}
