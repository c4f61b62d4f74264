package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/task-manager/internal/auth"
	"github.com/adanyl0v/task-manager/internal/config"
	"github.com/adanyl0v/task-manager/internal/delivery/http/v1"
	"github.com/adanyl0v/task-manager/internal/services"
	"github.com/adanyl0v/task-manager/internal/storage/memory"
)

func newTestRouter(t *testing.T, httpCfg config.HTTPConfig) *gin.Engine {
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
	cfg := &config.Config{Env: config.EnvProd, HTTP: httpCfg}
	return NewRouter(cfg, logger, handler)
}

func TestNewRouter_Root(t *testing.T) {
	router := newTestRouter(t, config.HTTPConfig{CORSAllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task Manager API is running", body["message"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_CORS(t *testing.T) {
	router := newTestRouter(t, config.HTTPConfig{CORSAllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewRouter_AuthRateLimit(t *testing.T) {
	router := newTestRouter(t, config.HTTPConfig{
		CORSAllowedOrigins: []string{"*"},
		AuthRateLimit:      0.001,
		AuthRateBurst:      1,
	})

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, login().Code)
	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many requests")

	// Task routes are not limited.
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoggerOutput(t *testing.T) {
	level, w, err := loggerOutput(config.EnvLocal)
	require.NoError(t, err)
	assert.Equal(t, zerolog.TraceLevel, level)
	assert.IsType(t, zerolog.ConsoleWriter{}, w)

	level, _, err = loggerOutput(config.EnvDev)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, _, err = loggerOutput(config.EnvProd)
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	_, _, err = loggerOutput("staging")
	assert.Error(t, err)
}

func TestPostgresURL(t *testing.T) {
	url := postgresURL(config.PostgresConfig{
		Host:     "db",
		Port:     5432,
		Username: "app",
		Password: "pw",
		Database: "tasks",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://app:pw@db:5432/tasks?sslmode=disable", url)
}

type stubReader struct {
	cfg *config.Config
	err error
}

func (r stubReader) Read() (*config.Config, error) { return r.cfg, r.err }

func TestLoadConfig(t *testing.T) {
	base := config.Config{
		Env:      config.EnvDev,
		HTTP:     config.HTTPConfig{Host: "0.0.0.0", Port: "5000", CORSAllowedOrigins: []string{"*"}},
		Storage:  config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT:      config.JWTConfig{SigningKey: "top-secret", TTL: time.Hour},
		Password: config.PasswordConfig{Hasher: "bcrypt"},
	}

	var buf bytes.Buffer
	cfg, err := loadConfig(stubReader{cfg: &base}, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Same(t, &base, cfg)
	out := buf.String()
	assert.Contains(t, out, `"http_addr":"0.0.0.0:5000"`)
	assert.Contains(t, out, `"expose_errors":true`)
	assert.NotContains(t, out, "top-secret")
	assert.NotContains(t, out, `"level":"warn"`)

	prod := base
	prod.Env = config.EnvProd
	buf.Reset()
	_, err = loadConfig(stubReader{cfg: &prod}, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "memory storage in prod")
	assert.Contains(t, buf.String(), "CORS allows any origin in prod")

	readErr := errors.New("JWT_SIGNING_KEY is required")
	buf.Reset()
	_, err = loadConfig(stubReader{err: readErr}, zerolog.New(&buf))
	assert.ErrorIs(t, err, readErr)
	assert.Contains(t, buf.String(), "failed to read env")
}
