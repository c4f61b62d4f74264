package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/task-manager/internal/config"
	"github.com/adanyl0v/task-manager/internal/delivery/http/v1"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	handler := v1.New(globalLogger, globalAuthService, globalTaskService, cfg.ExposeErrors())
	router := NewRouter(cfg, globalLogger, handler)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) sends SIGTERM, kill -2 sends SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

// NewRouter builds the engine with the global middleware chain and the v1
// routes mounted.
func NewRouter(cfg *config.Config, logger zerolog.Logger, handler v1.Handler) *gin.Engine {
	router := gin.New()
	router.Use(v1.RequestLogger(logger))
	router.Use(v1.Recovery(logger, cfg.ExposeErrors()))
	router.Use(cors.New(corsConfig(cfg.HTTP.CORSAllowedOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Task Manager API is running",
		})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "route not found",
		})
	})

	var authLimiter gin.HandlerFunc
	if cfg.HTTP.AuthRateLimit > 0 {
		authLimiter = v1.RateLimiter(rate.Limit(cfg.HTTP.AuthRateLimit), cfg.HTTP.AuthRateBurst)
	}
	v1.RegisterRoutes(router, handler, authLimiter)
	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AddAllowHeaders("Authorization")
	return corsCfg
}
