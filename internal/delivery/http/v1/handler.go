package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager/internal/services"
)

type Handler interface {
	HandleSignup(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	// exposeErrors adds internal error details to 500 responses.
	exposeErrors bool
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	exposeErrors bool,
) Handler {
	return &handlerImpl{
		logger:       logger,
		auth:         authService,
		tasks:        taskService,
		exposeErrors: exposeErrors,
	}
}

// RegisterRoutes mounts the API under /api. The authLimiter runs in front
// of the public auth endpoints and may be nil.
func RegisterRoutes(router gin.IRouter, h Handler, authLimiter gin.HandlerFunc) {
	api := router.Group("/api")

	authRouter := api.Group("/auth")
	if authLimiter != nil {
		authRouter.Use(authLimiter)
	}
	authRouter.POST("/signup", h.HandleSignup)
	authRouter.POST("/login", h.HandleLogin)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleMe)

	tasksRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
