package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/services"
)

const invalidDueDateMessage = "dueDate must be a valid date (YYYY-MM-DD)"

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     string          `json:"dueDate"`
	DueTime     string          `json:"dueTime"`
}

// updateTaskRequest keeps absent fields nil so that only the supplied ones
// are applied. Unknown fields such as id or userId are ignored.
type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority"`
	DueDate     *string          `json:"dueDate"`
	DueTime     *string          `json:"dueTime"`
	Completed   *bool            `json:"completed"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	user, ok := h.mustCurrentUser(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c, user.ID, c.Query("status"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to list tasks")
		h.abortWithServiceError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(tasks),
		"data":    tasks,
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	user, ok := h.mustCurrentUser(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to get task")
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	user, ok := h.mustCurrentUser(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	var dueDate models.Date
	if req.DueDate != "" {
		dueDate, err = models.ParseDate(req.DueDate)
		if err != nil {
			abort(c, newBadRequestError(invalidDueDateMessage))
			return
		}
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to create task")
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
	})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	user, ok := h.mustCurrentUser(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.UpdateTaskParams{
		ID:          c.Param("id"),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueTime:     req.DueTime,
		Completed:   req.Completed,
	}
	if req.DueDate != nil {
		var dueDate models.Date
		if *req.DueDate != "" {
			dueDate, err = models.ParseDate(*req.DueDate)
			if err != nil {
				abort(c, newBadRequestError(invalidDueDateMessage))
				return
			}
		}
		params.DueDate = &dueDate
	}

	task, err := h.tasks.UpdateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	user, ok := h.mustCurrentUser(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to delete task")
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
		"data":    gin.H{},
	})
}

func (h *handlerImpl) mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(services.ErrMissingToken.Error()))
	}
	return user, ok
}
