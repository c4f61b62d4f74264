package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager/internal/services"
)

const serverErrorMessage = "Something went wrong!"

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errTooManyRequests    = errors.New("too many requests")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"-"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{
		"success": false,
		"message": err.Message,
	}
	if err.Detail != "" {
		body["error"] = err.Detail
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newServerError(err error, expose bool) apiError {
	apiErr := newAPIError(http.StatusInternalServerError, serverErrorMessage)
	if expose && err != nil {
		apiErr.Detail = err.Error()
	}
	return apiErr
}

var statusByKind = map[services.Kind]int{
	services.KindValidation: http.StatusBadRequest,
	services.KindAuth:       http.StatusUnauthorized,
	services.KindNotFound:   http.StatusNotFound,
	services.KindConflict:   http.StatusConflict,
}

// abortWithServiceError translates a service failure into its status code.
// Unclassified errors become a generic 500.
func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if code, ok := statusByKind[svcErr.Kind]; ok {
			abort(c, newAPIError(code, svcErr.Message))
			return
		}
	}
	abort(c, newServerError(err, h.exposeErrors))
}
