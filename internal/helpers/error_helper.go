package helpers

import (
	"errors"
	"net/http"

	"github.com/farellandr/linkup/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithAppError maps the service error taxonomy onto the HTTP
// contract. Internal failures are logged with their cause and returned as
// an opaque 500; every other class keeps its message.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logrus.WithError(err).Error("unclassified error in handler")
		RespondWithError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(appErr, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrCapacity):
		status = http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(appErr, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(appErr, apperror.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logrus.WithError(appErr.Err).Error("internal failure")
		RespondWithError(c, status, "Something went wrong.")
		return
	}

	c.JSON(status, ErrorResponse{
		Error:   HTTPStatusText(status),
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}
