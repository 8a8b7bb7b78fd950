package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	. "userdir/internal/adapter/http/validation"
	"userdir/internal/core/domain"
	"userdir/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendConflictError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusConflict, "CONFLICT", errors)
}

// SendDomainError maps the core's sentinel errors to a status code.
// Anything unknown is a 500.
func SendDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		SendNotFoundError(c, "session", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		SendNotFoundError(c, "user", err.Error())
	case errors.Is(err, domain.ErrNoDraft):
		SendConflictError(c, "draft", err.Error())
	case errors.Is(err, domain.ErrInvalidStatusFilter):
		SendBadRequestError(c, "status", err.Error())
	default:
		SendInternalError(c, "Unexpected error")
	}
}
