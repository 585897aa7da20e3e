package utils

import (
	"errors"
	"fmt"
	"net/http"

	"taskhive/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidState = "INVALID_STATE"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the typed error every service returns to the HTTP layer.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details to the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), HTTPStatus: http.StatusNotFound}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, HTTPStatus: http.StatusConflict}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

func Upstream(message string, err error) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// AsAppError unwraps err into an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}

// IsCode reports whether err carries the given AppError code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondError writes err as a JSON error body and aborts the request.
// The underlying cause is only exposed outside production.
func RespondError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	logger := GetLogger()

	fields := []zap.Field{
		zap.String("code", appErr.Code),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Debug(appErr.Message, fields...)
	}

	resp := ErrorResponse{Message: appErr.Message, Code: appErr.Code, Details: appErr.Details}
	if appErr.Err != nil && !config.IsProduction() {
		resp.Error = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, resp)
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Code:    CodeInternal,
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	resp := ErrorResponse{Message: message}
	if details != "" {
		resp.Details = map[string]any{"reason": details}
	}
	c.AbortWithStatusJSON(status, resp)
}
