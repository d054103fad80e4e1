package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the unified API response format.
// Every endpoint, success or failure, answers with this shape.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors"`
}

// AppError represents a structured application error with an HTTP status
// and a client-safe message. Internal detail stays server-side.
type AppError struct {
	HTTPStatus int      // HTTP status code (e.g. 400, 401, 404, 500)
	Message    string   // Human-readable, client-safe error message
	Details    []string // Optional field-level details (validation only)
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func NewBadRequest(msg string, details ...string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg, Details: details}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Message: msg}
}

// --- Gin response helpers ---

// OK sends a 200 response with data.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Errors:  []string{},
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Errors:  []string{},
	})
}

// Error sends an error response. If err is an *AppError, its status and
// message are used; anything else is reported as a generic 500 so internal
// detail never reaches the client.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		details := appErr.Details
		if details == nil {
			details = []string{}
		}
		c.JSON(appErr.HTTPStatus, Envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  details,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "internal server error",
		Errors:  []string{},
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string, details ...string) {
	Error(c, NewBadRequest(msg, details...))
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, NewUnauthorized(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func Conflict(c *gin.Context, msg string) {
	Error(c, NewConflict(msg))
}

func ServerError(c *gin.Context, msg string) {
	Error(c, NewServerError(msg))
}
