package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Envelope is the body of every response, successful or not.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a failed response.
type APIError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error envelope
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Message: err.Message,
		Code:    err.Code,
	})
}

// RespondWithData sends a success envelope carrying data
func RespondWithData(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{
		Success: true,
		Data:    data,
	})
}

// RespondWithMessage sends a success envelope carrying only a message
func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{
		Success: true,
		Message: message,
	})
}

// Helper functions for common responses

// OK sends a 200 response
func OK(c *gin.Context, data any) {
	RespondWithData(c, http.StatusOK, data)
}

// Created sends a 201 response
func Created(c *gin.Context, data any) {
	RespondWithData(c, http.StatusCreated, data)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "You are not authorized"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// InvalidCredentials sends a 400 response for a failed password check
func InvalidCredentials(c *gin.Context, message string) {
	if message == "" {
		message = "Incorrect password"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidCredentials, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 400 response for uniqueness violations. Clients
// distinguish it from validation failures by code.
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource already exists"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeConflict, message))
}

// InternalError sends a 500 response. Callers log the cause; it is never sent.
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Server error"))
}
