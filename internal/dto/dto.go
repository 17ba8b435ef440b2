// Package dto holds the request bodies the API binds and the envelopes it
// writes. Every failure uses ErrorResponse.
package dto

import (
	"taskify/server/internal/models"

	"github.com/gofrs/uuid"
)

const APIVersion = "1"

// Machine-readable error codes.
const (
	CodeValidationFailed   = "validation_failed"
	CodeUserExists         = "user_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingToken       = "missing_token"
	CodeInvalidTokenFormat = "invalid_token_format"
	CodeInvalidToken       = "invalid_token"
	CodeExpiredToken       = "expired_token"
	CodeTaskNotFound       = "task_not_found"
	CodeRateLimited        = "rate_limited"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodePayloadTooLarge    = "payload_too_large"
	CodeInternal           = "internal_error"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func NewError(code, message string, fields ...FieldError) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Errors: fields}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type SignupResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresIn int64     `json:"expiresIn"`
	Username  string    `json:"username"`
	UserID    uuid.UUID `json:"userId"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// UpdateTaskRequest uses pointers so omitted fields stay untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Completed   *bool   `json:"completed"`
}

type TaskListResponse struct {
	Message string        `json:"message"`
	Tasks   []models.Task `json:"tasks"`
	Count   int           `json:"count"`
}

type TaskResponse struct {
	Message string       `json:"message"`
	Task    *models.Task `json:"task"`
}

type DeletedTaskSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type DeleteTaskResponse struct {
	Message     string             `json:"message"`
	DeletedTask DeletedTaskSummary `json:"deletedTask"`
}
