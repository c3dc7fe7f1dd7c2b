package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypePermission    ErrorType = "permission"
	ErrorTypeUnsatisfiable ErrorType = "unsatisfiable"
	ErrorTypeCatalog       ErrorType = "catalog"
	ErrorTypeDatabase      ErrorType = "database"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches another AppError by type and code. An empty target code matches any code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

func caller(skip int) string {
	_, file, line, _ := runtime.Caller(skip)
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in the chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether any AppError in the chain has the given type.
func IsType(err error, errorType ErrorType) bool {
	return errors.Is(err, &AppError{Type: errorType})
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Request error", err.LogFields()...)
	case ErrorTypePermission:
		h.logger.WarnContext(ctx, "Permission error", err.LogFields()...)
	case ErrorTypeUnsatisfiable:
		h.logger.InfoContext(ctx, "Unsatisfiable slot", err.LogFields()...)
	case ErrorTypeCatalog, ErrorTypeDatabase, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors, usable as errors.Is targets
var (
	ErrMemberNotFound = New(ErrorTypeNotFound, "MEMBER_NOT_FOUND", "Member not found")
	ErrGoalNotFound   = New(ErrorTypeNotFound, "GOAL_NOT_FOUND", "Active goal not found")
	ErrMealNotFound   = New(ErrorTypeNotFound, "MEAL_NOT_FOUND", "Planned meal not found")
	ErrPlanNotFound   = New(ErrorTypeNotFound, "PLAN_NOT_FOUND", "Meal plan not found")
	ErrUnauthorized   = New(ErrorTypePermission, "UNAUTHORIZED", "Unauthorized access")
	ErrUnsatisfiable  = New(ErrorTypeUnsatisfiable, "UNSATISFIABLE_SLOT", "No template survives filtering")
	ErrTimeout        = New(ErrorTypeTimeout, "TIMEOUT", "Operation timed out")
)

// Convenience functions for common errors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewNotFoundError(code, entity string, id interface{}) *AppError {
	return New(ErrorTypeNotFound, code, fmt.Sprintf("%s %v not found", entity, id)).
		WithContext("entity", entity).
		WithContext("id", id)
}

func NewAuthorizationError(message string) *AppError {
	return New(ErrorTypePermission, "UNAUTHORIZED", message)
}

func NewUnsatisfiableSlotError(slot string, reason string) *AppError {
	return New(ErrorTypeUnsatisfiable, "UNSATISFIABLE_SLOT", fmt.Sprintf("no template for %s: %s", slot, reason)).
		WithContext("slot", slot)
}

func NewCatalogUnavailableError(err error, source string) *AppError {
	return Wrap(err, ErrorTypeCatalog, "CATALOG_UNAVAILABLE", fmt.Sprintf("%s lookup failed", source)).
		WithContext("catalog", source)
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "Database operation failed")
}

func NewTimeoutError(err error, operation string) *AppError {
	return Wrap(err, ErrorTypeTimeout, "TIMEOUT", fmt.Sprintf("%s operation timed out", operation)).
		WithContext("operation", operation)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal server error")
}
