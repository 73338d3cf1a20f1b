package errorx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorHandler provides unified error handling capabilities
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError converts any error to APIError and writes the JSON response
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := ConvertToAPIError(err).Clone()
	apiErr.TraceID = ExtractTraceID(c)
	apiErr.Timestamp = time.Now().UTC().Format(time.RFC3339)

	h.logError(c, apiErr, err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"error": apiErr,
	})
}

// ConvertToAPIError converts any error to APIError. Internal causes are kept
// out of the response body and only reach the log.
func ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrResourceNotFound
	case IsForeignKeyViolation(err):
		return ErrReferenceViolation
	case IsUniqueViolation(err):
		return ErrResourceExists
	default:
		return ErrInternalServer
	}
}

// logError logs the error with request context and, for critical errors, a stack trace
func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("trace_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("category", string(apiErr.Category)),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}

	if originalErr != nil && originalErr.Error() != apiErr.Error() {
		fields = append(fields, zap.Error(originalErr))
	}

	if len(apiErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(apiErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	if apiErr.Severity == SeverityCritical {
		buf := make([]byte, 4*1024)
		n := runtime.Stack(buf, false)
		fields = append(fields, zap.String("stack_trace", string(buf[:n])))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// ErrorMiddleware writes the last error attached with c.Error when no response was written
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			h.HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware returns a gin middleware for panic recovery. The panic value is
// logged with the request and never written to the response.
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		panicErr := &APIError{
			Code:       "E5000",
			Message:    "Server panic occurred",
			Category:   CategoryInternal,
			Severity:   SeverityCritical,
			HTTPStatus: http.StatusInternalServerError,
		}

		h.HandleError(c, fmt.Errorf("panic: %v: %w", recovered, panicErr))
	})
}

// ValidationError creates a validation error for a single field
func ValidationError(field string, value any, reason string) *APIError {
	return ErrInvalidInput.WithMessage(reason).
		WithDetail("field", field).
		WithDetail("value", value).
		WithSuggestion(fmt.Sprintf("Fix the '%s' field and try again", field))
}

// NotFoundError creates a not found error for a specific resource
func NotFoundError(resourceType string, id int64) *APIError {
	return ErrResourceNotFound.WithMessage(fmt.Sprintf("%s with ID %d not found", resourceType, id)).
		WithDetail("resource_type", resourceType).
		WithDetail("identifier", strconv.FormatInt(id, 10))
}

// ConflictError creates a conflict error for a duplicated field value
func ConflictError(resourceType string, field string, value any) *APIError {
	return ErrResourceExists.WithMessage(fmt.Sprintf("%s with this %s already exists", resourceType, field)).
		WithDetail("resource_type", resourceType).
		WithDetail("field", field).
		WithDetail("value", value).
		WithSuggestion(fmt.Sprintf("Use a different %s value", field))
}

// DeleteBlockedError reports a guarded delete refused because of dependents.
// related is the dependency preview shown to the caller.
func DeleteBlockedError(resourceType string, name string, related any) *APIError {
	return ErrDeleteBlocked.WithMessage(fmt.Sprintf("'%s' cannot be deleted because of the following dependencies", name)).
		WithDetail("resource_type", resourceType).
		WithDetail("related", related)
}

// ExtractTraceID returns the request trace id, generating one when absent
func ExtractTraceID(c *gin.Context) string {
	if traceID := c.GetString("trace_id"); traceID != "" {
		return traceID
	}
	if traceID := c.GetHeader("X-Trace-Id"); traceID != "" {
		return traceID
	}

	traceID := uuid.New().String()
	c.Set("trace_id", traceID)
	return traceID
}
