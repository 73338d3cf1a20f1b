package errorx

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryConflict       ErrorCategory = "conflict"
	CategoryInternal       ErrorCategory = "internal"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// APIError represents a structured API error
type APIError struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Category    ErrorCategory  `json:"category"`
	Severity    Severity       `json:"severity"`
	HTTPStatus  int            `json:"-"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// JSON returns the error as a JSON string
func (e *APIError) JSON() string {
	out, _ := json.Marshal(e)
	return string(out)
}

// Is matches APIErrors by code so errors.Is works against catalogue entries.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// Clone returns a copy that can be decorated without touching the catalogue entry.
func (e *APIError) Clone() *APIError {
	c := *e
	c.Details = maps.Clone(e.Details)
	c.Suggestions = slices.Clone(e.Suggestions)
	return &c
}

// WithMessage replaces the message on a copy of the error
func (e *APIError) WithMessage(msg string) *APIError {
	c := e.Clone()
	c.Message = msg
	return c
}

// WithDetail adds a detail to the error
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *APIError) WithSuggestion(suggestion string) *APIError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// Common error codes and messages. Treat them as read-only; decorate copies via Clone.
var (
	// Validation Errors (E1000-E1999)
	ErrInvalidInput = &APIError{
		Code:       "E1001",
		Message:    "Invalid input provided",
		Category:   CategoryValidation,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
		Suggestions: []string{
			"Check the request format and try again",
		},
	}

	ErrMissingField = &APIError{
		Code:       "E1002",
		Message:    "Required field is missing",
		Category:   CategoryValidation,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
	}

	// Authentication Errors (E2000-E2999)
	ErrUnauthorized = &APIError{
		Code:       "E2001",
		Message:    "Authentication required",
		Category:   CategoryAuthentication,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusUnauthorized,
		Suggestions: []string{
			"Please login and try again",
		},
	}

	ErrInvalidCredentials = &APIError{
		Code:       "E2002",
		Message:    "Invalid username or password",
		Category:   CategoryAuthentication,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusUnauthorized,
	}

	// Not Found Errors (E4000-E4099)
	ErrResourceNotFound = &APIError{
		Code:       "E4001",
		Message:    "Requested resource not found",
		Category:   CategoryNotFound,
		Severity:   SeverityInfo,
		HTTPStatus: http.StatusNotFound,
		Suggestions: []string{
			"Check if the resource ID is correct",
			"The resource might have been deleted",
		},
	}

	// Conflict Errors (E4090-E4099)
	ErrResourceExists = &APIError{
		Code:       "E4091",
		Message:    "Resource already exists",
		Category:   CategoryConflict,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
	}

	ErrConcurrentModification = &APIError{
		Code:       "E4092",
		Message:    "Resource was modified by another request",
		Category:   CategoryConflict,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
		Suggestions: []string{
			"Refresh the resource and try again",
		},
	}

	ErrDeleteBlocked = &APIError{
		Code:       "E4093",
		Message:    "Resource cannot be deleted because other records depend on it",
		Category:   CategoryConflict,
		Severity:   SeverityInfo,
		HTTPStatus: http.StatusConflict,
		Suggestions: []string{
			"Review the related data and confirm a force delete to remove everything",
		},
	}

	ErrReferenceViolation = &APIError{
		Code:       "E4094",
		Message:    "Operation violates a reference between records",
		Category:   CategoryConflict,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
	}

	// Internal Server Errors (E5000-E5999)
	ErrInternalServer = &APIError{
		Code:       "E5001",
		Message:    "Internal server error occurred",
		Category:   CategoryInternal,
		Severity:   SeverityCritical,
		HTTPStatus: http.StatusInternalServerError,
		Suggestions: []string{
			"Please try again later",
		},
	}

	ErrDatabaseError = &APIError{
		Code:       "E5002",
		Message:    "Database operation failed",
		Category:   CategoryInternal,
		Severity:   SeverityError,
		HTTPStatus: http.StatusInternalServerError,
		Suggestions: []string{
			"Please try again later",
		},
	}

	ErrReportGeneration = &APIError{
		Code:       "E5004",
		Message:    "Failed to generate the inspection report",
		Category:   CategoryInternal,
		Severity:   SeverityError,
		HTTPStatus: http.StatusInternalServerError,
	}
)
