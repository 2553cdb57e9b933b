package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an error category in API responses
type ErrorCode string

const (
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidParameters      ErrorCode = "INVALID_PARAMETERS"
	ErrCodeInvalidContentEncoding ErrorCode = "INVALID_CONTENT_ENCODING"
	ErrCodeUnsupportedFormat      ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeContentTooLarge        ErrorCode = "CONTENT_TOO_LARGE"
	ErrCodeRateLimitExceeded      ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeTimeout                ErrorCode = "TIMEOUT_ERROR"
	ErrCodeLinterNotFound         ErrorCode = "LINTER_NOT_FOUND"
	ErrCodeLinterExecutionFailed  ErrorCode = "LINTER_EXECUTION_FAILED"
	ErrCodeWorkspace              ErrorCode = "WORKSPACE_ERROR"
	ErrCodeCache                  ErrorCode = "CACHE_ERROR"
	ErrCodeDatabase               ErrorCode = "DATABASE_ERROR"
	ErrCodeJobNotFound            ErrorCode = "JOB_NOT_FOUND"
	ErrCodeJobAlreadyCancelled    ErrorCode = "JOB_ALREADY_CANCELLED"
	ErrCodeInternal               ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeServiceUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"
)

// HTTPStatus maps an error code to its HTTP status class
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeValidation, ErrCodeInvalidParameters, ErrCodeInvalidContentEncoding, ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case ErrCodeContentTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeLinterNotFound, ErrCodeLinterExecutionFailed, ErrCodeWorkspace:
		return http.StatusUnprocessableEntity
	case ErrCodeJobNotFound:
		return http.StatusNotFound
	case ErrCodeJobAlreadyCancelled:
		return http.StatusConflict
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the error object inside the response envelope:
// {success:false, error:{code, message, details?, timestamp, request_id?}}
type APIError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorEnvelope is the wire shape for all error responses
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorEnvelope builds the response envelope for an error
func NewErrorEnvelope(err error, requestID string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Success: false,
		Error: &APIError{
			Code:      CodeForError(err),
			Message:   err.Error(),
			Details:   detailsForError(err),
			Timestamp: time.Now().UTC(),
			RequestID: requestID,
		},
	}
}

// ValidationError rejects malformed input shape, size, or range
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParametersError rejects an unknown linter or format
type ParametersError struct {
	Message string
}

func (e *ParametersError) Error() string { return e.Message }

// EncodingError rejects a base64 or DEFLATE payload that failed to decode
type EncodingError struct {
	Message string
	Cause   error
}

func (e *EncodingError) Error() string { return e.Message }
func (e *EncodingError) Unwrap() error { return e.Cause }

// UnsupportedFormatError rejects a format a linter cannot produce
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %s", e.Format)
}

// WorkspaceError covers path, archive, and validation violations
type WorkspaceError struct {
	Message string
	Cause   error
}

func (e *WorkspaceError) Error() string { return e.Message }
func (e *WorkspaceError) Unwrap() error { return e.Cause }

// ContentTooLargeError rejects input exceeding file or workspace limits
type ContentTooLargeError struct {
	Message string
	Size    int64
	Limit   int64
}

func (e *ContentTooLargeError) Error() string { return e.Message }

// LinterErrorKind distinguishes runner failure modes
type LinterErrorKind string

const (
	LinterNotFound        LinterErrorKind = "NOT_FOUND"
	LinterExecutionFailed LinterErrorKind = "EXECUTION_FAILED"
)

// LinterError is a runner failure: missing executable or failed spawn/parse
type LinterError struct {
	Kind   LinterErrorKind
	Linter string
	Detail string
}

func (e *LinterError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("linter %s: %s", e.Linter, e.Detail)
	}
	return fmt.Sprintf("linter %s: %s", e.Linter, e.Kind)
}

// RateLimitError rejects a request that exceeded the client throttle
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return "rate limit exceeded" }

// TimeoutError is a subprocess or job deadline expiry
type TimeoutError struct {
	Linter    string
	TimeoutMs int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("linter %s timed out after %dms", e.Linter, e.TimeoutMs)
}

// CancelledError is returned when a cancellation signal aborts a run
type CancelledError struct {
	JobID string
}

func (e *CancelledError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("job %s cancelled", e.JobID)
	}
	return "operation cancelled"
}

// CacheError is a persistence failure on cache write
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string { return e.Message }
func (e *CacheError) Unwrap() error { return e.Cause }

// DatabaseError means the durable store is unavailable
type DatabaseError struct {
	Message string
	Cause   error
}

func (e *DatabaseError) Error() string { return e.Message }
func (e *DatabaseError) Unwrap() error { return e.Cause }

// JobNotFoundError is returned for unknown job ids
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// JobAlreadyCancelledError is returned when cancelling a terminal job
type JobAlreadyCancelledError struct {
	JobID  string
	Status JobStatus
}

func (e *JobAlreadyCancelledError) Error() string {
	return fmt.Sprintf("job %s is already in terminal state %s", e.JobID, e.Status)
}

// ServiceUnavailableError is returned while shutdown is in progress or the
// job queue is at capacity
type ServiceUnavailableError struct {
	Message string
}

func (e *ServiceUnavailableError) Error() string { return e.Message }

// CodeForError resolves the taxonomy code for any error value
func CodeForError(err error) ErrorCode {
	var (
		validationErr  *ValidationError
		paramsErr      *ParametersError
		encodingErr    *EncodingError
		formatErr      *UnsupportedFormatError
		tooLargeErr    *ContentTooLargeError
		workspaceErr   *WorkspaceError
		linterErr      *LinterError
		rateLimitErr   *RateLimitError
		timeoutErr     *TimeoutError
		cacheErr       *CacheError
		dbErr          *DatabaseError
		jobNotFound    *JobNotFoundError
		jobCancelled   *JobAlreadyCancelledError
		unavailableErr *ServiceUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrCodeValidation
	case errors.As(err, &paramsErr):
		return ErrCodeInvalidParameters
	case errors.As(err, &encodingErr):
		return ErrCodeInvalidContentEncoding
	case errors.As(err, &formatErr):
		return ErrCodeUnsupportedFormat
	case errors.As(err, &tooLargeErr):
		return ErrCodeContentTooLarge
	case errors.As(err, &rateLimitErr):
		return ErrCodeRateLimitExceeded
	case errors.As(err, &timeoutErr):
		return ErrCodeTimeout
	case errors.As(err, &workspaceErr):
		return ErrCodeWorkspace
	case errors.As(err, &cacheErr):
		return ErrCodeCache
	case errors.As(err, &dbErr):
		return ErrCodeDatabase
	case errors.As(err, &jobNotFound):
		return ErrCodeJobNotFound
	case errors.As(err, &jobCancelled):
		return ErrCodeJobAlreadyCancelled
	case errors.As(err, &unavailableErr):
		return ErrCodeServiceUnavailable
	case errors.As(err, &linterErr):
		if linterErr.Kind == LinterNotFound {
			return ErrCodeLinterNotFound
		}
		return ErrCodeLinterExecutionFailed
	default:
		return ErrCodeInternal
	}
}

func detailsForError(err error) map[string]interface{} {
	var (
		tooLargeErr  *ContentTooLargeError
		timeoutErr   *TimeoutError
		linterErr    *LinterError
		rateLimitErr *RateLimitError
	)

	switch {
	case errors.As(err, &rateLimitErr):
		if rateLimitErr.RetryAfter > 0 {
			return map[string]interface{}{
				"retry_after_seconds": int64(rateLimitErr.RetryAfter.Seconds()),
			}
		}
		return nil
	case errors.As(err, &tooLargeErr):
		return map[string]interface{}{
			"size":  tooLargeErr.Size,
			"limit": tooLargeErr.Limit,
		}
	case errors.As(err, &timeoutErr):
		return map[string]interface{}{
			"timeout_ms": timeoutErr.TimeoutMs,
		}
	case errors.As(err, &linterErr):
		return map[string]interface{}{
			"linter": linterErr.Linter,
			"kind":   string(linterErr.Kind),
		}
	default:
		return nil
	}
}
