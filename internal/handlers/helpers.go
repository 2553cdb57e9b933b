package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores the request id for handlers and error envelopes
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id, or empty when unset
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WriteJSON writes a JSON response with the specified status code and data
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse maps the error to its taxonomy code and writes the
// standard error envelope
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) error {
	envelope := models.NewErrorEnvelope(err, RequestIDFromContext(r.Context()))
	return WriteJSON(w, envelope.Error.Code.HTTPStatus(), envelope)
}

// DecodeBody decodes a JSON request body into v
func DecodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &models.ContentTooLargeError{
				Message: "request body exceeds limit",
				Limit:   maxBytesErr.Limit,
			}
		}
		return &models.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}
