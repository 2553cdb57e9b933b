package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewWorkspaceID generates a unique workspace ID with the "ws_" prefix.
// Cleanup sweeps only touch directories carrying this prefix.
func NewWorkspaceID() string {
	return "ws_" + uuid.New().String()
}

// NewCacheEntryID generates a unique cache entry ID
func NewCacheEntryID() string {
	return "cache_" + uuid.New().String()
}

// NewMetricID generates a unique metric row ID
func NewMetricID() string {
	return "metric_" + uuid.New().String()
}

// NewRequestID generates a request correlation ID
func NewRequestID() string {
	return uuid.New().String()
}
