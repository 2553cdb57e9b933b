package models

import "time"

// APIMetric is a durable, best-effort record of one handled request.
// Recording failures never break the request.
type APIMetric struct {
	ID         string    `json:"id" badgerhold:"key"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	DurationMs int64     `json:"duration_ms"`
	Linter     string    `json:"linter,omitempty"`
	CacheHit   bool      `json:"cache_hit"`
	CreatedAt  time.Time `json:"created_at"`
}
