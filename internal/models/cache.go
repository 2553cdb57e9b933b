package models

import "time"

// CacheStatus is the terminal status recorded with a cache entry
type CacheStatus string

const (
	CacheStatusSuccess CacheStatus = "success"
	CacheStatusError   CacheStatus = "error"
	CacheStatusTimeout CacheStatus = "timeout"
)

// CacheEntry is a durable record of a finished linter run, keyed by
// (linter, format, content_hash, options_hash). Keys are not unique over
// time: expired entries may be superseded by new writes.
type CacheEntry struct {
	ID           string      `json:"id" badgerhold:"key"`
	Linter       string      `json:"linter"`
	Format       string      `json:"format"`
	ContentHash  string      `json:"content_hash"`
	OptionsHash  string      `json:"options_hash"`
	Payload      []byte      `json:"payload"`
	Status       CacheStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

// IsValid reports whether the entry has not yet expired
func (e *CacheEntry) IsValid(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// CacheStats combines session counters with durable totals
type CacheStats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	TotalEntries int   `json:"total_entries"`
	HotEntries   int   `json:"hot_entries"`
}
