package models

// OutputFormat selects the response rendering for a lint run
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatText  OutputFormat = "text"
	FormatSARIF OutputFormat = "sarif"
)

// ValidFormat reports whether the format identifier is recognized
func ValidFormat(format string) bool {
	switch OutputFormat(format) {
	case FormatJSON, FormatText, FormatSARIF:
		return true
	default:
		return false
	}
}

// LinterResult is the outcome of one subprocess run
type LinterResult struct {
	Linter          string      `json:"linter"`
	Success         bool        `json:"success"`
	ExitCode        int         `json:"exit_code"`
	Stdout          string      `json:"stdout"`
	Stderr          string      `json:"stderr"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`
	ParsedOutput    interface{} `json:"parsed_output,omitempty"`
	FileCount       int         `json:"file_count"`
	Issues          []Issue     `json:"issues"`
}

// LintResponseMetadata carries per-request execution facts
type LintResponseMetadata struct {
	CacheHit        bool   `json:"cache_hit"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	FileCount       int    `json:"file_count"`
	ContentHash     string `json:"content_hash,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
}

// LintResponse is the JSON-format success body for sync lint requests.
// Result carries the full run outcome for text and SARIF rendering; it
// is not part of the JSON body.
type LintResponse struct {
	Success      bool                 `json:"success"`
	Linter       string               `json:"linter"`
	Format       OutputFormat         `json:"format"`
	ExitCode     int                  `json:"exit_code"`
	Issues       []Issue              `json:"issues"`
	ParsedOutput interface{}          `json:"parsed_output,omitempty"`
	Metadata     LintResponseMetadata `json:"metadata"`
	Result       *LinterResult        `json:"-"`
}
