package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Default option values applied during normalization
const (
	DefaultLogLevel  = "INFO"
	DefaultTimeoutMs = 30000
	MinTimeoutMs     = 1000
	MaxTimeoutMs     = 600000
)

// LintOptions are the caller-supplied tool options. All fields are optional;
// normalization fills in defaults before hashing and execution.
type LintOptions struct {
	ValidateAll     bool                   `json:"validate_all,omitempty"`
	ExcludePatterns []string               `json:"exclude_patterns,omitempty"`
	IncludePatterns []string               `json:"include_patterns,omitempty"`
	LogLevel        string                 `json:"log_level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Timeout         int64                  `json:"timeout,omitempty" validate:"omitempty,min=1000,max=600000"`
	Fix             bool                   `json:"fix,omitempty"`
	ConfigFile      string                 `json:"config_file,omitempty"`
	Rules           map[string]interface{} `json:"rules,omitempty"`
}

// NormalizedOptions is the fixed-field canonical form used for fingerprinting
// and execution. Field order is fixed, arrays are sorted, and the rules map
// serializes with sorted keys, so the JSON form is deterministic.
type NormalizedOptions struct {
	ValidateAll     bool                   `json:"validate_all"`
	ExcludePatterns []string               `json:"exclude_patterns"`
	IncludePatterns []string               `json:"include_patterns"`
	LogLevel        string                 `json:"log_level"`
	Timeout         int64                  `json:"timeout"`
	Fix             bool                   `json:"fix"`
	ConfigFile      string                 `json:"config_file"`
	Rules           map[string]interface{} `json:"rules"`
}

// Normalize applies defaults and canonical ordering to the options.
// A nil receiver yields the all-defaults record. Timeout zero means
// unset: the runner resolves it against the per-linter registry default
// and then the service-wide default.
func (o *LintOptions) Normalize() *NormalizedOptions {
	n := &NormalizedOptions{
		ExcludePatterns: []string{},
		IncludePatterns: []string{},
		LogLevel:        DefaultLogLevel,
		ConfigFile:      "",
		Rules:           map[string]interface{}{},
	}
	if o == nil {
		return n
	}

	n.ValidateAll = o.ValidateAll
	n.Fix = o.Fix
	n.ConfigFile = o.ConfigFile

	if o.LogLevel != "" {
		n.LogLevel = o.LogLevel
	}
	if o.Timeout > 0 {
		n.Timeout = o.Timeout
	}
	if len(o.ExcludePatterns) > 0 {
		n.ExcludePatterns = append(n.ExcludePatterns, o.ExcludePatterns...)
		sort.Strings(n.ExcludePatterns)
	}
	if len(o.IncludePatterns) > 0 {
		n.IncludePatterns = append(n.IncludePatterns, o.IncludePatterns...)
		sort.Strings(n.IncludePatterns)
	}
	if len(o.Rules) > 0 {
		for k, v := range o.Rules {
			n.Rules[k] = v
		}
	}

	return n
}

// CanonicalJSON serializes the normalized options deterministically.
// encoding/json writes struct fields in declaration order and map keys
// sorted, which keeps the form stable for hashing.
func (n *NormalizedOptions) CanonicalJSON() ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize options: %w", err)
	}
	return data, nil
}
