package models

// LintRequest is the JSON body for sync and async lint submissions.
// Content and Archive are mutually exclusive; Archive carries a base64
// encoded gzip tar.
type LintRequest struct {
	Content  *string      `json:"content,omitempty"`
	Archive  *string      `json:"archive,omitempty"`
	Filename string       `json:"filename,omitempty" validate:"omitempty,max=255"`
	Options  *LintOptions `json:"options,omitempty"`
}

// Validate checks the structural invariants encoding cannot express
func (r *LintRequest) Validate() error {
	if r.Content == nil && r.Archive == nil {
		return &ValidationError{Message: "request requires content or archive"}
	}
	if r.Content != nil && r.Archive != nil {
		return &ValidationError{Message: "content and archive are mutually exclusive"}
	}
	return nil
}
