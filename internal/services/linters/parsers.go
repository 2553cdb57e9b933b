package linters

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// fixString flattens a tool-specific fix object into its JSON form
func fixString(fix interface{}) string {
	if fix == nil {
		return ""
	}
	data, err := json.Marshal(fix)
	if err != nil {
		return ""
	}
	return string(data)
}

// looksLikeJSON reports whether trimmed output starts with { or [
func looksLikeJSON(output string) bool {
	trimmed := strings.TrimSpace(output)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// parseOutput normalizes linter output into issues. JSON output goes
// through the linter's configured parser, with generic field-alias
// extraction as the fallback; non-JSON output yields no issues.
func parseOutput(cfg *LinterConfig, stdout string) (interface{}, []models.Issue) {
	if !looksLikeJSON(stdout) {
		return nil, nil
	}

	switch cfg.Parser {
	case ParserESLint:
		if parsed, issues, err := parseESLintJSON(cfg.Name, stdout); err == nil {
			return parsed, issues
		}
	case ParserPylint:
		if parsed, issues, err := parsePylintJSON(cfg.Name, stdout); err == nil {
			return parsed, issues
		}
	case ParserShellcheck:
		if parsed, issues, err := parseShellcheckJSON(cfg.Name, stdout); err == nil {
			return parsed, issues
		}
	}

	// Generic fallback: walk the decoded JSON for finding-shaped objects
	parsed, issues, err := parseGenericJSON(cfg.Name, stdout)
	if err != nil {
		return nil, nil
	}
	return parsed, issues
}

// parseGenericJSON extracts issues from arbitrary tool output by walking
// the document for objects carrying the common finding fields under their
// usual aliases: file|path|filename, line, column, rule|code,
// severity|level, message|description.
func parseGenericJSON(linter, output string) (interface{}, []models.Issue, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return nil, nil, err
	}

	var issues []models.Issue
	collectGenericIssues(linter, parsed, &issues)
	return parsed, issues, nil
}

func collectGenericIssues(linter string, v interface{}, issues *[]models.Issue) {
	switch t := v.(type) {
	case []interface{}:
		for _, el := range t {
			collectGenericIssues(linter, el, issues)
		}
	case map[string]interface{}:
		if issue, ok := genericIssue(linter, t); ok {
			*issues = append(*issues, issue)
			return
		}
		// Not a finding itself; descend into nested containers
		// ({"files": [...]}, {"issues": [...]}, ...)
		for _, val := range t {
			switch val.(type) {
			case []interface{}, map[string]interface{}:
				collectGenericIssues(linter, val, issues)
			}
		}
	}
}

// genericIssue maps one object to an issue. A message plus a location-ish
// field is the minimum shape accepted as a finding.
func genericIssue(linter string, m map[string]interface{}) (models.Issue, bool) {
	message := genericString(m, "message", "description")
	file := genericString(m, "file", "path", "filename")
	if message == "" || (file == "" && genericInt(m, "line") == 0) {
		return models.Issue{}, false
	}

	severity := models.SeverityInfo
	switch strings.ToLower(genericString(m, "severity", "level")) {
	case "error", "fatal", "high", "critical":
		severity = models.SeverityError
	case "warning", "warn", "medium":
		severity = models.SeverityWarning
	}

	return models.Issue{
		File:     file,
		Line:     genericInt(m, "line"),
		Column:   genericInt(m, "column"),
		Rule:     genericString(m, "rule", "code"),
		Severity: severity,
		Message:  message,
		Source:   linter,
	}, true
}

// genericString returns the first alias present, stringifying numeric
// codes like shellcheck-style integer rule ids
func genericString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func genericInt(m map[string]interface{}, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

// eslintFile is one element of eslint's array-of-files report
type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID   string      `json:"ruleId"`
	Severity int         `json:"severity"` // 2=error, 1=warning
	Message  string      `json:"message"`
	Line     int         `json:"line"`
	Column   int         `json:"column"`
	Fix      interface{} `json:"fix,omitempty"`
}

func parseESLintJSON(linter, output string) (interface{}, []models.Issue, error) {
	var files []eslintFile
	if err := json.Unmarshal([]byte(output), &files); err != nil {
		return nil, nil, err
	}

	var issues []models.Issue
	for _, f := range files {
		for _, m := range f.Messages {
			severity := models.SeverityWarning
			if m.Severity == 2 {
				severity = models.SeverityError
			}
			issues = append(issues, models.Issue{
				File:     f.FilePath,
				Line:     m.Line,
				Column:   m.Column,
				Rule:     m.RuleID,
				Severity: severity,
				Message:  m.Message,
				Source:   linter,
				Fix:      fixString(m.Fix),
			})
		}
	}
	return files, issues, nil
}

// pylintFinding is one element of pylint's flat findings array
type pylintFinding struct {
	Type      string `json:"type"` // convention, refactor, warning, error, fatal
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	MessageID string `json:"message-id"`
	Message   string `json:"message"`
	Symbol    string `json:"symbol"`
}

func parsePylintJSON(linter, output string) (interface{}, []models.Issue, error) {
	var findings []pylintFinding
	if err := json.Unmarshal([]byte(output), &findings); err != nil {
		return nil, nil, err
	}

	issues := make([]models.Issue, 0, len(findings))
	for _, f := range findings {
		severity := models.SeverityInfo
		switch f.Type {
		case "error", "fatal":
			severity = models.SeverityError
		case "warning":
			severity = models.SeverityWarning
		}
		rule := f.MessageID
		if f.Symbol != "" {
			rule = f.Symbol
		}
		issues = append(issues, models.Issue{
			File:     f.Path,
			Line:     f.Line,
			Column:   f.Column,
			Rule:     rule,
			Severity: severity,
			Message:  f.Message,
			Source:   linter,
		})
	}
	return findings, issues, nil
}

// shellcheckFinding is one element of shellcheck's findings array
type shellcheckFinding struct {
	File    string      `json:"file"`
	Line    int         `json:"line"`
	Column  int         `json:"column"`
	Level   string      `json:"level"` // error, warning, info, style
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Fix     interface{} `json:"fix,omitempty"`
}

func parseShellcheckJSON(linter, output string) (interface{}, []models.Issue, error) {
	var findings []shellcheckFinding
	if err := json.Unmarshal([]byte(output), &findings); err != nil {
		return nil, nil, err
	}

	issues := make([]models.Issue, 0, len(findings))
	for _, f := range findings {
		severity := models.SeverityInfo
		switch f.Level {
		case "error":
			severity = models.SeverityError
		case "warning":
			severity = models.SeverityWarning
		}
		issues = append(issues, models.Issue{
			File:     f.File,
			Line:     f.Line,
			Column:   f.Column,
			Rule:     fmt.Sprintf("SC%d", f.Code),
			Severity: severity,
			Message:  f.Message,
			Source:   linter,
			Fix:      fixString(f.Fix),
		})
	}
	return findings, issues, nil
}
