package linters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

const eslintOutput = `[
  {
    "filePath": "/ws/app.js",
    "messages": [
      {"ruleId": "no-unused-vars", "severity": 2, "message": "'x' is assigned a value but never used.", "line": 1, "column": 5},
      {"ruleId": "semi", "severity": 1, "message": "Missing semicolon.", "line": 2, "column": 12}
    ]
  },
  {
    "filePath": "/ws/clean.js",
    "messages": []
  }
]`

func TestParseESLintJSON(t *testing.T) {
	cfg := builtinRegistry["eslint"]

	parsed, issues := parseOutput(cfg, eslintOutput)
	require.NotNil(t, parsed)
	require.Len(t, issues, 2)

	assert.Equal(t, "/ws/app.js", issues[0].File)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, 5, issues[0].Column)
	assert.Equal(t, "no-unused-vars", issues[0].Rule)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
	assert.Equal(t, "eslint", issues[0].Source)

	assert.Equal(t, models.SeverityWarning, issues[1].Severity)
	assert.Equal(t, "semi", issues[1].Rule)
}

const pylintOutput = `[
  {"type": "error", "path": "app.py", "line": 3, "column": 0, "message-id": "E0602", "symbol": "undefined-variable", "message": "Undefined variable 'y'"},
  {"type": "convention", "path": "app.py", "line": 1, "column": 0, "message-id": "C0114", "symbol": "missing-module-docstring", "message": "Missing module docstring"}
]`

func TestParsePylintJSON(t *testing.T) {
	cfg := builtinRegistry["pylint"]

	parsed, issues := parseOutput(cfg, pylintOutput)
	require.NotNil(t, parsed)
	require.Len(t, issues, 2)

	assert.Equal(t, models.SeverityError, issues[0].Severity)
	assert.Equal(t, "undefined-variable", issues[0].Rule, "symbol wins over message-id")
	assert.Equal(t, models.SeverityInfo, issues[1].Severity)
	assert.Equal(t, "pylint", issues[1].Source)
}

const shellcheckOutput = `[
  {"file": "run.sh", "line": 2, "column": 8, "level": "warning", "code": 2086, "message": "Double quote to prevent globbing and word splitting."},
  {"file": "run.sh", "line": 5, "column": 1, "level": "error", "code": 2148, "message": "Tips depend on target shell."}
]`

func TestParseShellcheckJSON(t *testing.T) {
	cfg := builtinRegistry["shellcheck"]

	parsed, issues := parseOutput(cfg, shellcheckOutput)
	require.NotNil(t, parsed)
	require.Len(t, issues, 2)

	assert.Equal(t, "SC2086", issues[0].Rule)
	assert.Equal(t, models.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "SC2148", issues[1].Rule)
	assert.Equal(t, models.SeverityError, issues[1].Severity)
}

func TestParseNonJSONOutputReturnsRaw(t *testing.T) {
	cfg := builtinRegistry["flake8"]

	parsed, issues := parseOutput(cfg, "app.py:1:1: F401 'os' imported but unused")
	assert.Nil(t, parsed)
	assert.Nil(t, issues)
}

func TestParseGenericJSONNoFindings(t *testing.T) {
	cfg := builtinRegistry["bandit"]

	parsed, issues := parseOutput(cfg, `{"results": [], "metrics": {}}`)
	require.NotNil(t, parsed)
	assert.Empty(t, issues)
}

const rubocopStyleOutput = `[
  {"file": "a.rb", "line": 3, "column": 7, "rule": "Lint/UselessAssignment", "severity": "error", "message": "Useless assignment to variable"},
  {"path": "b.rb", "line": 9, "code": 102, "level": "warning", "description": "Line is too long"}
]`

func TestParseGenericJSONExtractsAliasedFields(t *testing.T) {
	cfg := builtinRegistry["rubocop"]

	parsed, issues := parseOutput(cfg, rubocopStyleOutput)
	require.NotNil(t, parsed)
	require.Len(t, issues, 2)

	assert.Equal(t, "a.rb", issues[0].File)
	assert.Equal(t, 3, issues[0].Line)
	assert.Equal(t, 7, issues[0].Column)
	assert.Equal(t, "Lint/UselessAssignment", issues[0].Rule)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
	assert.Equal(t, "rubocop", issues[0].Source)

	assert.Equal(t, "b.rb", issues[1].File, "path alias")
	assert.Equal(t, "102", issues[1].Rule, "numeric code stringified")
	assert.Equal(t, models.SeverityWarning, issues[1].Severity, "level alias")
	assert.Equal(t, "Line is too long", issues[1].Message, "description alias")
}

func TestParseGenericJSONWalksNestedContainers(t *testing.T) {
	cfg := builtinRegistry["hadolint"]

	output := `{"issues": [{"file": "Dockerfile", "line": 1, "rule": "DL3006", "severity": "warning", "message": "Always tag the version of an image"}]}`
	parsed, issues := parseOutput(cfg, output)
	require.NotNil(t, parsed)
	require.Len(t, issues, 1)
	assert.Equal(t, "Dockerfile", issues[0].File)
	assert.Equal(t, "DL3006", issues[0].Rule)
}

func TestParseMalformedJSONFallsBackToRaw(t *testing.T) {
	cfg := builtinRegistry["eslint"]

	parsed, issues := parseOutput(cfg, "[{broken json")
	assert.Nil(t, parsed)
	assert.Nil(t, issues)
}
