package linters

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ParserKind selects the output parser for a linter
type ParserKind string

const (
	ParserESLint     ParserKind = "eslint"     // array-of-files with messages[]
	ParserPylint     ParserKind = "pylint"     // flat array of findings
	ParserShellcheck ParserKind = "shellcheck" // flat array with numeric codes
	ParserGeneric    ParserKind = "generic"    // best-effort JSON, else raw text
)

// LinterConfig is one registry entry describing how to invoke a tool
// and interpret its exit status and output.
type LinterConfig struct {
	Name             string            `yaml:"name"`
	Executable       string            `yaml:"executable"`
	BaseArgs         []string          `yaml:"base_args"`
	Env              map[string]string `yaml:"env"`
	Extensions       []string          `yaml:"extensions"`
	DefaultTimeoutMs int64             `yaml:"default_timeout_ms"`
	SupportsFix      bool              `yaml:"supports_fix"`
	FixFlag          string            `yaml:"fix_flag"`
	ConfigFlag       string            `yaml:"config_flag"`
	LogLevelEnv      string            `yaml:"log_level_env"`
	SuccessExitCodes []int             `yaml:"success_exit_codes"`
	Parser           ParserKind        `yaml:"parser"`
}

// ExitOK reports whether code falls in the linter's success band.
// An empty band means only zero counts as success.
func (c *LinterConfig) ExitOK(code int) bool {
	if len(c.SuccessExitCodes) == 0 {
		return code == 0
	}
	for _, ok := range c.SuccessExitCodes {
		if code == ok {
			return true
		}
	}
	return false
}

// zeroOne is the exit band for tools that return 1 when issues are found
var zeroOne = []int{0, 1}

// builtinRegistry is the static linter table. Tools whose executables
// are not installed stay listed; availability is probed separately.
var builtinRegistry = map[string]*LinterConfig{
	"eslint": {
		Name:             "eslint",
		Executable:       "eslint",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".vue"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		LogLevelEnv:      "ESLINT_LOG_LEVEL",
		SuccessExitCodes: zeroOne,
		Parser:           ParserESLint,
	},
	"prettier": {
		Name:             "prettier",
		Executable:       "prettier",
		BaseArgs:         []string{"--check"},
		Extensions:       []string{".js", ".jsx", ".ts", ".tsx", ".json", ".css", ".scss", ".md", ".yml", ".yaml", ".html"},
		SupportsFix:      true,
		FixFlag:          "--write",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"jshint": {
		Name:             "jshint",
		Executable:       "jshint",
		BaseArgs:         []string{"--reporter", "unix"},
		Extensions:       []string{".js"},
		ConfigFlag:       "--config",
		SuccessExitCodes: []int{0, 2},
		Parser:           ParserGeneric,
	},
	"oxlint": {
		Name:             "oxlint",
		Executable:       "oxlint",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"biome": {
		Name:             "biome",
		Executable:       "biome",
		BaseArgs:         []string{"check", "--reporter", "json"},
		Extensions:       []string{".js", ".jsx", ".ts", ".tsx", ".json", ".jsonc"},
		SupportsFix:      true,
		FixFlag:          "--write",
		ConfigFlag:       "--config-path",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"biome-lint": {
		Name:             "biome-lint",
		Executable:       "biome",
		BaseArgs:         []string{"lint", "--reporter", "json"},
		Extensions:       []string{".js", ".jsx", ".ts", ".tsx", ".json", ".jsonc"},
		SupportsFix:      true,
		FixFlag:          "--write",
		ConfigFlag:       "--config-path",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"pylint": {
		Name:             "pylint",
		Executable:       "pylint",
		BaseArgs:         []string{"--output-format", "json"},
		Extensions:       []string{".py"},
		ConfigFlag:       "--rcfile",
		SuccessExitCodes: zeroOne,
		Parser:           ParserPylint,
	},
	"flake8": {
		Name:             "flake8",
		Executable:       "flake8",
		Extensions:       []string{".py"},
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"black": {
		Name:             "black",
		Executable:       "black",
		BaseArgs:         []string{"--check", "--diff"},
		Extensions:       []string{".py", ".pyi"},
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"isort": {
		Name:             "isort",
		Executable:       "isort",
		BaseArgs:         []string{"--check-only", "--diff"},
		Extensions:       []string{".py", ".pyi"},
		ConfigFlag:       "--settings-path",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"bandit": {
		Name:             "bandit",
		Executable:       "bandit",
		BaseArgs:         []string{"-r", "-f", "json"},
		Extensions:       []string{".py"},
		ConfigFlag:       "-c",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"mypy": {
		Name:             "mypy",
		Executable:       "mypy",
		BaseArgs:         []string{"--no-error-summary"},
		Extensions:       []string{".py", ".pyi"},
		ConfigFlag:       "--config-file",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"shellcheck": {
		Name:             "shellcheck",
		Executable:       "shellcheck",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".sh", ".bash", ".ksh"},
		SuccessExitCodes: zeroOne,
		Parser:           ParserShellcheck,
	},
	"golangci-lint": {
		Name:             "golangci-lint",
		Executable:       "golangci-lint",
		BaseArgs:         []string{"run", "--out-format", "json"},
		Extensions:       []string{".go"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"gofmt": {
		Name:        "gofmt",
		Executable:  "gofmt",
		BaseArgs:    []string{"-l"},
		Extensions:  []string{".go"},
		SupportsFix: true,
		FixFlag:     "-w",
		Parser:      ParserGeneric,
	},
	"goimports": {
		Name:        "goimports",
		Executable:  "goimports",
		BaseArgs:    []string{"-l"},
		Extensions:  []string{".go"},
		SupportsFix: true,
		FixFlag:     "-w",
		Parser:      ParserGeneric,
	},
	"rubocop": {
		Name:             "rubocop",
		Executable:       "rubocop",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".rb", ".rake"},
		SupportsFix:      true,
		FixFlag:          "--autocorrect",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"hadolint": {
		Name:             "hadolint",
		Executable:       "hadolint",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".dockerfile"},
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"yamllint": {
		Name:             "yamllint",
		Executable:       "yamllint",
		BaseArgs:         []string{"--format", "parsable"},
		Extensions:       []string{".yml", ".yaml"},
		ConfigFlag:       "--config-file",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"jsonlint": {
		Name:       "jsonlint",
		Executable: "jsonlint",
		BaseArgs:   []string{"--quiet"},
		Extensions: []string{".json"},
		Parser:     ParserGeneric,
	},
	"markdownlint": {
		Name:             "markdownlint",
		Executable:       "markdownlint",
		BaseArgs:         []string{"--json"},
		Extensions:       []string{".md", ".markdown"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"stylelint": {
		Name:             "stylelint",
		Executable:       "stylelint",
		BaseArgs:         []string{"--formatter", "json"},
		Extensions:       []string{".css", ".scss", ".sass", ".less"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		SuccessExitCodes: []int{0, 2},
		Parser:           ParserGeneric,
	},
	"htmlhint": {
		Name:             "htmlhint",
		Executable:       "htmlhint",
		BaseArgs:         []string{"--format", "json"},
		Extensions:       []string{".html", ".htm"},
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"cppcheck": {
		Name:             "cppcheck",
		Executable:       "cppcheck",
		BaseArgs:         []string{"--enable=all", "--template=gcc"},
		Extensions:       []string{".c", ".h", ".cpp", ".cc", ".cxx", ".hpp"},
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"checkstyle": {
		Name:             "checkstyle",
		Executable:       "checkstyle",
		BaseArgs:         []string{"-f", "plain"},
		Extensions:       []string{".java"},
		ConfigFlag:       "-c",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"pmd": {
		Name:             "pmd",
		Executable:       "pmd",
		BaseArgs:         []string{"check", "--format", "json"},
		Extensions:       []string{".java"},
		SuccessExitCodes: []int{0, 4},
		Parser:           ParserGeneric,
	},
	"spotbugs": {
		Name:             "spotbugs",
		Executable:       "spotbugs",
		BaseArgs:         []string{"-textui"},
		Extensions:       []string{".java"},
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"ktlint": {
		Name:             "ktlint",
		Executable:       "ktlint",
		BaseArgs:         []string{"--reporter=json"},
		Extensions:       []string{".kt", ".kts"},
		SupportsFix:      true,
		FixFlag:          "--format",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"detekt": {
		Name:             "detekt",
		Executable:       "detekt",
		Extensions:       []string{".kt", ".kts"},
		ConfigFlag:       "--config",
		SuccessExitCodes: []int{0, 2},
		Parser:           ParserGeneric,
	},
	"swiftlint": {
		Name:             "swiftlint",
		Executable:       "swiftlint",
		BaseArgs:         []string{"lint", "--reporter", "json"},
		Extensions:       []string{".swift"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		ConfigFlag:       "--config",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"rustfmt": {
		Name:             "rustfmt",
		Executable:       "rustfmt",
		BaseArgs:         []string{"--check"},
		Extensions:       []string{".rs"},
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"clippy": {
		Name:             "clippy",
		Executable:       "cargo-clippy",
		Extensions:       []string{".rs"},
		SupportsFix:      true,
		FixFlag:          "--fix",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
	"phpcs": {
		Name:             "phpcs",
		Executable:       "phpcs",
		BaseArgs:         []string{"--report=json"},
		Extensions:       []string{".php", ".phtml"},
		ConfigFlag:       "--standard",
		SuccessExitCodes: []int{0, 1, 2},
		Parser:           ParserGeneric,
	},
	"phpstan": {
		Name:             "phpstan",
		Executable:       "phpstan",
		BaseArgs:         []string{"analyse", "--error-format", "json"},
		Extensions:       []string{".php"},
		ConfigFlag:       "--configuration",
		SuccessExitCodes: zeroOne,
		Parser:           ParserGeneric,
	},
}

// Registry exposes the linter table with optional file-based overrides
type Registry struct {
	configs map[string]*LinterConfig
}

// NewRegistry returns a registry backed by the builtin table
func NewRegistry() *Registry {
	configs := make(map[string]*LinterConfig, len(builtinRegistry))
	for name, cfg := range builtinRegistry {
		configs[name] = cfg
	}
	return &Registry{configs: configs}
}

// NewRegistryWithOverrides layers entries from a YAML file over the
// builtin table. Unknown names add new linters; known names replace
// builtin entries wholesale.
func NewRegistryWithOverrides(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read linter overrides: %w", err)
	}

	var overrides map[string]*LinterConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse linter overrides: %w", err)
	}

	for name, cfg := range overrides {
		if cfg == nil {
			continue
		}
		if cfg.Name == "" {
			cfg.Name = name
		}
		r.configs[name] = cfg
	}
	return r, nil
}

// Get returns the config for a linter name, or nil if unknown
func (r *Registry) Get(name string) *LinterConfig {
	return r.configs[name]
}

// Names returns all registered linter names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
