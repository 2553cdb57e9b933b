package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	Workspace   WorkspaceConfig `toml:"workspace"`
	Linters     LintersConfig   `toml:"linters"`
	Jobs        JobsConfig      `toml:"jobs"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// CacheConfig controls the result cache
type CacheConfig struct {
	TTL           time.Duration `toml:"ttl"`            // Entry lifetime (default 24h)
	HotSize       int           `toml:"hot_size"`       // Max entries in the in-memory tier
	SweepSchedule string        `toml:"sweep_schedule"` // cron spec for expired-entry sweep
}

// WorkspaceConfig controls per-request sandbox directories
type WorkspaceConfig struct {
	BaseDir       string        `toml:"base_dir"`       // Parent directory for all workspaces
	MaxFileBytes  int64         `toml:"max_file_bytes"` // Per-file size cap
	MaxTotalBytes int64         `toml:"max_total_bytes"`
	MaxFiles      int           `toml:"max_files"`
	MaxAge        time.Duration `toml:"max_age"`        // Sweep workspaces older than this
	SweepSchedule string        `toml:"sweep_schedule"` // cron spec for stale-workspace sweep
}

// LintersConfig controls the runner
type LintersConfig struct {
	OverridesFile    string `toml:"overrides_file"`     // Optional linters.yaml registry overrides
	DefaultTimeoutMs int64  `toml:"default_timeout_ms"` // Subprocess timeout when options omit one
}

// JobsConfig controls the async job manager
type JobsConfig struct {
	MaxConcurrent   int           `toml:"max_concurrent"`   // Reject submissions above this in-flight count
	JobTimeout      time.Duration `toml:"job_timeout"`      // Overall per-job orchestration bound
	RetentionDays   int           `toml:"retention_days"`   // Terminal jobs older than this are swept
	CleanupSchedule string        `toml:"cleanup_schedule"` // cron spec for old-job cleanup
}

// RateLimitConfig controls per-client request throttling
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings need to appear in lintapi.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Cache: CacheConfig{
			TTL:           24 * time.Hour,
			HotSize:       1024,
			SweepSchedule: "@every 1h",
		},
		Workspace: WorkspaceConfig{
			BaseDir:       "./workspaces",
			MaxFileBytes:  10 * 1024 * 1024,  // 10 MiB per file
			MaxTotalBytes: 500 * 1024 * 1024, // 500 MiB per workspace
			MaxFiles:      10000,
			MaxAge:        2 * time.Hour,
			SweepSchedule: "@every 30m",
		},
		Linters: LintersConfig{
			OverridesFile:    "",
			DefaultTimeoutMs: 30000,
		},
		Jobs: JobsConfig{
			MaxConcurrent:   10,
			JobTimeout:      300 * time.Second,
			RetentionDays:   7,
			CleanupSchedule: "@every 24h",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies LINTAPI_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LINTAPI_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("LINTAPI_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LINTAPI_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("LINTAPI_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if ttl := os.Getenv("LINTAPI_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Cache.TTL = d
		}
	}
	if hotSize := os.Getenv("LINTAPI_CACHE_HOT_SIZE"); hotSize != "" {
		if n, err := strconv.Atoi(hotSize); err == nil {
			config.Cache.HotSize = n
		}
	}

	if baseDir := os.Getenv("LINTAPI_WORKSPACE_BASE_DIR"); baseDir != "" {
		config.Workspace.BaseDir = baseDir
	}
	if maxFile := os.Getenv("LINTAPI_WORKSPACE_MAX_FILE_BYTES"); maxFile != "" {
		if n, err := strconv.ParseInt(maxFile, 10, 64); err == nil {
			config.Workspace.MaxFileBytes = n
		}
	}
	if maxTotal := os.Getenv("LINTAPI_WORKSPACE_MAX_TOTAL_BYTES"); maxTotal != "" {
		if n, err := strconv.ParseInt(maxTotal, 10, 64); err == nil {
			config.Workspace.MaxTotalBytes = n
		}
	}
	if maxFiles := os.Getenv("LINTAPI_WORKSPACE_MAX_FILES"); maxFiles != "" {
		if n, err := strconv.Atoi(maxFiles); err == nil {
			config.Workspace.MaxFiles = n
		}
	}

	if overrides := os.Getenv("LINTAPI_LINTERS_OVERRIDES_FILE"); overrides != "" {
		config.Linters.OverridesFile = overrides
	}
	if timeout := os.Getenv("LINTAPI_LINTERS_DEFAULT_TIMEOUT_MS"); timeout != "" {
		if n, err := strconv.ParseInt(timeout, 10, 64); err == nil {
			config.Linters.DefaultTimeoutMs = n
		}
	}

	if maxConcurrent := os.Getenv("LINTAPI_JOBS_MAX_CONCURRENT"); maxConcurrent != "" {
		if n, err := strconv.Atoi(maxConcurrent); err == nil {
			config.Jobs.MaxConcurrent = n
		}
	}
	if jobTimeout := os.Getenv("LINTAPI_JOBS_TIMEOUT"); jobTimeout != "" {
		if d, err := time.ParseDuration(jobTimeout); err == nil {
			config.Jobs.JobTimeout = d
		}
	}
	if retention := os.Getenv("LINTAPI_JOBS_RETENTION_DAYS"); retention != "" {
		if n, err := strconv.Atoi(retention); err == nil {
			config.Jobs.RetentionDays = n
		}
	}

	if enabled := os.Getenv("LINTAPI_RATE_LIMIT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.RateLimit.Enabled = b
		}
	}
	if rps := os.Getenv("LINTAPI_RATE_LIMIT_RPS"); rps != "" {
		if f, err := strconv.ParseFloat(rps, 64); err == nil {
			config.RateLimit.RequestsPerSecond = f
		}
	}

	if level := os.Getenv("LINTAPI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LINTAPI_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := trimSpace(c.Environment)
	return env == "production" || env == "prod"
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
