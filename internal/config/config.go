package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBackend          = "auto"
	defaultSystemdScope     = "system"
	defaultCacheTTL         = 5 * time.Second
	defaultOperationTimeout = 60 * time.Second
	defaultRefreshInterval  = 10 * time.Second
	defaultSearchDebounce   = 300 * time.Millisecond
	defaultVirtualThreshold = 100
	defaultOverscan         = 5
	defaultBulkConcurrency  = 4
	defaultMemoryLatency    = 400 * time.Millisecond
	defaultHTTPListen       = "127.0.0.1:7788"
	defaultLogLevel         = "info"

	envBackend          = "SVCBOARD_BACKEND"
	envSystemdScope     = "SVCBOARD_SYSTEMD_SCOPE"
	envCacheTTL         = "SVCBOARD_CACHE_TTL"
	envOperationTimeout = "SVCBOARD_OPERATION_TIMEOUT"
	envRefreshInterval  = "SVCBOARD_REFRESH_INTERVAL"
	envSearchDebounce   = "SVCBOARD_SEARCH_DEBOUNCE"
	envMemorySeed       = "SVCBOARD_MEMORY_SEED"
	envHTTPListen       = "SVCBOARD_HTTP_LISTEN"
	envLogLevel         = "SVCBOARD_LOG_LEVEL"
	envLogFile          = "SVCBOARD_LOG_FILE"
)

// Backend kinds. BackendDaemon routes every call through svcboard-daemon.
const (
	BackendAuto    = "auto"
	BackendSystemd = "systemd"
	BackendWindows = "windows"
	BackendMemory  = "memory"
	BackendDaemon  = "daemon"
)

// Config aggregates everything the CLI, TUI, HTTP adapter and daemon tune.
type Config struct {
	Backend      string
	SystemdScope string
	// CacheTTL of zero disables listing cache.
	CacheTTL time.Duration
	// OperationTimeout of zero lets control calls run unbounded.
	OperationTimeout time.Duration
	// RefreshInterval of zero disables periodic refresh.
	RefreshInterval  time.Duration
	SearchDebounce   time.Duration
	VirtualThreshold int
	Overscan         int
	BulkConcurrency  int
	MemorySeed       string
	MemoryLatency    time.Duration
	HTTPListen       string
	LogLevel         string
	LogFile          string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:          defaultBackend,
		SystemdScope:     defaultSystemdScope,
		CacheTTL:         defaultCacheTTL,
		OperationTimeout: defaultOperationTimeout,
		RefreshInterval:  defaultRefreshInterval,
		SearchDebounce:   defaultSearchDebounce,
		VirtualThreshold: defaultVirtualThreshold,
		Overscan:         defaultOverscan,
		BulkConcurrency:  defaultBulkConcurrency,
		MemoryLatency:    defaultMemoryLatency,
		HTTPListen:       defaultHTTPListen,
		LogLevel:         defaultLogLevel,
	}
}

// Load builds a Config from an optional JSON file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendSystemd, BackendWindows, BackendMemory, BackendDaemon:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.SystemdScope {
	case "system", "user":
	default:
		return fmt.Errorf("systemd_scope must be system or user, got %q", c.SystemdScope)
	}
	if c.VirtualThreshold < 0 || c.Overscan < 0 {
		return fmt.Errorf("virtual_threshold and overscan must not be negative")
	}
	if c.BulkConcurrency <= 0 {
		return fmt.Errorf("bulk_concurrency must be > 0")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envBackend); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(envSystemdScope); v != "" {
		cfg.SystemdScope = strings.ToLower(strings.TrimSpace(v))
	}
	envDuration(envCacheTTL, &cfg.CacheTTL)
	envDuration(envOperationTimeout, &cfg.OperationTimeout)
	envDuration(envRefreshInterval, &cfg.RefreshInterval)
	envDuration(envSearchDebounce, &cfg.SearchDebounce)
	if v := os.Getenv(envMemorySeed); v != "" {
		cfg.MemorySeed = v
	}
	if v := os.Getenv(envHTTPListen); v != "" {
		cfg.HTTPListen = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envLogFile); v != "" {
		cfg.LogFile = v
	}
}

func envDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	dur, err := time.ParseDuration(v)
	if err == nil && dur >= 0 {
		*dst = dur
		return
	}
	if err == nil {
		err = fmt.Errorf("must be >= 0")
	}
	log.Warn().Str("env", name).Str("value", v).Err(err).Msg("ignoring invalid duration")
}

type fileConfig struct {
	Backend          string `json:"backend"`
	SystemdScope     string `json:"systemd_scope"`
	CacheTTL         string `json:"cache_ttl"`
	OperationTimeout string `json:"operation_timeout"`
	RefreshInterval  string `json:"refresh_interval"`
	SearchDebounce   string `json:"search_debounce"`
	VirtualThreshold *int   `json:"virtual_threshold"`
	Overscan         *int   `json:"overscan"`
	BulkConcurrency  *int   `json:"bulk_concurrency"`
	MemorySeed       string `json:"memory_seed"`
	MemoryLatency    string `json:"memory_latency"`
	HTTPListen       string `json:"http_listen"`
	LogLevel         string `json:"log_level"`
	LogFile          string `json:"log_file"`
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Backend != "" {
		cfg.Backend = strings.ToLower(raw.Backend)
	}
	if raw.SystemdScope != "" {
		cfg.SystemdScope = strings.ToLower(raw.SystemdScope)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"cache_ttl", raw.CacheTTL, &cfg.CacheTTL},
		{"operation_timeout", raw.OperationTimeout, &cfg.OperationTimeout},
		{"refresh_interval", raw.RefreshInterval, &cfg.RefreshInterval},
		{"search_debounce", raw.SearchDebounce, &cfg.SearchDebounce},
		{"memory_latency", raw.MemoryLatency, &cfg.MemoryLatency},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		dur, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		if dur < 0 {
			return fmt.Errorf("%s must be >= 0", d.key)
		}
		*d.dst = dur
	}
	if raw.VirtualThreshold != nil {
		cfg.VirtualThreshold = *raw.VirtualThreshold
	}
	if raw.Overscan != nil {
		cfg.Overscan = *raw.Overscan
	}
	if raw.BulkConcurrency != nil {
		cfg.BulkConcurrency = *raw.BulkConcurrency
	}
	if raw.MemorySeed != "" {
		cfg.MemorySeed = raw.MemorySeed
	}
	if raw.HTTPListen != "" {
		cfg.HTTPListen = raw.HTTPListen
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogFile != "" {
		cfg.LogFile = raw.LogFile
	}
	return nil
}
