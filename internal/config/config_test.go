package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svcboard.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.SearchDebounce != 300*time.Millisecond || cfg.CacheTTL != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `{
		"backend": "memory",
		"operation_timeout": "0s",
		"refresh_interval": "2s",
		"overscan": 0,
		"bulk_concurrency": 8,
		"memory_latency": "50ms"
	}`)
	t.Setenv(envRefreshInterval, "3s")
	t.Setenv(envHTTPListen, "127.0.0.1:9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Fatalf("backend: got %q", cfg.Backend)
	}
	if cfg.OperationTimeout != 0 {
		t.Fatalf("explicit zero timeout should disable, got %v", cfg.OperationTimeout)
	}
	if cfg.RefreshInterval != 3*time.Second {
		t.Fatalf("env should win over file, got %v", cfg.RefreshInterval)
	}
	if cfg.Overscan != 0 || cfg.BulkConcurrency != 8 || cfg.MemoryLatency != 50*time.Millisecond {
		t.Fatalf("unexpected values %+v", cfg)
	}
	if cfg.HTTPListen != "127.0.0.1:9999" {
		t.Fatalf("listen: got %q", cfg.HTTPListen)
	}
}

func TestLoadInvalidEnvIgnored(t *testing.T) {
	t.Setenv(envCacheTTL, "soon")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CacheTTL != defaultCacheTTL {
		t.Fatalf("invalid env should be ignored, got %v", cfg.CacheTTL)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		`{"cache_ttl": "later"}`:     `parse cache_ttl`,
		`{"search_debounce": "-1s"}`: `search_debounce must be >= 0`,
		`{"backend": "launchd"}`:     `unknown backend "launchd"`,
		`{"bulk_concurrency": 0}`:    `bulk_concurrency must be > 0`,
	}
	for body, want := range cases {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Fatalf("%s: expected error", body)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: expected %q in %q", body, want, err.Error())
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
