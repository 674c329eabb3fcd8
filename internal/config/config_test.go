package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amman.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "launcher: process\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Ports.Validator != DefaultValidatorPort {
		t.Fatalf("expected default validator port, got %d", cfg.Ports.Validator)
	}
	if cfg.Ports.RPC != DefaultRPCPort {
		t.Fatalf("expected default rpc port, got %d", cfg.Ports.RPC)
	}
	if cfg.Assets != filepath.Join(cfg.Fixtures, "assets") {
		t.Fatalf("expected assets under fixtures, got %q", cfg.Assets)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "launcer: process\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadRejectsUnknownLauncher(t *testing.T) {
	path := writeFile(t, "launcher: podman\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown launcher") {
		t.Fatalf("expected unknown launcher error, got %v", err)
	}
}

func TestLoadRejectsDockerWithoutImage(t *testing.T) {
	path := writeFile(t, "launcher: docker\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for docker launcher without image")
	}
}

func TestLoadRejectsEqualPorts(t *testing.T) {
	path := writeFile(t, "ports:\n  validator: 9000\n  rpc: 9000\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for identical ports")
	}
}

func TestDurationParsing(t *testing.T) {
	path := writeFile(t, "waitTimeout: 90s\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.WaitTimeout.Duration != 90*time.Second {
		t.Fatalf("expected 90s wait timeout, got %v", cfg.WaitTimeout.Duration)
	}
	if !cfg.WaitTimeout.IsSet() {
		t.Fatalf("expected wait timeout to report set")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
