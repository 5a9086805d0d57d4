package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" {
		t.Fatalf("default rpc address: %q", cfg.RPCAddress)
	}
	if cfg.NetworkName != "sendor-local" {
		t.Fatalf("default network: %q", cfg.NetworkName)
	}
	if cfg.RequestsPerMinute != 600 || cfg.RequestBurst != 20 {
		t.Fatalf("default rate limits: %v %v", cfg.RequestsPerMinute, cfg.RequestBurst)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}

	// A second load reads the file just written.
	if _, err := Load(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
RPCAddress = ":9999"
DataDir = "/tmp/sendor-test"
AdminAddress = "0x00000000000000000000000000000000000000aa"
LaunchFee = "1000"
RequestsPerMinute = 120.0
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":9999" {
		t.Fatalf("rpc address: %q", cfg.RPCAddress)
	}
	if cfg.DataDir != "/tmp/sendor-test" {
		t.Fatalf("data dir: %q", cfg.DataDir)
	}
	if cfg.LaunchFee != "1000" {
		t.Fatalf("launch fee: %q", cfg.LaunchFee)
	}
	if cfg.RequestsPerMinute != 120 {
		t.Fatalf("requests per minute: %v", cfg.RequestsPerMinute)
	}
	// Fields absent from the file fall back to defaults.
	if cfg.NetworkName != "sendor-local" {
		t.Fatalf("network default: %q", cfg.NetworkName)
	}
	if cfg.RequestBurst != 20 {
		t.Fatalf("burst default: %d", cfg.RequestBurst)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("RPCAddress = [broken"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
