package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configContent := `{
		"server": {"listen": ":9090", "readTimeout": 5},
		"controller": {"listenAddr": ":16633", "lldpPeriodMs": 500},
		"planner": {"pathsPerPair": 5}
	}`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Errorf("got listen %s, want :9090", cfg.Server.Listen)
	}
	if cfg.Controller.ListenAddr != ":16633" {
		t.Errorf("got controller listen %s, want :16633", cfg.Controller.ListenAddr)
	}
	if cfg.Planner.PathsPerPair != 5 {
		t.Errorf("got paths per pair %d, want 5", cfg.Planner.PathsPerPair)
	}
	if cfg.Server.WriteTimeout != 15 {
		t.Errorf("got default write timeout %d, want 15", cfg.Server.WriteTimeout)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{}`), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Controller.ListenAddr != ":6633" {
		t.Errorf("got default controller listen %s, want :6633", cfg.Controller.ListenAddr)
	}
	if cfg.LLDPPeriod().Milliseconds() != 2000 {
		t.Errorf("got default lldp period %v, want 2s", cfg.LLDPPeriod())
	}
	if cfg.TopologyExpiry().Seconds() != 10 {
		t.Errorf("got default topology expiry %v, want 10s", cfg.TopologyExpiry())
	}
}

func TestLoadFileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Error("want error for nonexistent file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("want error for invalid JSON")
	}
}
