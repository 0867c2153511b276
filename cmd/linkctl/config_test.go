package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSimConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	content := `
debug_listen_addr = "127.0.0.1:8480"
drop_rate = 0.25
corrupt_rate = 0.1
fault_seed = 42
tick_ms = 2
message_count = 8
message_prefix = "probe"
run_seconds = 5
use_hosts = true
	`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadSimConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DebugListenAddr != "127.0.0.1:8480" {
		t.Fatalf("unexpected debug listen addr: %q", cfg.DebugListenAddr)
	}
	if cfg.DropRate != 0.25 {
		t.Fatalf("unexpected drop rate: %v", cfg.DropRate)
	}
	if cfg.CorruptRate != 0.1 {
		t.Fatalf("unexpected corrupt rate: %v", cfg.CorruptRate)
	}
	if cfg.FaultSeed != 42 {
		t.Fatalf("unexpected fault seed: %d", cfg.FaultSeed)
	}
	if cfg.TickInterval != 2*time.Millisecond {
		t.Fatalf("unexpected tick interval: %v", cfg.TickInterval)
	}
	if cfg.MessageCount != 8 {
		t.Fatalf("unexpected message count: %d", cfg.MessageCount)
	}
	if cfg.MessagePrefix != "probe" {
		t.Fatalf("unexpected message prefix: %q", cfg.MessagePrefix)
	}
	if cfg.RunLimit != 5*time.Second {
		t.Fatalf("unexpected run limit: %v", cfg.RunLimit)
	}
	if !cfg.UseHosts {
		t.Fatalf("expected hosts enabled")
	}
	if cfg.Link.MaxFrameSize != 8 {
		t.Fatalf("expected default link config, got frame size %d", cfg.Link.MaxFrameSize)
	}
}

func TestLoadSimConfigResolvesLinkConfigPath(t *testing.T) {
	dir := t.TempDir()

	linkPath := filepath.Join(dir, "link.toml")
	if err := os.WriteFile(linkPath, []byte(`
max_frame_size = 16
reliable = true

[checksum]
kind = "parity"
`), 0o644); err != nil {
		t.Fatalf("write link config: %v", err)
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
link_config_path = "link.toml"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadSimConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Link.MaxFrameSize != 16 {
		t.Fatalf("unexpected link frame size: %d", cfg.Link.MaxFrameSize)
	}
	if !cfg.Link.Reliable {
		t.Fatalf("expected reliable link")
	}
	if cfg.Link.Checksum.Kind != "parity" {
		t.Fatalf("unexpected checksum kind: %q", cfg.Link.Checksum.Kind)
	}
	if cfg.Link.StartTag != "{" {
		t.Fatalf("expected default start tag, got %q", cfg.Link.StartTag)
	}
}

func TestLoadSimConfigRejectsBadRates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
drop_rate = 1.5
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := loadSimConfig(path); err == nil {
		t.Fatalf("expected drop rate validation error")
	}
}

func TestLoadSimConfigRejectsNonPositiveTick(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
tick_ms = 0
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := loadSimConfig(path); err == nil {
		t.Fatalf("expected tick validation error")
	}
}
