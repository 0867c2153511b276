package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/linkctl/internal/config"
)

// linkctl config.toml key mapping to simulator runtime settings.
type fileConfig struct {
	DebugListenAddr string  `toml:"debug_listen_addr"`
	LinkConfigPath  string  `toml:"link_config_path"`
	DropRate        float64 `toml:"drop_rate"`
	CorruptRate     float64 `toml:"corrupt_rate"`
	FaultSeed       int64   `toml:"fault_seed"`
	TickMillis      int     `toml:"tick_ms"`
	MessageCount    int     `toml:"message_count"`
	MessagePrefix   string  `toml:"message_prefix"`
	RunSeconds      int     `toml:"run_seconds"`
	UseHosts        bool    `toml:"use_hosts"`
}

type simConfig struct {
	DebugListenAddr string
	Link            config.LinkConfig
	DropRate        float64
	CorruptRate     float64
	FaultSeed       int64
	TickInterval    time.Duration
	MessageCount    int
	MessagePrefix   string
	RunLimit        time.Duration
	UseHosts        bool
}

func defaultSimConfig() simConfig {
	// The default simulation injects faults, so the links default to
	// stop-and-wait; an explicit link config can turn it off.
	linkCfg := config.DefaultLinkConfig()
	linkCfg.Reliable = true
	return simConfig{
		DebugListenAddr: "",
		Link:            linkCfg,
		DropRate:        0.05,
		CorruptRate:     0.05,
		FaultSeed:       1,
		TickInterval:    5 * time.Millisecond,
		MessageCount:    32,
		MessagePrefix:   "linkctl message",
		RunLimit:        30 * time.Second,
		UseHosts:        false,
	}
}

// linkctl loader for TOML config with default overlay.
func loadSimConfig(path string) (simConfig, error) {
	cfg := defaultSimConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return simConfig{}, fmt.Errorf("load linkctl config: %w", err)
	}

	if meta.IsDefined("debug_listen_addr") {
		cfg.DebugListenAddr = strings.TrimSpace(raw.DebugListenAddr)
	}
	if meta.IsDefined("drop_rate") {
		cfg.DropRate = raw.DropRate
	}
	if meta.IsDefined("corrupt_rate") {
		cfg.CorruptRate = raw.CorruptRate
	}
	if meta.IsDefined("fault_seed") {
		cfg.FaultSeed = raw.FaultSeed
	}
	if meta.IsDefined("tick_ms") {
		if raw.TickMillis <= 0 {
			return simConfig{}, fmt.Errorf("load linkctl config: tick_ms must be positive, got %d", raw.TickMillis)
		}
		cfg.TickInterval = time.Duration(raw.TickMillis) * time.Millisecond
	}
	if meta.IsDefined("message_count") {
		if raw.MessageCount <= 0 {
			return simConfig{}, fmt.Errorf("load linkctl config: message_count must be positive, got %d", raw.MessageCount)
		}
		cfg.MessageCount = raw.MessageCount
	}
	if meta.IsDefined("message_prefix") {
		cfg.MessagePrefix = strings.TrimSpace(raw.MessagePrefix)
	}
	if meta.IsDefined("run_seconds") {
		if raw.RunSeconds <= 0 {
			return simConfig{}, fmt.Errorf("load linkctl config: run_seconds must be positive, got %d", raw.RunSeconds)
		}
		cfg.RunLimit = time.Duration(raw.RunSeconds) * time.Second
	}
	if meta.IsDefined("use_hosts") {
		cfg.UseHosts = raw.UseHosts
	}
	if cfg.DropRate < 0 || cfg.DropRate > 1 {
		return simConfig{}, fmt.Errorf("load linkctl config: drop_rate must be within [0,1], got %v", cfg.DropRate)
	}
	if cfg.CorruptRate < 0 || cfg.CorruptRate > 1 {
		return simConfig{}, fmt.Errorf("load linkctl config: corrupt_rate must be within [0,1], got %v", cfg.CorruptRate)
	}

	linkPath := strings.TrimSpace(raw.LinkConfigPath)
	if linkPath != "" {
		if !filepath.IsAbs(linkPath) {
			linkPath = filepath.Join(filepath.Dir(path), linkPath)
		}
		linkCfg, err := config.LoadLinkConfig(linkPath)
		if err != nil {
			return simConfig{}, fmt.Errorf("load linkctl config: link config %q: %w", raw.LinkConfigPath, err)
		}
		cfg.Link = linkCfg
	}

	return cfg, nil
}
