package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/linkctl/internal/checksum"
	"github.com/danmuck/linkctl/internal/framing"
	"github.com/danmuck/linkctl/internal/link"
)

// LinkConfig is the on-disk shape of one link endpoint definition.
type LinkConfig struct {
	StartTag     string `toml:"start_tag"`
	StopTag      string `toml:"stop_tag"`
	EscapeTag    string `toml:"escape_tag"`
	AckTag       string `toml:"ack_tag"`
	MaxFrameSize int    `toml:"max_frame_size"`
	Reliable     bool   `toml:"reliable"`
	ARQTimeoutMS int    `toml:"arq_timeout_ms"`

	Checksum ChecksumConfig `toml:"checksum"`
}

// ChecksumConfig selects the error-detection engine.
type ChecksumConfig struct {
	Kind      string `toml:"kind"`
	Generator int    `toml:"generator"`
	Width     int    `toml:"width"`
}

// DefaultLinkConfig mirrors the reference constants: default tag
// alphabet, eight-byte sub-frames, CRC-8/DVB-S2, 100ms resend.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		StartTag:     "{",
		StopTag:      "}",
		EscapeTag:    `\`,
		AckTag:       "@",
		MaxFrameSize: 8,
		ARQTimeoutMS: 100,
		Checksum: ChecksumConfig{
			Kind:      "crc",
			Generator: 0x1D5,
			Width:     9,
		},
	}
}

// LoadLinkConfig reads a TOML link definition with default overlay.
func LoadLinkConfig(path string) (LinkConfig, error) {
	cfg := DefaultLinkConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return LinkConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return LinkConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := ValidateLinkConfig(cfg); err != nil {
		return LinkConfig{}, err
	}
	return cfg, nil
}

func ValidateLinkConfig(cfg LinkConfig) error {
	for _, tag := range []struct {
		name  string
		value string
	}{
		{"start_tag", cfg.StartTag},
		{"stop_tag", cfg.StopTag},
		{"escape_tag", cfg.EscapeTag},
		{"ack_tag", cfg.AckTag},
	} {
		if len(tag.value) != 1 {
			return fmt.Errorf("link config %s must be a single byte, got %q", tag.name, tag.value)
		}
	}
	if cfg.MaxFrameSize <= 0 {
		return fmt.Errorf("link config max_frame_size must be positive, got %d", cfg.MaxFrameSize)
	}
	if cfg.ARQTimeoutMS <= 0 {
		return fmt.Errorf("link config arq_timeout_ms must be positive, got %d", cfg.ARQTimeoutMS)
	}
	if _, err := checksum.ParseKind(cfg.Checksum.Kind); err != nil {
		return fmt.Errorf("link config checksum kind invalid: %w", err)
	}
	if cfg.Checksum.Generator < 0 || cfg.Checksum.Generator > 0xFFFF {
		return fmt.Errorf("link config checksum generator out of range: %#x", cfg.Checksum.Generator)
	}
	return nil
}

// ToLink converts the file shape into a validated runtime link.Config.
func ToLink(cfg LinkConfig) (link.Config, error) {
	if err := ValidateLinkConfig(cfg); err != nil {
		return link.Config{}, err
	}
	kind, err := checksum.ParseKind(cfg.Checksum.Kind)
	if err != nil {
		return link.Config{}, err
	}
	out := link.Config{
		Tags: framing.TagSet{
			Start:  cfg.StartTag[0],
			Stop:   cfg.StopTag[0],
			Escape: cfg.EscapeTag[0],
			Ack:    cfg.AckTag[0],
		},
		MaxFrameSize: cfg.MaxFrameSize,
		Checksum: checksum.Config{
			Kind:      kind,
			Generator: uint16(cfg.Checksum.Generator),
			Width:     cfg.Checksum.Width,
		},
		Reliable:   cfg.Reliable,
		ARQTimeout: time.Duration(cfg.ARQTimeoutMS) * time.Millisecond,
	}
	if err := out.Tags.Validate(); err != nil {
		return link.Config{}, err
	}
	if _, err := checksum.New(out.Checksum); err != nil {
		return link.Config{}, err
	}
	return out, nil
}

// Describe renders a short human-readable summary for logs.
func Describe(cfg LinkConfig) string {
	mode := "unreliable"
	if cfg.Reliable {
		mode = "stop-and-wait"
	}
	return fmt.Sprintf("tags=%s%s%s%s frame<=%d checksum=%s %s",
		cfg.StartTag, cfg.StopTag, cfg.EscapeTag, cfg.AckTag,
		cfg.MaxFrameSize, strings.ToLower(strings.TrimSpace(cfg.Checksum.Kind)), mode)
}
