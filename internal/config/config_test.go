package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/linkctl/internal/checksum"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "link.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLinkConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
reliable = true
`)
	cfg, err := LoadLinkConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Reliable {
		t.Fatalf("reliable not applied")
	}
	if cfg.StartTag != "{" || cfg.MaxFrameSize != 8 || cfg.Checksum.Kind != "crc" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
}

func TestLoadLinkConfigFull(t *testing.T) {
	path := writeConfig(t, `
start_tag = "<"
stop_tag = ">"
escape_tag = "~"
ack_tag = "!"
max_frame_size = 16
reliable = true
arq_timeout_ms = 250

[checksum]
kind = "parity"
`)
	cfg, err := LoadLinkConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rt, err := ToLink(cfg)
	if err != nil {
		t.Fatalf("to link: %v", err)
	}
	if rt.Tags.Start != '<' || rt.Tags.Stop != '>' || rt.Tags.Escape != '~' || rt.Tags.Ack != '!' {
		t.Fatalf("tags mismatch: %+v", rt.Tags)
	}
	if rt.MaxFrameSize != 16 || !rt.Reliable || rt.ARQTimeout != 250*time.Millisecond {
		t.Fatalf("runtime config mismatch: %+v", rt)
	}
	if rt.Checksum.Kind != checksum.KindParity {
		t.Fatalf("checksum kind mismatch: %+v", rt.Checksum)
	}
}

func TestLoadLinkConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"multi-byte tag", `start_tag = "ab"`},
		{"zero frame size", `max_frame_size = 0`},
		{"unknown checksum", "[checksum]\nkind = \"md5\""},
		{"zero timeout", `arq_timeout_ms = 0`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadLinkConfig(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestToLinkRejectsTagCollisionAndBadGenerator(t *testing.T) {
	cfg := DefaultLinkConfig()
	cfg.AckTag = "{"
	if _, err := ToLink(cfg); err == nil {
		t.Fatalf("expected tag collision error")
	}

	cfg = DefaultLinkConfig()
	cfg.Checksum.Generator = 0xD5 // leading term missing for width 9
	if _, err := ToLink(cfg); err == nil {
		t.Fatalf("expected generator error")
	}
}

func TestLoadLinkConfigMissingFile(t *testing.T) {
	if _, err := LoadLinkConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(DefaultLinkConfig())
	want := `tags={}\@ frame<=8 checksum=crc unreliable`
	if got != want {
		t.Fatalf("describe got=%q want=%q", got, want)
	}
}
