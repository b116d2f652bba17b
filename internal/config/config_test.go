package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}
	def := Default()
	if cfg.Server.BindAddress != def.Server.BindAddress {
		t.Fatalf("bind = %s, want default %s", cfg.Server.BindAddress, def.Server.BindAddress)
	}
	if cfg.Match.WinThreshold != def.Match.WinThreshold {
		t.Fatalf("win threshold = %d, want default %d", cfg.Match.WinThreshold, def.Match.WinThreshold)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
bind_address = ":9999"
allowed_origins = ["https://example.com"]

[loop]
tick_interval = "8ms"

[match]
duration = "90s"
win_threshold = 3

[physics]
ball_drag = 0.95
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BindAddress != ":9999" {
		t.Fatalf("bind = %s", cfg.Server.BindAddress)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://example.com" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if got := cfg.LoopConfig().TickInterval; got != 8*time.Millisecond {
		t.Fatalf("tick interval = %v, want 8ms", got)
	}
	sim := cfg.SimConfig()
	if sim.Rules.MatchDuration != 90*time.Second {
		t.Fatalf("match duration = %v, want 90s", sim.Rules.MatchDuration)
	}
	if sim.Rules.WinThreshold != 3 {
		t.Fatalf("win threshold = %d, want 3", sim.Rules.WinThreshold)
	}
	if sim.Physics.BallDrag != 0.95 {
		t.Fatalf("ball drag = %v, want 0.95", sim.Physics.BallDrag)
	}

	// Untouched keys keep their defaults.
	def := Default()
	if sim.Physics.PlayerDrag != def.Physics.PlayerDrag {
		t.Fatalf("player drag = %v, want default %v", sim.Physics.PlayerDrag, def.Physics.PlayerDrag)
	}
	if cfg.Match.MaxPlayers != def.Match.MaxPlayers {
		t.Fatalf("max players = %d, want default %d", cfg.Match.MaxPlayers, def.Match.MaxPlayers)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
[loop]
tick_interval = "soon"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
