package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsThenOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	body := `
[network]
bind_address = "127.0.0.1:9000"

[scripting]
scripts_dir = "/opt/rtype/scripts"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network.BindAddress != "127.0.0.1:9000" {
		t.Fatalf("expected overridden bind address, got %q", cfg.Network.BindAddress)
	}
	if cfg.Scripting.ScriptsDir != "/opt/rtype/scripts" {
		t.Fatalf("expected overridden scripts dir, got %q", cfg.Scripting.ScriptsDir)
	}
	if cfg.Network.TickRate != time.Second/60 {
		t.Fatalf("expected default tick rate to survive, got %v", cfg.Network.TickRate)
	}
	if cfg.Lobby.DefaultCapacity != 4 {
		t.Fatalf("expected default lobby capacity to survive, got %v", cfg.Lobby.DefaultCapacity)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatal("expected StartTime to be stamped at load time")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/server.toml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
