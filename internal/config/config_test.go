package config_test

import (
	"courtside/internal/config"
	"path/filepath"
	"testing"
)

func TestNewFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	c, err := config.NewFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DatabasePath != "./courtside.db" || c.HTTPAddress == "" {
		t.Errorf("expected defaults on a missing file, got %+v", c)
	}

	c.DiscordAdminUserIDs = []string{"42"}
	c.DatabasePath = "/var/lib/courtside.db"
	if err := c.WriteToPath(path); err != nil {
		t.Fatal(err)
	}

	t.Setenv("COURTSIDE_DATABASE_PATH", "")
	t.Setenv("COURTSIDE_JWT_SECRET", "from-env")
	t.Setenv("COURTSIDE_DEV_MODE", "true")

	reloaded, err := config.NewFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if reloaded.DatabasePath != "/var/lib/courtside.db" {
		t.Errorf("expected the stored path, got %q", reloaded.DatabasePath)
	}
	if reloaded.JWTSecret != "from-env" {
		t.Errorf("expected the env to override the secret, got %q", reloaded.JWTSecret)
	}
	if !reloaded.DevMode {
		t.Error("expected dev mode from env")
	}
	if !reloaded.IsDiscordIDAdmin("42") || reloaded.IsDiscordIDAdmin("43") {
		t.Error("unexpected admin list")
	}
}

func TestIsDiscordChannelListened(t *testing.T) {
	c := config.Config{}
	if !c.IsDiscordChannelListened("1") {
		t.Error("expected every channel to be listened by default")
	}

	c.DiscordListenIDs = []string{"2"}
	if c.IsDiscordChannelListened("1") || !c.IsDiscordChannelListened("2") {
		t.Error("unexpected listened channels")
	}
	if c.IsDiscordIDBanned("2") {
		t.Error("nobody should be banned")
	}
}
