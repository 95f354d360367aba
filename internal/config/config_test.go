package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled {
		t.Error("redis must default to disabled")
	}
	if cfg.Dwglog.RecentLimit != 100 {
		t.Errorf("recent limit = %d, want 100", cfg.Dwglog.RecentLimit)
	}
	if cfg.Dwglog.DefaultAuthor != "unknown" {
		t.Errorf("default author = %q", cfg.Dwglog.DefaultAuthor)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_DRIVER", "postgres")
	os.Setenv("DWGLOG_DEFAULT_AUTHOR", "ken")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_DRIVER")
		os.Unsetenv("DWGLOG_DEFAULT_AUTHOR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("database driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Dwglog.DefaultAuthor != "ken" {
		t.Errorf("default author = %q, want ken", cfg.Dwglog.DefaultAuthor)
	}
}
