package config

import (
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Source != "demo" {
		t.Errorf("Expected default source 'demo', got %q", cfg.Source)
	}
	if cfg.OutputDir != "downloaded_pdfs" {
		t.Errorf("Expected default output dir 'downloaded_pdfs', got %q", cfg.OutputDir)
	}
	if cfg.Cache.Provider != "memory" {
		t.Errorf("Expected default cache provider 'memory', got %q", cfg.Cache.Provider)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.ClientTimeout != "" {
		t.Errorf("Expected no client timeout by default, got %q", cfg.ClientTimeout)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "8081")
	t.Setenv("APP_SOURCE", "ecourts")
	t.Setenv("APP_CACHE_REDIS_ADDRESS", "redis:6379")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Expected port 8081 from env, got %d", cfg.Server.Port)
	}
	if cfg.Source != "ecourts" {
		t.Errorf("Expected source 'ecourts' from env, got %q", cfg.Source)
	}
	if cfg.Cache.Redis.Address != "redis:6379" {
		t.Errorf("Expected redis address from env, got %q", cfg.Cache.Redis.Address)
	}
}

func TestGetUserAgent(t *testing.T) {
	if got := GetUserAgent(); got == "" {
		t.Error("Expected a non-empty user agent")
	}
}
