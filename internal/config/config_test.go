package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env development, got %q", cfg.Env)
	}
	if cfg.WSReadLimit != 64*1024 {
		t.Fatalf("expected default read limit 65536, got %d", cfg.WSReadLimit)
	}
	if cfg.WSSendBuffer != 256 {
		t.Fatalf("expected default send buffer 256, got %d", cfg.WSSendBuffer)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Fatal("expected a default CORS origin")
	}
	if !cfg.IsDev() {
		t.Fatal("default env should be development")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Env:          "development",
		JWTSecret:    "dev-secret",
		WSReadLimit:  65536,
		WSSendBuffer: 256,
	}

	t.Run("valid dev config", func(t *testing.T) {
		cfg := base
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = ""
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
			t.Fatalf("expected JWT_SECRET error, got %v", err)
		}
	})

	t.Run("short secret in production", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = "short"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for short production secret")
		}
	})

	t.Run("long secret in production", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = strings.Repeat("s", 32)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	t.Run("bad read limit", func(t *testing.T) {
		cfg := base
		cfg.WSReadLimit = 0
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for zero read limit")
		}
	})

	t.Run("bad send buffer", func(t *testing.T) {
		cfg := base
		cfg.WSSendBuffer = -1
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for negative send buffer")
		}
	})
}
