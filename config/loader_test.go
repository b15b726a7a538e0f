package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "api:\n  baseURL: http://transport.example/api\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://transport.example/api" {
		t.Errorf("baseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS != defaultTimeoutMS {
		t.Errorf("timeout default = %d, want %d", cfg.API.TimeoutMS, defaultTimeoutMS)
	}
	if cfg.API.PageSize != defaultPageSize {
		t.Errorf("page size default = %d, want %d", cfg.API.PageSize, defaultPageSize)
	}
	if cfg.Cache.TTLMinutes != defaultTTLMinutes {
		t.Errorf("ttl default = %d, want %d", cfg.Cache.TTLMinutes, defaultTTLMinutes)
	}
	if cfg.Cache.SmallPath == "" || cfg.Cache.BulkDir == "" {
		t.Error("cache paths should get defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("loading a non-existent config should return an error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeConfig(t, "api: [not: valid: yaml")
	if _, err := Load(p); err == nil {
		t.Error("invalid YAML should return an error")
	}
}

func TestLoad_RejectsNonURLBase(t *testing.T) {
	p := writeConfig(t, "api:\n  baseURL: not-a-url\n")
	if _, err := Load(p); err == nil {
		t.Error("non-URL baseURL should fail validation")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeConfig(t, "api:\n  baseURL: http://transport.example/api\n")
	t.Setenv("TRANSITMAP_API_BASE_URL", "http://other.example/api")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://other.example/api" {
		t.Errorf("env override not applied, got %q", cfg.API.BaseURL)
	}
}
