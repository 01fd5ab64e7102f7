package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":3000" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Storage.Driver != "mongo" || c.Storage.Mongo.Database != "user_info" {
		t.Fatalf("storage defaults: %+v", c.Storage)
	}
	if c.Session.Mode != "sessioned" || c.Session.CookieName != "sid" {
		t.Fatalf("session defaults: %+v", c.Session)
	}
	if c.SessionTTL() != 24*time.Hour {
		t.Fatalf("ttl = %v", c.SessionTTL())
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":8080"
session:
  secret: from-yaml
  ttl: 1h
providers:
  github:
    client_id: gh-id
    client_secret: gh-secret
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	// Las ENV pisan al YAML.
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("STORAGE_DRIVER", "memory")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Session.Secret != "from-env" {
		t.Fatalf("secret = %q, env must win", c.Session.Secret)
	}
	if c.SessionTTL() != time.Hour {
		t.Fatalf("ttl = %v", c.SessionTTL())
	}
	if !c.Providers.GitHub.Enabled() {
		t.Fatal("github should be enabled")
	}
	if c.Providers.Google.Enabled() {
		t.Fatal("google should be disabled without credentials")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	c := &Config{}
	c.defaults()
	// mongo sin URI: inválido.
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing mongo uri")
	}

	c.Storage.Driver = "memory"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing session secret")
	}

	c.Session.Secret = "s"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	c.Storage.Driver = "flatfile"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
}
