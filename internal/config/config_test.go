package config

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Root != "../frontend/build" {
		t.Errorf("Root = %q, want ../frontend/build", cfg.Root)
	}
	if !cfg.Log.Access || cfg.Log.Debug || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if !cfg.CheckBuild {
		t.Error("CheckBuild should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadNoFile(t *testing.T) {
	cfg, path, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.Port != Port || cfg.Root != Root {
		t.Errorf("got %d %q, want defaults", cfg.Port, cfg.Root)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "buildserve.toml", `
port = 8080
root = "/etc"
check_build = false

[log]
debug = true
access = false
format = "json"

[mime]
".webmanifest" = "application/manifest+json"
`)

	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Port != 3000 || cfg.Root != "../frontend/build" {
		t.Errorf("file must not change port/root, got %d %q", cfg.Port, cfg.Root)
	}
	if !cfg.Log.Debug || cfg.Log.Access || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.CheckBuild {
		t.Error("CheckBuild should be false")
	}
	if cfg.MIME[".webmanifest"] != "application/manifest+json" {
		t.Errorf("MIME = %v", cfg.MIME)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "buildserve.yaml", "log:\n  debug: true\n  format: text\n")

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Log.Debug {
		t.Error("expected debug from yaml")
	}
	// Keys the file leaves out keep their defaults.
	if !cfg.Log.Access || !cfg.CheckBuild {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "buildserve.yaml", "log:\n  format: json\n")
	want := writeFile(t, dir, "buildserve.toml", "[log]\nformat = \"text\"\n")

	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != want || cfg.Log.Format != "text" {
		t.Errorf("got %q format %q, want toml", path, cfg.Log.Format)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "buildserve.toml", "[log\n")

	_, _, err := Load(dir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected path in error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BUILDSERVE_DEBUG":      "true",
		"BUILDSERVE_ACCESS_LOG": "0",
		"BUILDSERVE_LOG_FORMAT": "JSON",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Log.Debug || cfg.Log.Access || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}

	env["BUILDSERVE_DEBUG"] = "maybe"
	if err := ApplyEnv(&cfg, lookup); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	writeFile(t, dir, ".env", "BUILDSERVE_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("BUILDSERVE_TEST_DOTENV") })

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("BUILDSERVE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("BUILDSERVE_TEST_DOTENV = %q, want loaded", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.MIME["wasm"] = "application/wasm" },
			wantErr: "must start with a dot",
		},
		{
			name:    "bad media type",
			mutate:  func(c *Config) { c.MIME[".x"] = "not a type;;" },
			wantErr: "mime: .x",
		},
		{
			name:   "valid mime",
			mutate: func(c *Config) { c.MIME[".webmanifest"] = "application/manifest+json" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterMIME(t *testing.T) {
	cfg := Default()
	cfg.MIME[".bsvtest"] = "application/x-buildserve-test"
	if err := cfg.RegisterMIME(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mime.TypeByExtension(".bsvtest"); got != "application/x-buildserve-test" {
		t.Errorf("TypeByExtension = %q", got)
	}
}
