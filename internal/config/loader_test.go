package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Mode != ModeLocal {
		t.Errorf("Expected mode 'local', got '%s'", cfg.Mode)
	}

	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("Unexpected base URL '%s'", cfg.API.BaseURL)
	}

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.API.Timeout)
	}

	if cfg.UI.DefaultFilter != "Today" {
		t.Errorf("Expected default filter 'Today', got '%s'", cfg.UI.DefaultFilter)
	}

	if !cfg.Telemetry.Enabled {
		t.Error("Expected telemetry to be enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	path := filepath.Join(tmpDir, "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	want := filepath.Join(tmpDir, ".twodo", "twodo.db")
	if cfg.Storage.Path != want {
		t.Errorf("Expected storage path %s, got %s", want, cfg.Storage.Path)
	}

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.API.Timeout)
	}
}

func TestLoadProjectOverridesGlobal(t *testing.T) {
	tmpDir := t.TempDir()

	global := filepath.Join(tmpDir, "global.yaml")
	project := filepath.Join(tmpDir, "project.yaml")
	writeFile(t, global, "mode: remote\napi:\n  base_url: http://global/api\n  timeout: 5s\nui:\n  default_filter: Planned\n")
	writeFile(t, project, "api:\n  base_url: http://project/api\n")

	cfg, err := LoadFrom(global, project)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Mode != ModeRemote {
		t.Errorf("Expected remote mode from global file, got %s", cfg.Mode)
	}
	if cfg.API.BaseURL != "http://project/api" {
		t.Errorf("Expected project base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Expected global timeout to survive, got %s", cfg.API.Timeout)
	}
	if cfg.UI.DefaultFilter != "Planned" {
		t.Errorf("Expected Planned filter, got %s", cfg.UI.DefaultFilter)
	}
	// untouched sections keep their defaults
	if cfg.Scheduler.Buffer != 64 {
		t.Errorf("Expected default scheduler buffer, got %d", cfg.Scheduler.Buffer)
	}
}

func TestLoadMissingFilesUseDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFrom(filepath.Join(tmpDir, "missing.yaml"), "")
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("Expected default mode, got %s", cfg.Mode)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, path, "api:\n  base_url: http://file/api\n")

	t.Setenv("TWODO_MODE", "remote")
	t.Setenv("TWODO_API_BASE_URL", "http://env/api")
	t.Setenv("TWODO_API_TIMEOUT", "2s")
	t.Setenv("TWODO_TELEMETRY_ENABLED", "false")
	t.Setenv("TWODO_UI_TIMEZONE", "UTC")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Mode != ModeRemote {
		t.Errorf("Expected remote mode, got %s", cfg.Mode)
	}
	if cfg.API.BaseURL != "http://env/api" {
		t.Errorf("Expected env base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 2*time.Second {
		t.Errorf("Expected 2s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry disabled by env")
	}

	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"mode":     "mode: cloud\n",
		"preset":   "categories:\n  preset: rainbow\n",
		"timezone": "ui:\n  timezone: Mars/Olympus\n",
		"level":    "log:\n  level: chatty\n",
		"timeout":  "api:\n  timeout: 0s\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, body)

			if _, err := LoadFrom(path); err == nil {
				t.Errorf("Expected error for invalid %s", name)
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "mode: [unterminated\n")

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

func TestYAMLShowsEffectiveConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Mode = ModeRemote

	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	if !strings.Contains(out, "mode: remote") {
		t.Errorf("Expected mode in output, got:\n%s", out)
	}
	if !strings.Contains(out, "base_url: http://localhost:5000/api") {
		t.Errorf("Expected base_url in output, got:\n%s", out)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandPath("~/x/y.db"); got != filepath.Join(home, "x", "y.db") {
		t.Errorf("Unexpected expansion %s", got)
	}
	if got := ExpandPath("/abs/y.db"); got != "/abs/y.db" {
		t.Errorf("Absolute path changed: %s", got)
	}
	if got := ExpandPath("~user/y.db"); got != "~user/y.db" {
		t.Errorf("Other-user path changed: %s", got)
	}
}

func TestConfigPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if GlobalDir() != filepath.Join(home, ".twodo") {
		t.Errorf("Unexpected global dir %s", GlobalDir())
	}
	if filepath.Base(GlobalConfigPath()) != "config.yaml" {
		t.Errorf("Unexpected global config path %s", GlobalConfigPath())
	}
	if !strings.HasSuffix(ProjectConfigPath(), filepath.Join(".twodo", "config.yaml")) {
		t.Errorf("Unexpected project config path %s", ProjectConfigPath())
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
