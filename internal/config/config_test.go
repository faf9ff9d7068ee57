package config

import (
	"os"
	"path/filepath"
	"testing"
)

func mockEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Mount.DefaultDatabase != "" {
		t.Errorf("DefaultConfig() Mount.DefaultDatabase = %q, want empty", cfg.Mount.DefaultDatabase)
	}
	if cfg.Mount.AllowRoot != false {
		t.Error("DefaultConfig() Mount.AllowRoot should be false")
	}
	if cfg.Mount.AutoUnmount != false {
		t.Error("DefaultConfig() Mount.AutoUnmount should be false")
	}
	if cfg.Log.Debug != false {
		t.Error("DefaultConfig() Log.Debug should be false")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "sqlite-fuse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	configContent := `
mount:
  default_database: /home/user/notes.db
  allow_root: true
owner:
  uid: 1000
  gid: 1000
log:
  debug: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{"XDG_CONFIG_HOME": tmpDir})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if cfg.Mount.DefaultDatabase != "/home/user/notes.db" {
		t.Errorf("LoadWithEnv() Mount.DefaultDatabase = %q, want %q", cfg.Mount.DefaultDatabase, "/home/user/notes.db")
	}
	if cfg.Mount.AllowRoot != true {
		t.Error("LoadWithEnv() Mount.AllowRoot should be true")
	}
	if cfg.Owner.UID != 1000 {
		t.Errorf("LoadWithEnv() Owner.UID = %d, want 1000", cfg.Owner.UID)
	}
	if cfg.Log.Debug != true {
		t.Error("LoadWithEnv() Log.Debug should be true")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "sqlite-fuse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("log:\n  debug: false\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME":   tmpDir,
		"SQLITE_FUSE_DEBUG": "1",
	})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if !cfg.Log.Debug {
		t.Error("LoadWithEnv() Log.Debug should be true from env override")
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	env := mockEnv(map[string]string{"XDG_CONFIG_HOME": tmpDir})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}
	if cfg.Mount.AllowRoot != false {
		t.Error("LoadWithEnv() without file should use default AllowRoot=false")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "sqlite-fuse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	invalidContent := `
mount: [this is invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{"XDG_CONFIG_HOME": tmpDir})

	_, err := LoadWithEnv(env)
	if err == nil {
		t.Error("LoadWithEnv() with invalid YAML should return error")
	}
}

func TestGetConfigPathXDG(t *testing.T) {
	t.Parallel()
	tmpDir := "/custom/config/path"

	env := mockEnv(map[string]string{"XDG_CONFIG_HOME": tmpDir})

	path := getConfigPathWithEnv(env)
	expected := filepath.Join(tmpDir, "sqlite-fuse", "config.yaml")
	if path != expected {
		t.Errorf("getConfigPathWithEnv() = %q, want %q", path, expected)
	}
}

func TestGetConfigPathFallback(t *testing.T) {
	t.Parallel()
	env := mockEnv(map[string]string{})

	path := getConfigPathWithEnv(env)
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "sqlite-fuse", "config.yaml")
	if path != expected {
		t.Errorf("getConfigPathWithEnv() = %q, want %q", path, expected)
	}
}
