package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	_, err := Load("/nonexistent/path/lipp.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
	// Load with empty path uses default search (may use defaults if no config file)
	cfg, _ := Load("")
	if !cfg.Index.UseFMCD {
		t.Error("default use_fmcd: got false")
	}
	if !cfg.Index.Quiet {
		t.Error("default quiet: got false")
	}
	if cfg.Index.PendingTwoPoolSize != 1024 {
		t.Errorf("default pending_two_pool_size: got %d", cfg.Index.PendingTwoPoolSize)
	}
	if cfg.Index.BuildLRRemain != 0 {
		t.Errorf("default build_lr_remain: got %f", cfg.Index.BuildLRRemain)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
index:
  build_lr_remain: 0.1
  use_fmcd: false
  quiet: false
  pending_two_pool_size: 64
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.BuildLRRemain != 0.1 {
		t.Errorf("build_lr_remain: got %f", cfg.Index.BuildLRRemain)
	}
	if cfg.Index.UseFMCD {
		t.Error("use_fmcd: got true")
	}
	if cfg.Index.Quiet {
		t.Error("quiet: got true")
	}
	if cfg.Index.PendingTwoPoolSize != 64 {
		t.Errorf("pending_two_pool_size: got %d", cfg.Index.PendingTwoPoolSize)
	}
}

func TestApplyIndexDefaultsRejectsOutOfRangeRemain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
index:
  build_lr_remain: 0.9
  pending_two_pool_size: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.BuildLRRemain != 0 {
		t.Errorf("out-of-range build_lr_remain should fall back to 0: got %f", cfg.Index.BuildLRRemain)
	}
	if cfg.Index.PendingTwoPoolSize != 1024 {
		t.Errorf("zero pending_two_pool_size should fall back to default: got %d", cfg.Index.PendingTwoPoolSize)
	}
}
