package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/linkaudit/linkhealth-scanner/internal/cli"
)

func TestInitConfigWithError_NoFlags_UsesDefaults(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError("https://example.com/docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxPages() != 150 {
		t.Errorf("MaxPages = %d, want 150", cfg.MaxPages())
	}
	if cfg.MaxWorkers() != 5 {
		t.Errorf("MaxWorkers = %d, want 5", cfg.MaxWorkers())
	}
	if cfg.IncludeExternal() {
		t.Error("IncludeExternal = true, want false by default")
	}
	if !cfg.CheckOrphans() {
		t.Error("CheckOrphans = false, want true by default")
	}
}

func TestInitConfigWithError_FlagsOverrideDefaults(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetMaxPagesForTest(10)
	cmd.SetMaxDepthForTest(1)
	cmd.SetMaxWorkersForTest(2)
	cmd.SetIncludeExternalForTest(true)
	cmd.SetUserAgentForTest("test-agent/1.0")
	defer cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError("https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxPages() != 10 {
		t.Errorf("MaxPages = %d, want 10", cfg.MaxPages())
	}
	if cfg.MaxDepth() != 1 {
		t.Errorf("MaxDepth = %d, want 1", cfg.MaxDepth())
	}
	if cfg.MaxWorkers() != 2 {
		t.Errorf("MaxWorkers = %d, want 2", cfg.MaxWorkers())
	}
	if !cfg.IncludeExternal() {
		t.Error("IncludeExternal = false, want true")
	}
	if cfg.UserAgent() != "test-agent/1.0" {
		t.Errorf("UserAgent = %q, want test-agent/1.0", cfg.UserAgent())
	}
}

func TestInitConfigWithError_NoURLNoConfigFile_ReturnsError(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	_, err := cmd.InitConfigWithError("")
	if err == nil {
		t.Fatal("expected an error when neither a url nor --config-file is provided")
	}
}

func TestInitConfigWithError_InvalidURL_ReturnsError(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	_, err := cmd.InitConfigWithError("://not-a-url")
	if err == nil {
		t.Fatal("expected an error for an unparseable url")
	}
}

func TestInitConfigWithError_ConfigFileTakesPrecedenceOverURL(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	configData := `{"startUrl": "https://fromfile.example/", "maxPages": 42}`
	if err := os.WriteFile(configPath, []byte(configData), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	cmd.SetConfigFileForTest(configPath)

	cfg, err := cmd.InitConfigWithError("https://ignored.example/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StartURL().Host != "fromfile.example" {
		t.Errorf("StartURL host = %q, want fromfile.example", cfg.StartURL().Host)
	}
	if cfg.MaxPages() != 42 {
		t.Errorf("MaxPages = %d, want 42", cfg.MaxPages())
	}
}

func TestInitConfigWithError_TimeoutFlagApplied(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetTimeoutForTest(30 * time.Second)
	defer cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError("https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout())
	}
}
