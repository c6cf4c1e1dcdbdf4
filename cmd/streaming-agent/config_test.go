package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/config"
)

// config init writes configTemplate verbatim, so the template has to
// load and validate cleanly or first-run setup is broken.
func TestConfigTemplate_Loads(t *testing.T) {
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	cfg, err := config.NewLoader(config.NewValidator()).Load(path)
	if err != nil {
		t.Fatalf("template failed to load: %v", err)
	}

	if cfg.Database.Password != "hunter2" {
		t.Errorf("expected ${DB_PASSWORD} to resolve from the environment, got %q", cfg.Database.Password)
	}
	if cfg.LLM.SQLModel != "sqlcoder:7b" {
		t.Errorf("unexpected sql_model %q", cfg.LLM.SQLModel)
	}
	if got := cfg.LLM.ResolveClassifierModel(); got != "llama3.2" {
		t.Errorf("expected empty classifier_model to fall back to the conversation model, got %q", got)
	}
	if cfg.Index.TopK != 3 {
		t.Errorf("unexpected index.top_k %d", cfg.Index.TopK)
	}
	if !filepath.IsAbs(cfg.Index.Path) {
		t.Errorf("expected ~ in index.path to be expanded, got %q", cfg.Index.Path)
	}
	if cfg.SQL.MaxAttempts != 2 {
		t.Errorf("unexpected sql.max_attempts %d", cfg.SQL.MaxAttempts)
	}
}

// setupInitDirs points the init command at a temp home and restores the
// package globals afterwards.
func setupInitDirs(t *testing.T) string {
	t.Helper()

	savedHome := appHomeDir
	savedFile := appConfigFile
	savedForce := configInitForce
	t.Cleanup(func() {
		appHomeDir = savedHome
		appConfigFile = savedFile
		configInitForce = savedForce
	})

	appHomeDir = filepath.Join(t.TempDir(), ".streaming-agent")
	appConfigFile = filepath.Join(appHomeDir, "config.yaml")
	configInitForce = false
	return appConfigFile
}

func TestConfigInit_WritesTemplate(t *testing.T) {
	path := setupInitDirs(t)

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := runConfigInit(cmd, nil); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if string(data) != configTemplate {
		t.Error("expected the written file to match the template")
	}
	if !strings.Contains(out.String(), "Configuration written to") {
		t.Errorf("expected confirmation output, got %q", out.String())
	}
}

func TestConfigInit_RefusesExistingFile(t *testing.T) {
	setupInitDirs(t)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if err := runConfigInit(cmd, nil); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	err := runConfigInit(cmd, nil)
	if err == nil {
		t.Fatal("expected second init to refuse overwriting")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("expected the error to mention --force, got %q", err.Error())
	}

	configInitForce = true
	if err := runConfigInit(cmd, nil); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}
