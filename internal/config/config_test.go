package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.EmbedDimension != 384 {
		t.Errorf("EmbedDimension = %d, want 384", cfg.EmbedDimension)
	}
	if cfg.PauseToken != "stop" {
		t.Errorf("PauseToken = %q, want %q", cfg.PauseToken, "stop")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "llm_model: file-model\ndefault_project: nightmares\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ONEIRO_CONFIG", path)
	t.Setenv("ONEIRO_LLM_MODEL", "env-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMModel != "env-model" {
		t.Errorf("LLMModel = %q, want env override", cfg.LLMModel)
	}
	if cfg.DefaultProject != "nightmares" {
		t.Errorf("DefaultProject = %q, want file value", cfg.DefaultProject)
	}
}

func TestPauseTokens(t *testing.T) {
	cfg := defaults()
	got := cfg.PauseTokens()
	if len(got) != 2 || got[0] != "stop" || got[1] != "esc" {
		t.Errorf("PauseTokens() = %v, want [stop esc]", got)
	}

	t.Setenv("ONEIRO_PAUSE_ALIASES", "halt, pause")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got = cfg.PauseTokens()
	if len(got) != 3 || got[1] != "halt" || got[2] != "pause" {
		t.Errorf("PauseTokens() = %v, want [stop halt pause]", got)
	}
}

func TestSemanticIndexing(t *testing.T) {
	cfg := defaults()
	if !cfg.SemanticIndexing("anything") {
		t.Error("empty opt-in list should allow all projects")
	}

	cfg.SemanticProjects = []string{"dreams"}
	if !cfg.SemanticIndexing("dreams") {
		t.Error("opted-in project should be allowed")
	}
	if cfg.SemanticIndexing("work") {
		t.Error("non-opted project should be excluded")
	}
}

func TestInvalidDimension(t *testing.T) {
	t.Setenv("ONEIRO_EMBED_DIMENSION", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-positive dimension")
	}
}
