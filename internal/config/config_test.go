package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refmine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Point at an empty file so no refmine.yaml in the working directory
	// can leak into the test.
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.RequestsPerMinute != defaultRPM {
		t.Errorf("RequestsPerMinute = %d, want %d", cfg.RequestsPerMinute, defaultRPM)
	}
	if cfg.MaxPages != defaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, defaultMaxPages)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `db_path: corpus.db
requests_per_minute: 3
model: test-model
max_pages: 80
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "corpus.db" || cfg.RequestsPerMinute != 3 || cfg.Model != "test-model" || cfg.MaxPages != 80 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "db_path: from_file.db\n")
	t.Setenv("REFMINE_DB_PATH", "from_env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "from_env.db" {
		t.Errorf("DBPath = %q, want env to win over file", cfg.DBPath)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, content := range []string{
		"requests_per_minute: 0\n",
		"requests_per_minute: -5\n",
		"max_pages: 0\n",
	} {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("config %q accepted", content)
		}
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing explicit config file accepted")
	}
}
