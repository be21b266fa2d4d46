package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Setenv("AZULEJO_DATA", "")
	cfg := Default()
	if cfg.DataDir != "./data" || cfg.K != 6 {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Setenv("AZULEJO_DATA", "/srv/azulejo")
	if cfg := Default(); cfg.DataDir != "/srv/azulejo" {
		t.Errorf("env data dir = %q", cfg.DataDir)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("AZULEJO_DATA", "")
	path := filepath.Join(t.TempDir(), "azulejo.toml")
	content := `
identity = 0.87
k = 4
rmer = true
preferences = ["genomeB", "genomeA"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Identity != 0.87 || cfg.K != 4 || !cfg.Rmer {
		t.Errorf("loaded = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Preferences, []string{"genomeB", "genomeA"}) {
		t.Errorf("preferences = %v", cfg.Preferences)
	}
	// Values absent from the file keep their defaults.
	if cfg.DataDir != "./data" || cfg.DBPath != "db/gene_table.db" {
		t.Errorf("defaults not kept: %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestResolveDB(t *testing.T) {
	cfg := Config{DataDir: "/srv/azulejo", DBPath: "db/gene_table.db"}
	if got := cfg.ResolveDB(); got != "/srv/azulejo/db/gene_table.db" {
		t.Errorf("relative path = %q", got)
	}
	cfg.DBPath = "/var/lib/azulejo.db"
	if got := cfg.ResolveDB(); got != "/var/lib/azulejo.db" {
		t.Errorf("absolute path = %q", got)
	}
}
