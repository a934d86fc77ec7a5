package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compiler.yaml")
	if err := os.WriteFile(path, []byte("avx_level: 2\nopt_level: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.AVXLevel != 2 {
		t.Errorf("expected avx_level 2, got %d", opts.AVXLevel)
	}
	if opts.OptLevel != 3 {
		t.Errorf("expected opt_level 3, got %d", opts.OptLevel)
	}
	if opts.PGOUseFile != "" {
		t.Errorf("expected pgo_use_file to default empty, got %q", opts.PGOUseFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
