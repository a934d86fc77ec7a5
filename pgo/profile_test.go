package pgo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTestProfile(t *testing.T, samples map[string]int64) string {
	t.Helper()
	data, err := json.Marshal(samples)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfileHotCold(t *testing.T) {
	path := writeTestProfile(t, map[string]int64{"hot_fn": 5000, "cold_fn": 0})

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if !p.IsHot("hot_fn") {
		t.Error("expected hot_fn to be hot")
	}
	if !p.IsCold("cold_fn") {
		t.Error("expected cold_fn to be cold")
	}
	if p.IsHot("cold_fn") {
		t.Error("expected cold_fn not to be hot")
	}
	if !p.IsCold("never_sampled") {
		t.Error("expected an unsampled function to be cold")
	}
}

func TestLoadProfileConcurrentCallersShareOneLoad(t *testing.T) {
	path := writeTestProfile(t, map[string]int64{"f": 42})

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Profile, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := LoadProfile(path)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = p
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("expected every caller to observe the same *Profile instance")
		}
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("expected an error for a missing profile file")
	}
}
