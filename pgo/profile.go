// profile.go - PGO profile loading and querying (§6 "pgo_load_profile")
//
// The profile format is a flat JSON object mapping function name to a
// sample count, grounded on oisee-z80-optimizer's encoding/json-based
// search-result persistence (pkg/search writes its corpus the same way:
// one flat JSON document, no schema versioning).

package pgo

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Profile is the queried form of a loaded PGO profile: per-function
// sample counts plus the hot/cold thresholds used to classify them.
type Profile struct {
	samples       map[string]int64
	hotThreshold  int64
	coldThreshold int64
}

const (
	defaultHotThreshold  = 1000
	defaultColdThreshold = 1
)

var (
	loadGroup singleflight.Group
	cacheMu   sync.Mutex
	cache     = map[string]*Profile{}
)

// LoadProfile loads a profile from path, returning the same *Profile
// instance to every caller that requests the same path concurrently or
// sequentially (§6: "loaded once via pgo_load_profile(path)"). The
// singleflight.Group collapses concurrent loaders from different
// translation-unit goroutines onto a single disk read.
func LoadProfile(path string) (*Profile, error) {
	cacheMu.Lock()
	if p, ok := cache[path]; ok {
		cacheMu.Unlock()
		return p, nil
	}
	cacheMu.Unlock()

	v, err, _ := loadGroup.Do(path, func() (any, error) {
		return readProfile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("pgo: loading profile %q: %w", path, err)
	}
	p := v.(*Profile)

	cacheMu.Lock()
	if cached, ok := cache[path]; ok {
		p = cached
	} else {
		cache[path] = p
	}
	cacheMu.Unlock()
	return p, nil
}

func readProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples map[string]int64
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parsing profile JSON: %w", err)
	}
	return &Profile{samples: samples, hotThreshold: defaultHotThreshold, coldThreshold: defaultColdThreshold}, nil
}

// IsHot reports whether name's sample count meets the hot threshold
// (§6 "pgo_is_hot(name)").
func (p *Profile) IsHot(name string) bool {
	if p == nil {
		return false
	}
	return p.samples[name] >= p.hotThreshold
}

// IsCold reports whether name has a sample count at or below the cold
// threshold, including functions never sampled at all (§6
// "pgo_is_cold(name)").
func (p *Profile) IsCold(name string) bool {
	if p == nil {
		return true
	}
	return p.samples[name] <= p.coldThreshold
}
