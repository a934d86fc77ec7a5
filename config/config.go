// config.go - compiler_options (§6), loadable from YAML
//
// Grounded on raymyers-ralph-cc-go's use of gopkg.in/yaml.v3 for its
// compiler driver's on-disk configuration.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is compiler_options (§6): "a global compiler_options carries
// avx_level (0, 1 AVX, 2 AVX2), pgo_use_file, and the requested opt_level".
type Options struct {
	AVXLevel   int    `yaml:"avx_level"`
	PGOUseFile string `yaml:"pgo_use_file"`
	OptLevel   int    `yaml:"opt_level"`
}

// Default returns the options a fresh invocation starts from before any
// YAML file or flag override is applied.
func Default() Options {
	return Options{AVXLevel: 0, OptLevel: 1}
}

// Load reads Options from a YAML file at path, starting from Default()
// so a partial file only overrides the fields it mentions.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("config: reading %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return opts, nil
}
