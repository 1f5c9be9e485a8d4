// Package config holds process-wide switches and the optional project
// configuration file, mirroring the teacher's internal/config package:
// a handful of exported globals plus the optional sidecar loader. The
// reserved-word table lives in internal/token, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IsTestMode normalizes fresh type-variable display (e.g. "a?" instead
// of "a37") for deterministic golden output. It defaults to false, and
// no code in this module sets it.
var IsTestMode = false

// SearchConfig is the optional `expresso.yaml` sidecar the CLI driver
// reads from the directory containing the entry file. It only affects
// import resolution (library search order) and diagnostic strictness;
// it is never consulted by the core parser/inferencer themselves, which
// always take libDirs and an initial TypeEnv as explicit arguments.
type SearchConfig struct {
	LibDirs []string `yaml:"libDirs"`
	Strict  bool     `yaml:"strict"`
}

// LoadSearchConfig reads and decodes path. A missing file yields the
// zero SearchConfig and no error — the sidecar is optional.
func LoadSearchConfig(path string) (SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SearchConfig{}, nil
		}
		return SearchConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg SearchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SearchConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
