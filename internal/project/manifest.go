// Package project loads the optional js2py.toml manifest that seeds the
// converter's configuration. CLI flags override manifest values.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file looked up when resolving a project manifest.
const ManifestName = "js2py.toml"

// Config is the parsed manifest.
type Config struct {
	Package PackageConfig `toml:"package"`
	Convert ConvertConfig `toml:"convert"`
}

// PackageConfig names the project.
type PackageConfig struct {
	Name string `toml:"name"`
}

// ConvertConfig carries converter defaults.
type ConvertConfig struct {
	OutDir   string `toml:"out_dir"`
	Runtime  string `toml:"runtime"` // include|skip
	Strict   bool   `toml:"strict"`
	Module   bool   `toml:"module"`
	CacheDir string `toml:"cache_dir"`
}

// Manifest couples a parsed config with the directory it was found in.
type Manifest struct {
	Root   string
	Config Config
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	return &Manifest{Root: filepath.Dir(path), Config: cfg}, nil
}

// Find walks upward from dir looking for the manifest. The second result
// is false when no manifest exists up to the filesystem root.
func Find(dir string) (*Manifest, bool, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, err
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			m, err := Load(candidate)
			if err != nil {
				return nil, false, err
			}
			return m, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, false, nil
		}
		abs = parent
	}
}

func validate(cfg *Config) error {
	switch cfg.Convert.Runtime {
	case "", "include", "skip":
	default:
		return fmt.Errorf("convert.runtime must be \"include\" or \"skip\", got %q", cfg.Convert.Runtime)
	}
	return nil
}
