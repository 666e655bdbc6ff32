package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationPredicate evaluates a loaded Config and returns an error if invalid.
type ValidationPredicate func(*Config) error

// validatingLoader wraps a Loader to run additional validation predicates at load time.
// Commands use it to demand more of the configuration than loading alone does.
type validatingLoader struct {
	Loader
	predicates []ValidationPredicate
}

// NewValidatingLoader creates a loader that runs validation predicates after Load().
func NewValidatingLoader(inner Loader, predicates ...ValidationPredicate) *validatingLoader {
	return &validatingLoader{
		Loader:     inner,
		predicates: predicates,
	}
}

// Load delegates to inner loader, then runs validation predicates.
func (l *validatingLoader) Load(path string) (*Config, error) {
	cfg, err := l.Loader.Load(path)
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, fmt.Errorf("invalid config structure")
	}

	for _, predicate := range l.predicates {
		if err := predicate(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// InstallDirExists requires the host's plugin directory to be an existing directory.
func InstallDirExists(cfg *Config) error {
	dir := cfg.Host.ResolvePath(cfg.Host.InstallDir)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: host.install_dir '%s' does not exist", ErrInvalidValue, dir)
		}
		return fmt.Errorf("failed to stat host.install_dir '%s': %w", dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: host.install_dir '%s' is not a directory", ErrInvalidValue, dir)
	}

	return nil
}

// ResolvePath resolves a relative path against the host's working directory.
func (h HostSection) ResolvePath(path string) string {
	if filepath.IsAbs(path) || strings.TrimSpace(h.WorkDir) == "" {
		return path
	}
	return filepath.Join(h.WorkDir, path)
}
