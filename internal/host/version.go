package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/version"
)

// StaticVersion is a fixed host version, typically taken from configuration.
type StaticVersion string

// HostVersion implements VersionProvider.
func (v StaticVersion) HostVersion(context.Context) (string, error) {
	s := version.Normalize(string(v))
	if s == "" {
		return "", fmt.Errorf("%w: host version is not configured", errors.ErrInvalidInput)
	}
	return s, nil
}

// ComposerLockVersion reads the host version from the installed platform package in a composer.lock file.
// The file is read on every call so host upgrades are picked up without a restart.
type ComposerLockVersion struct {
	// Path of the composer.lock file.
	Path string

	// Package is the platform package name, e.g. "shopware/core".
	Package string
}

type composerLock struct {
	Packages []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"packages"`
}

// HostVersion implements VersionProvider.
func (c ComposerLockVersion) HostVersion(context.Context) (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read host lock file: %w", err)
	}

	var lock composerLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return "", fmt.Errorf("failed to decode host lock file '%s': %w", c.Path, err)
	}

	for _, p := range lock.Packages {
		if strings.EqualFold(p.Name, c.Package) {
			v := version.Normalize(p.Version)
			if v == "" {
				break
			}
			return v, nil
		}
	}

	return "", fmt.Errorf("package '%s' not found in '%s'", c.Package, c.Path)
}
