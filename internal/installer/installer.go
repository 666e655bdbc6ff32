// Package installer extracts a downloaded release archive, derives the package identity from its manifest
// and places it under the install root.
//
// Archives are extracted into a staging directory inside the install root, so the extracted folder never
// collides with an installed package, and the staging directory is removed on every exit path.
// Replacing an existing package in update mode is a delete followed by a rename: a failure between the
// two leaves the package directory missing, and that state is logged with both paths.
package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/files"
	"github.com/kaws-dev/gitplug/internal/manifest"
	"github.com/kaws-dev/gitplug/internal/perms"
)

const stagingPattern = ".gitplug-staging-*"

// Mode selects how an existing package directory is treated.
type Mode int

const (
	// ModeFresh refuses to touch an existing package directory.
	ModeFresh Mode = iota

	// ModeUpdate replaces an existing package directory.
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeFresh:
		return "fresh"
	case ModeUpdate:
		return "update"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Identity is the package identity derived from an extracted archive, and where it was placed.
type Identity struct {
	// Name is the package name, taken from the manifest's implementation class or the descriptor.
	Name string `json:"name" yaml:"name"`

	// Version is the package's declared version, nil when neither file declares one.
	Version *string `json:"version,omitempty" yaml:"version,omitempty"`

	// Path is the directory the package was placed in.
	Path string `json:"path" yaml:"path"`
}

// Installer places release archives into an install root.
// NewInstaller should be used to create instances of Installer.
type Installer struct {
	classKey string
	logger   hclog.Logger
}

// NewInstaller creates an Installer.
func NewInstaller(logger hclog.Logger, opt ...Option) (*Installer, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Installer{
		classKey: opts.ClassKey,
		logger:   logger.Named("installer"),
	}, nil
}

// Install extracts the archive at archivePath and places the package it contains at installRoot/<name>.
//
// When expectedName is not empty the derived name must match it case-insensitively,
// and in ModeUpdate the package is placed under expectedName's spelling.
// In ModeFresh an existing target directory fails with errors.ErrAlreadyInstalled and is left untouched.
// In ModeUpdate an existing target directory is removed before the new package is moved into place.
func (i *Installer) Install(archivePath string, installRoot string, expectedName string, mode Mode) (Identity, error) {
	// The install root belongs to the host, so its existing permissions are left alone.
	if err := os.MkdirAll(installRoot, perms.RegularDir); err != nil {
		return Identity{}, fmt.Errorf("failed to prepare install root '%s': %w", installRoot, err)
	}

	staging, err := os.MkdirTemp(installRoot, stagingPattern)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create staging directory in '%s': %w", installRoot, err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			i.logger.Warn("Failed to remove staging directory", "path", staging, "error", err)
		}
	}()

	topFolder, err := extract(archivePath, staging)
	if err != nil {
		return Identity{}, err
	}

	extracted := filepath.Join(staging, topFolder)
	if !files.IsDir(extracted) {
		return Identity{}, fmt.Errorf("%w: top-level folder '%s' not found after extraction", errors.ErrExtractionIncomplete, topFolder)
	}

	id, err := i.identify(extracted)
	if err != nil {
		return Identity{}, err
	}

	expectedName = strings.TrimSpace(expectedName)
	if expectedName != "" && !strings.EqualFold(id.Name, expectedName) {
		return Identity{}, fmt.Errorf(
			"%w: archive contains '%s', expected '%s'",
			errors.ErrIdentityMismatch,
			id.Name,
			expectedName,
		)
	}

	dirName := id.Name
	if mode == ModeUpdate && expectedName != "" {
		dirName = expectedName
	}

	if dirName == "." || dirName == ".." || strings.ContainsAny(dirName, `/\`) {
		return Identity{}, fmt.Errorf("%w: package name '%s' is not a valid directory name", errors.ErrIdentityUnresolved, dirName)
	}
	target := filepath.Join(installRoot, dirName)

	if err := i.place(extracted, target, mode); err != nil {
		return Identity{}, err
	}

	id.Path = target

	i.logger.Info("Package placed", "name", id.Name, "path", target, "mode", mode)

	return id, nil
}

// identify derives the identity from the manifest's implementation class, falling back to the descriptor name.
func (i *Installer) identify(dir string) (Identity, error) {
	var id Identity
	var version string

	composerPath := filepath.Join(dir, manifest.ComposerFile)
	if c, err := manifest.ReadComposerFile(composerPath, i.classKey); err == nil {
		id.Name = manifest.ClassName(c.PluginClass)
		version = c.Version
	} else if !os.IsNotExist(err) {
		i.logger.Debug("Ignoring unreadable manifest", "path", composerPath, "error", err)
	}

	if id.Name == "" || version == "" {
		descriptorPath := filepath.Join(dir, manifest.DescriptorFile)
		if d, err := manifest.ReadDescriptorFile(descriptorPath); err == nil {
			if id.Name == "" {
				id.Name = d.Name
			}
			if version == "" {
				version = d.Version
			}
		} else if !os.IsNotExist(err) {
			i.logger.Debug("Ignoring unreadable descriptor", "path", descriptorPath, "error", err)
		}
	}

	if id.Name == "" {
		return Identity{}, fmt.Errorf(
			"%w: neither %s nor %s declares a package name",
			errors.ErrIdentityUnresolved,
			manifest.ComposerFile,
			manifest.DescriptorFile,
		)
	}

	if version != "" {
		id.Version = &version
	}

	return id, nil
}

func (i *Installer) place(extracted string, target string, mode Mode) error {
	if _, err := os.Lstat(target); err == nil {
		if mode != ModeUpdate {
			return fmt.Errorf("%w: '%s' already exists", errors.ErrAlreadyInstalled, target)
		}

		i.logger.Debug("Removing previous package", "path", target)
		if err := os.RemoveAll(target); err != nil {
			i.logger.Error(
				"Failed to remove previous package, package directory may be partially deleted",
				"path", target,
				"error", err,
			)
			return fmt.Errorf("failed to remove previous package at '%s': %w", target, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to inspect '%s': %w", target, err)
	}

	if err := os.Rename(extracted, target); err != nil {
		i.logger.Error(
			"Failed to move package into place, package directory is missing",
			"from", extracted,
			"to", target,
			"error", err,
		)
		return fmt.Errorf("failed to move package into '%s': %w", target, err)
	}

	if err := os.Chmod(target, perms.RegularDir); err != nil {
		i.logger.Warn("Failed to set package directory permissions", "path", target, "error", err)
	}

	return nil
}
