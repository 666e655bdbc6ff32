// Package manifest reads package manifests, both remotely at a reference on the hosting service
// and locally from an extracted archive.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/repository"
)

const (
	// ComposerFile is the manifest file name at the root of a package.
	ComposerFile = "composer.json"

	// DescriptorFile is the plugin descriptor consulted when the manifest does not name the package.
	DescriptorFile = "plugin.xml"

	DefaultPlatformPackage = "shopware/core"
	DefaultClassKey        = "shopware-plugin-class"
)

// FileSource reads a file at a reference of a remote repository.
type FileSource interface {
	RawFile(ctx context.Context, ref repository.Reference, reference string, path string) ([]byte, error)
}

// Manifest is the subset of a remote manifest used during resolution.
type Manifest struct {
	// Requirement is the declared platform requirement, nil when absent.
	Requirement *string

	// Version is the package's own declared version, nil when absent.
	Version *string

	// Name is the manifest's package name (e.g. "acme/widget").
	Name string

	// PluginClass is the fully qualified implementation class, empty when absent.
	PluginClass string
}

// Reader fetches manifests from the hosting service.
// NewReader should be used to create instances of Reader.
type Reader struct {
	source          FileSource
	platformPackage string
	classKey        string
	logger          hclog.Logger
}

// NewReader creates a Reader reading manifests through source.
func NewReader(logger hclog.Logger, source FileSource, opt ...Option) (*Reader, error) {
	if source == nil {
		return nil, fmt.Errorf("file source cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Reader{
		source:          source,
		platformPackage: opts.PlatformPackage,
		classKey:        opts.ClassKey,
		logger:          logger.Named("manifest"),
	}, nil
}

// FetchManifest reads the manifest at the given reference.
// Every failure wraps errors.ErrManifestUnavailable.
func (r *Reader) FetchManifest(ctx context.Context, ref repository.Reference, reference string) (Manifest, error) {
	data, err := r.source.RawFile(ctx, ref, reference, ComposerFile)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s at '%s': %w", errors.ErrManifestUnavailable, ref.Path(), reference, err)
	}

	doc, err := decodeComposer(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s at '%s': %w", errors.ErrManifestUnavailable, ref.Path(), reference, err)
	}

	m := Manifest{
		Name:        doc.Name,
		Version:     optional(doc.Version),
		Requirement: optional(doc.Require[r.platformPackage]),
		PluginClass: doc.pluginClass(r.classKey),
	}

	r.logger.Trace("Read manifest", "repo", ref.Path(), "reference", reference, "requirement", deref(m.Requirement))

	return m, nil
}

// PlatformPackage is the package whose requirement is used as the compatibility constraint.
func (r *Reader) PlatformPackage() string {
	return r.platformPackage
}

type composerDoc struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Require map[string]string `json:"require"`
	Extra   map[string]any    `json:"extra"`
}

func decodeComposer(data []byte) (composerDoc, error) {
	var doc composerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return composerDoc{}, fmt.Errorf("failed to decode %s: %w", ComposerFile, err)
	}
	return doc, nil
}

func (d composerDoc) pluginClass(key string) string {
	v, ok := d.Extra[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
