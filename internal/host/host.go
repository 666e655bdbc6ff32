// Package host holds the collaborators gitplug needs from the host application: its running version,
// registration and activation of a placed package, cache invalidation, and the package registry.
package host

import (
	"context"
)

// Package is a package that was just placed into the install root.
type Package struct {
	Name    string
	Version *string
	Path    string
}

// VersionProvider reports the version of the running host application.
type VersionProvider interface {
	HostVersion(ctx context.Context) (string, error)
}

// Registrar makes the host application aware of a placed package and activates it.
type Registrar interface {
	Register(ctx context.Context, pkg Package) error
}

// CacheInvalidator clears the host application's caches.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// Registry maps a package name to the host's identifier for it.
type Registry interface {
	LookupID(ctx context.Context, name string) (string, error)
}

// PackageRecorder stores a placed package in the registry and returns its identifier.
type PackageRecorder interface {
	RecordPackage(ctx context.Context, name string, version *string, path string) (string, error)
}
