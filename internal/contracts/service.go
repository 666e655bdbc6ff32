package contracts

import (
	"context"

	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// PackageService exposes the caller-facing package operations.
type PackageService interface {
	// HostVersion returns the version of the running host application.
	HostVersion(ctx context.Context) (string, error)

	// ListCompatibleVersions returns every release of the package at sourceURL compatible with the host,
	// best first. Nothing compatible is an empty result, not an error.
	ListCompatibleVersions(ctx context.Context, sourceURL string) ([]resolver.ResolvedVersion, error)

	// Install installs a package that is not yet present.
	Install(ctx context.Context, req domain.InstallRequest) (domain.InstallResult, error)

	// Update replaces an installed package.
	Update(ctx context.Context, req domain.UpdateRequest) (domain.UpdateResult, error)

	// CheckForUpdate reports whether a newer compatible release exists.
	CheckForUpdate(ctx context.Context, req domain.CheckRequest) (domain.CheckResult, error)

	// Links returns the linkage records of all installed packages.
	Links(ctx context.Context) ([]linkage.Record, error)
}
