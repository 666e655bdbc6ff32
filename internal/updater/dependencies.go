package updater

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/github"
	"github.com/kaws-dev/gitplug/internal/host"
	"github.com/kaws-dev/gitplug/internal/installer"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/repository"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// VersionResolver selects compatible releases of a repository.
type VersionResolver interface {
	ResolveLatest(ctx context.Context, ref repository.Reference, target string) (resolver.Candidate, error)
	ResolveAll(ctx context.Context, ref repository.Reference, target string) ([]resolver.ResolvedVersion, error)
}

// ArchiveDownloader stores the archive of a candidate in a temporary file.
type ArchiveDownloader interface {
	DownloadToTemp(ctx context.Context, ref repository.Reference, c resolver.Candidate, dir string) (string, func(), error)
}

// PackageInstaller places an archive's package into the install root.
type PackageInstaller interface {
	Install(archivePath string, installRoot string, expectedName string, mode installer.Mode) (installer.Identity, error)
}

// CommitReader reads commit information from the hosting service.
type CommitReader interface {
	Commit(ctx context.Context, ref repository.Reference, reference string) (github.Commit, error)
	AheadBy(ctx context.Context, ref repository.Reference, base string, head string) (int, error)
}

// Dependencies contains the required collaborators of Service.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for install, update and check operations.
	Logger hclog.Logger

	Resolver   VersionResolver
	Downloader ArchiveDownloader
	Installer  PackageInstaller
	Commits    CommitReader

	// Links persists where each installed package came from.
	Links linkage.Store

	// Registry maps package names to the identifiers linkage records are keyed by.
	Registry host.Registry

	Registrar   host.Registrar
	Invalidator host.CacheInvalidator
	HostVersion host.VersionProvider

	// InstallRoot is the directory packages are placed in.
	InstallRoot string
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	res VersionResolver,
	downloader ArchiveDownloader,
	inst PackageInstaller,
	commits CommitReader,
	links linkage.Store,
	registry host.Registry,
	registrar host.Registrar,
	invalidator host.CacheInvalidator,
	hostVersion host.VersionProvider,
	installRoot string,
) (Dependencies, error) {
	deps := Dependencies{
		Logger:      logger,
		Resolver:    res,
		Downloader:  downloader,
		Installer:   inst,
		Commits:     commits,
		Links:       links,
		Registry:    registry,
		Registrar:   registrar,
		Invalidator: invalidator,
		HostVersion: hostVersion,
		InstallRoot: installRoot,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided.
func (d Dependencies) Validate() error {
	required := []struct {
		name  string
		value any
	}{
		{"logger", d.Logger},
		{"resolver", d.Resolver},
		{"downloader", d.Downloader},
		{"installer", d.Installer},
		{"commit reader", d.Commits},
		{"linkage store", d.Links},
		{"registry", d.Registry},
		{"registrar", d.Registrar},
		{"cache invalidator", d.Invalidator},
		{"host version provider", d.HostVersion},
	}
	for _, r := range required {
		if isNil(r.value) {
			return fmt.Errorf("%s cannot be nil", r.name)
		}
	}

	if strings.TrimSpace(d.InstallRoot) == "" {
		return fmt.Errorf("install root cannot be empty")
	}

	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
