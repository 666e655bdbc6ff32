// Package updater implements the caller-facing package operations: listing compatible versions,
// installing, updating and checking for updates.
package updater

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/host"
	"github.com/kaws-dev/gitplug/internal/installer"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/repository"
	"github.com/kaws-dev/gitplug/internal/resolver"
	"github.com/kaws-dev/gitplug/internal/version"
)

const shortSHALength = 7

var _ contracts.PackageService = (*Service)(nil)

// Service runs the install, update and check pipelines.
// NewService should be used to create instances of Service.
type Service struct {
	logger      hclog.Logger
	resolver    VersionResolver
	downloader  ArchiveDownloader
	installer   PackageInstaller
	commits     CommitReader
	links       linkage.Store
	registry    host.Registry
	registrar   host.Registrar
	invalidator host.CacheInvalidator
	hostVersion host.VersionProvider
	installRoot string
	tempDir     string
	metrics     *Metrics
}

// NewService creates a Service from validated dependencies.
func NewService(deps Dependencies, opt ...Option) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Service{
		logger:      deps.Logger.Named("updater"),
		resolver:    deps.Resolver,
		downloader:  deps.Downloader,
		installer:   deps.Installer,
		commits:     deps.Commits,
		links:       deps.Links,
		registry:    deps.Registry,
		registrar:   deps.Registrar,
		invalidator: deps.Invalidator,
		hostVersion: deps.HostVersion,
		installRoot: deps.InstallRoot,
		tempDir:     opts.TempDir,
		metrics:     opts.Metrics,
	}, nil
}

// HostVersion returns the version of the running host application.
func (s *Service) HostVersion(ctx context.Context) (string, error) {
	v, err := s.hostVersion.HostVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to determine host version: %w", err)
	}
	return v, nil
}

// ListCompatibleVersions returns every release of the repository at sourceURL compatible with the host.
func (s *Service) ListCompatibleVersions(ctx context.Context, sourceURL string) (_ []resolver.ResolvedVersion, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(operationVersions, start, err) }()

	ref, err := repository.Parse(sourceURL)
	if err != nil {
		return nil, err
	}

	target, err := s.HostVersion(ctx)
	if err != nil {
		return nil, err
	}

	return s.resolver.ResolveAll(ctx, ref, target)
}

// Install downloads the requested release and places it as a new package.
// An empty req.Version installs the latest compatible release.
func (s *Service) Install(ctx context.Context, req domain.InstallRequest) (res domain.InstallResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(operationInstall, start, err) }()

	ref, err := repository.Parse(req.SourceURL)
	if err != nil {
		return domain.InstallResult{}, err
	}

	c, display, err := s.candidate(ctx, ref, req.Version)
	if err != nil {
		return domain.InstallResult{}, err
	}

	id, err := s.deliver(ctx, ref, c, "", installer.ModeFresh)
	if err != nil {
		return domain.InstallResult{}, err
	}

	return domain.InstallResult{
		PackageName:        id.Name,
		InstalledReference: c.Reference,
		DisplayVersion:     display,
		PackageVersion:     packageVersion(id, c),
	}, nil
}

// Update downloads the requested release and replaces the installed package req.PackageName with it.
// An empty req.Version updates to the latest compatible release.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (res domain.UpdateResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(operationUpdate, start, err) }()

	ref, err := repository.Parse(req.SourceURL)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	name := strings.TrimSpace(req.PackageName)
	if name == "" {
		return domain.UpdateResult{}, fmt.Errorf("%w: package name is required", errors.ErrInvalidInput)
	}

	c, _, err := s.candidate(ctx, ref, req.Version)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	id, err := s.deliver(ctx, ref, c, name, installer.ModeUpdate)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	return domain.UpdateResult{
		Installed:          true,
		PackageName:        name,
		InstalledReference: c.Reference,
		PackageVersion:     packageVersion(id, c),
	}, nil
}

// CheckForUpdate resolves the latest compatible release and compares it with the installed one.
// Branches are compared by head commit, tags by version. Nothing compatible is reported as no update.
func (s *Service) CheckForUpdate(ctx context.Context, req domain.CheckRequest) (res domain.CheckResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(operationCheck, start, err) }()

	ref, err := repository.Parse(req.SourceURL)
	if err != nil {
		return domain.CheckResult{}, err
	}

	target, err := s.HostVersion(ctx)
	if err != nil {
		return domain.CheckResult{}, err
	}

	versions, err := s.resolver.ResolveAll(ctx, ref, target)
	if err != nil {
		return domain.CheckResult{}, err
	}

	var latest resolver.Candidate
	if len(versions) > 0 {
		latest = versions[0].Candidate
	} else {
		// Tells a hard branch listing failure apart from nothing compatible.
		latest, err = s.resolver.ResolveLatest(ctx, ref, target)
		if stdErrors.Is(err, errors.ErrNoCompatibleVersion) {
			s.logger.Info("No compatible version", "repo", ref.Path(), "target", target, "error", err)
			return domain.CheckResult{Versions: []resolver.ResolvedVersion{}}, nil
		}
		if err != nil {
			return domain.CheckResult{}, err
		}
	}

	res = domain.CheckResult{
		LatestVersion: latest.Reference,
		Versions:      versions,
	}

	installedRef := strings.TrimSpace(req.InstalledReference)
	current := strings.TrimSpace(req.CurrentVersion)

	switch {
	case latest.Kind == resolver.KindBranch && installedRef != "":
		detail := s.compareBranches(ctx, ref, installedRef, latest.Reference)
		res.UpdateDetail = &detail
		res.UpdateAvailable = detail.HasUpdate
	case latest.Kind == resolver.KindTag && current != "":
		res.UpdateAvailable = version.Compare(current, latest.Reference) < 0
	}

	return res, nil
}

// Links returns the linkage records of all installed packages.
func (s *Service) Links(ctx context.Context) ([]linkage.Record, error) {
	return s.links.List(ctx)
}

// candidate turns a requested version into a candidate. An empty request resolves the latest
// compatible release, anything else is read as a display label or a plain reference.
func (s *Service) candidate(ctx context.Context, ref repository.Reference, requested string) (resolver.Candidate, string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		target, err := s.HostVersion(ctx)
		if err != nil {
			return resolver.Candidate{}, "", err
		}

		c, err := s.resolver.ResolveLatest(ctx, ref, target)
		if err != nil {
			return resolver.Candidate{}, "", err
		}
		return c, resolver.Label(c), nil
	}

	reference := resolver.ParseLabel(requested)
	return resolver.Candidate{Reference: reference, Kind: resolver.KindOf(reference)}, requested, nil
}

// deliver downloads and places the candidate, then hands the package to the host and records its linkage.
// Failures after placement are logged and do not fail the operation.
func (s *Service) deliver(
	ctx context.Context,
	ref repository.Reference,
	c resolver.Candidate,
	expectedName string,
	mode installer.Mode,
) (installer.Identity, error) {
	archive, cleanup, err := s.downloader.DownloadToTemp(ctx, ref, c, s.tempDir)
	defer cleanup()
	if err != nil {
		return installer.Identity{}, err
	}

	id, err := s.installer.Install(archive, s.installRoot, expectedName, mode)
	if err != nil {
		return installer.Identity{}, err
	}
	s.metrics.placed(mode.String(), string(c.Kind))

	s.logger.Info("Package delivered", "repo", ref.Path(), "reference", c.Reference, "name", id.Name, "mode", mode)

	pkg := host.Package{Name: id.Name, Version: id.Version, Path: id.Path}
	if err := s.registrar.Register(ctx, pkg); err != nil {
		s.logger.Error("Failed to register package with host", "name", id.Name, "error", err)
	}
	if err := s.invalidator.InvalidateCache(ctx); err != nil {
		s.logger.Error("Failed to invalidate host cache", "error", err)
	}

	s.recordLinkage(ctx, ref, c.Reference, id)

	return id, nil
}

func (s *Service) recordLinkage(ctx context.Context, ref repository.Reference, reference string, id installer.Identity) {
	var commit *string
	if head, err := s.commits.Commit(ctx, ref, reference); err != nil {
		s.logger.Warn("Failed to read installed commit", "repo", ref.Path(), "reference", reference, "error", err)
	} else if head.SHA != "" {
		commit = &head.SHA
	}

	packageID, err := s.registry.LookupID(ctx, id.Name)
	if err != nil {
		s.logger.Error("Linkage not recorded, package unknown to host", "name", id.Name, "error", err)
		return
	}

	record, err := s.links.Upsert(ctx, linkage.UpsertParams{
		PackageID:          packageID,
		SourceURL:          ref.String(),
		InstalledReference: reference,
		InstalledCommit:    commit,
		PackageVersion:     id.Version,
	})
	if err != nil {
		s.logger.Error("Linkage not recorded", "name", id.Name, "error", err)
		return
	}

	s.logger.Debug("Linkage recorded", "name", id.Name, "id", record.ID, "reference", reference)
}

// compareBranches compares the head commits of the installed and the latest branch.
// Failing to read either head is reported in the result rather than returned.
func (s *Service) compareBranches(ctx context.Context, ref repository.Reference, installed string, latest string) domain.BranchUpdate {
	installedHead, err := s.commits.Commit(ctx, ref, installed)
	if err != nil {
		return domain.BranchUpdate{Error: fmt.Sprintf("branch update check failed: %v", err)}
	}
	latestHead, err := s.commits.Commit(ctx, ref, latest)
	if err != nil {
		return domain.BranchUpdate{Error: fmt.Sprintf("branch update check failed: %v", err)}
	}
	if installedHead.SHA == "" || latestHead.SHA == "" {
		return domain.BranchUpdate{Error: "commit data could not be read"}
	}

	detail := domain.BranchUpdate{
		HasUpdate:       installedHead.SHA != latestHead.SHA,
		InstalledCommit: shortSHA(installedHead.SHA),
		LatestCommit:    shortSHA(latestHead.SHA),
		InstalledDate:   installedHead.Date,
		LatestDate:      latestHead.Date,
	}

	if detail.HasUpdate {
		behind, err := s.commits.AheadBy(ctx, ref, installedHead.SHA, latestHead.SHA)
		if err != nil {
			s.logger.Warn("Failed to count commits behind", "repo", ref.Path(), "error", err)
			behind = 0
		}
		detail.CommitsBehind = behind
	}

	return detail
}

func packageVersion(id installer.Identity, c resolver.Candidate) string {
	if id.Version != nil && *id.Version != "" {
		return *id.Version
	}
	return c.Reference
}

func shortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}
