package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kaws-dev/gitplug/internal/artifact"
	"github.com/kaws-dev/gitplug/internal/cache"
	"github.com/kaws-dev/gitplug/internal/config"
	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/github"
	"github.com/kaws-dev/gitplug/internal/host"
	"github.com/kaws-dev/gitplug/internal/installer"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/manifest"
	"github.com/kaws-dev/gitplug/internal/resolver"
	"github.com/kaws-dev/gitplug/internal/updater"
)

// ServiceBuilder wires a package service from configuration.
type ServiceBuilder interface {
	BuildService(cfg *config.Config, refreshCache bool) (*Stack, error)
}

// Stack is a wired package service together with the resources backing it.
// Close must be called once the service is no longer used.
type Stack struct {
	// Service runs the package operations.
	Service contracts.PackageService

	// Gatherer exposes the metrics recorded by Service.
	Gatherer prometheus.Gatherer

	// Store holds the linkage records. It may be nil when Service is backed by something else.
	Store io.Closer
}

// Close releases the linkage store.
func (s *Stack) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// BuildService wires the hosting client, manifest reader, resolver, installer, linkage store and host
// integration described by cfg into a package service.
func (c *BaseCmd) BuildService(cfg *config.Config, refreshCache bool) (*Stack, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	return buildStack(logger, cfg, refreshCache)
}

func buildStack(logger hclog.Logger, cfg *config.Config, refreshCache bool) (*Stack, error) {
	cacheOpts := []cache.Option{
		cache.WithCaching(cfg.Cache.CachingEnabled()),
		cache.WithTTL(time.Duration(cfg.Cache.TTL)),
		cache.WithRefreshCache(refreshCache),
	}
	if strings.TrimSpace(cfg.Cache.Dir) != "" {
		cacheOpts = append(cacheOpts, cache.WithDirectory(cfg.Cache.Dir))
	}
	manifestCache, err := cache.NewCache(logger, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest cache: %w", err)
	}

	client, err := github.NewClient(
		logger,
		github.WithAPIURL(cfg.Hosting.APIURL),
		github.WithRawURL(cfg.Hosting.RawURL),
		github.WithWebURL(cfg.Hosting.WebURL),
		github.WithUserAgent(cfg.Hosting.UserAgent),
		github.WithTimeout(time.Duration(cfg.Hosting.Timeout)),
		github.WithCache(manifestCache),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hosting client: %w", err)
	}

	reader, err := manifest.NewReader(
		logger,
		client,
		manifest.WithPlatformPackage(cfg.Host.PlatformPackage),
		manifest.WithClassKey(cfg.Host.IdentityClassKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest reader: %w", err)
	}

	res, err := resolver.NewResolver(logger, client, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	fetcher, err := artifact.NewFetcher(logger, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive fetcher: %w", err)
	}

	inst, err := installer.NewInstaller(logger, installer.WithClassKey(cfg.Host.IdentityClassKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create installer: %w", err)
	}

	store, err := linkage.NewSQLiteStore(hostPath(cfg.Host, cfg.Store.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open linkage store: %w", err)
	}

	stack, err := wireService(logger, cfg, res, fetcher, inst, client, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return stack, nil
}

func wireService(
	logger hclog.Logger,
	cfg *config.Config,
	res *resolver.Resolver,
	fetcher *artifact.Fetcher,
	inst *installer.Installer,
	client *github.Client,
	store *linkage.SQLiteStore,
) (*Stack, error) {
	runner, err := host.NewCommandRunner(
		logger,
		host.WithWorkDir(cfg.Host.WorkDir),
		host.WithRefreshCommand(cfg.Host.RefreshCommand),
		host.WithActivateCommand(cfg.Host.ActivateCommand),
		host.WithCacheClearCommand(cfg.Host.CacheClearCommand),
		host.WithCommandTimeout(time.Duration(cfg.Host.CommandTimeout)),
		host.WithRecorder(store),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create host command runner: %w", err)
	}

	deps, err := updater.NewDependencies(
		logger,
		res,
		fetcher,
		inst,
		client,
		store,
		store,
		runner,
		runner,
		hostVersionProvider(cfg.Host),
		hostPath(cfg.Host, cfg.Host.InstallDir),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to wire package service: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := updater.NewService(deps, updater.WithMetrics(updater.NewMetrics(reg)))
	if err != nil {
		return nil, err
	}

	return &Stack{
		Service:  svc,
		Gatherer: reg,
		Store:    store,
	}, nil
}

// hostVersionProvider prefers a pinned version over reading the host's lock file.
func hostVersionProvider(h config.HostSection) host.VersionProvider {
	if v := strings.TrimSpace(h.Version); v != "" {
		return host.StaticVersion(v)
	}

	return host.ComposerLockVersion{
		Path:    hostPath(h, h.ComposerLock),
		Package: h.PlatformPackage,
	}
}

func hostPath(h config.HostSection, path string) string {
	return h.ResolvePath(path)
}
