package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kaws-dev/gitplug/internal/cmd"
	"github.com/kaws-dev/gitplug/internal/config"
	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

type fakeLoader struct {
	cfg *config.Config
	err error
}

func (f *fakeLoader) Load(string) (*config.Config, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg != nil {
		return f.cfg, nil
	}
	cfg := config.DefaultConfig()
	cfg.Host.InstallDir = os.TempDir()
	return cfg, nil
}

type fakeInitializer struct {
	path string
	err  error
}

func (f *fakeInitializer) Init(path string) error {
	f.path = path
	return f.err
}

type fakeBuilder struct {
	svc          *fakeService
	err          error
	refreshCache bool
	closed       int
}

func (f *fakeBuilder) BuildService(_ *config.Config, refreshCache bool) (*cmd.Stack, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.refreshCache = refreshCache
	return &cmd.Stack{
		Service:  f.svc,
		Gatherer: prometheus.NewRegistry(),
		Store:    closerFunc(func() error { f.closed++; return nil }),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// fakeService records the last request it received and answers with canned results.
type fakeService struct {
	mu sync.Mutex

	versions []resolver.ResolvedVersion
	install  domain.InstallResult
	update   domain.UpdateResult
	check    domain.CheckResult
	links    []linkage.Record
	err      error

	sourceURL  string
	installReq domain.InstallRequest
	updateReq  domain.UpdateRequest
	checkReq   domain.CheckRequest
}

func (f *fakeService) HostVersion(context.Context) (string, error) {
	return "6.7.1", nil
}

func (f *fakeService) ListCompatibleVersions(_ context.Context, sourceURL string) ([]resolver.ResolvedVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sourceURL = sourceURL
	return f.versions, f.err
}

func (f *fakeService) Install(_ context.Context, req domain.InstallRequest) (domain.InstallResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installReq = req
	return f.install, f.err
}

func (f *fakeService) Update(_ context.Context, req domain.UpdateRequest) (domain.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateReq = req
	return f.update, f.err
}

func (f *fakeService) CheckForUpdate(_ context.Context, req domain.CheckRequest) (domain.CheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkReq = req
	return f.check, f.err
}

func (f *fakeService) Links(context.Context) ([]linkage.Record, error) {
	return f.links, f.err
}

var errUpstream = fmt.Errorf("upstream request failed: 500 Internal Server Error")

func ptr(s string) *string { return &s }
