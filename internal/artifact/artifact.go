// Package artifact downloads release archives from the hosting service.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/repository"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// tempPattern names downloaded archives inside the temporary directory.
const tempPattern = "gitplug-*.zip"

// Source exposes the archive endpoints of the hosting service.
type Source interface {
	TagArchiveURL(ref repository.Reference, tag string) (string, error)
	BranchArchiveURL(ref repository.Reference, branch string) (string, error)
	Download(ctx context.Context, archiveURL string) (io.ReadCloser, error)
}

// Fetcher downloads the archive of a release candidate.
// NewFetcher should be used to create instances of Fetcher.
type Fetcher struct {
	source Source
	logger hclog.Logger
}

// NewFetcher creates a Fetcher downloading through source.
func NewFetcher(logger hclog.Logger, source Source) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("archive source cannot be nil")
	}

	return &Fetcher{
		source: source,
		logger: logger.Named("artifact"),
	}, nil
}

// Fetch opens the archive stream for the candidate. Tags are fetched from the archive-by-tag endpoint,
// branches from the archive of the branch head. The caller must close the returned reader.
func (f *Fetcher) Fetch(ctx context.Context, ref repository.Reference, c resolver.Candidate) (io.ReadCloser, error) {
	archiveURL, err := f.archiveURL(ref, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at '%s': %w", errors.ErrDownloadFailed, ref.Path(), c.Reference, err)
	}

	f.logger.Debug("Downloading archive", "repo", ref.Path(), "reference", c.Reference, "kind", c.Kind, "url", archiveURL)

	body, err := f.source.Download(ctx, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at '%s': %w", errors.ErrDownloadFailed, ref.Path(), c.Reference, err)
	}

	return body, nil
}

// DownloadToTemp writes the candidate's archive to a new temporary file in dir (the system temp directory
// when empty). The returned cleanup removes the file and is always safe to call, including after an error.
// An empty archive fails with errors.ErrDownloadFailed.
func (f *Fetcher) DownloadToTemp(
	ctx context.Context,
	ref repository.Reference,
	c resolver.Candidate,
	dir string,
) (string, func(), error) {
	noop := func() {}

	body, err := f.Fetch(ctx, ref, c)
	if err != nil {
		return "", noop, err
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary archive: %w", err)
	}

	path := tmp.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			f.logger.Warn("Failed to remove temporary archive", "path", path, "error", err)
		}
	}

	n, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		cleanup()
		return "", noop, fmt.Errorf("%w: failed to write archive for '%s': %w", errors.ErrDownloadFailed, c.Reference, copyErr)
	case closeErr != nil:
		cleanup()
		return "", noop, fmt.Errorf("failed to close temporary archive: %w", closeErr)
	case n == 0:
		cleanup()
		return "", noop, fmt.Errorf("%w: archive for '%s' is empty", errors.ErrDownloadFailed, c.Reference)
	}

	f.logger.Debug("Archive downloaded", "reference", c.Reference, "path", path, "bytes", n)

	return path, cleanup, nil
}

func (f *Fetcher) archiveURL(ref repository.Reference, c resolver.Candidate) (string, error) {
	switch c.Kind {
	case resolver.KindTag:
		return f.source.TagArchiveURL(ref, c.Reference)
	case resolver.KindBranch:
		return f.source.BranchArchiveURL(ref, c.Reference)
	default:
		return "", fmt.Errorf("unknown reference kind '%s'", c.Kind)
	}
}
