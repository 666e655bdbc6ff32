package artifact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/github"
	"github.com/kaws-dev/gitplug/internal/github/githubtest"
	"github.com/kaws-dev/gitplug/internal/repository"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

var widget = repository.Reference{Host: "github.com", Owner: "acme", Name: "widget"}

func newTestFetcher(t *testing.T, srv *githubtest.Server) *Fetcher {
	t.Helper()

	client, err := github.NewClient(hclog.NewNullLogger(),
		github.WithAPIURL(srv.APIURL()),
		github.WithRawURL(srv.RawURL()),
		github.WithWebURL(srv.WebURL()),
	)
	require.NoError(t, err)

	f, err := NewFetcher(hclog.NewNullLogger(), client)
	require.NoError(t, err)

	return f
}

func entries(t *testing.T, dir string) []string {
	t.Helper()

	des, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Archives: map[string][]byte{
			"v1.2.0": []byte("tag-archive"),
			"6.7":    []byte("branch-archive"),
		},
	})
	f := newTestFetcher(t, srv)

	tests := []struct {
		name      string
		candidate resolver.Candidate
		want      string
		path      string
	}{
		{
			name:      "tag",
			candidate: resolver.Candidate{Reference: "v1.2.0", Kind: resolver.KindTag},
			want:      "tag-archive",
			path:      "/web/acme/widget/zipball/v1.2.0",
		},
		{
			name:      "branch",
			candidate: resolver.Candidate{Reference: "6.7", Kind: resolver.KindBranch},
			want:      "branch-archive",
			path:      "/web/acme/widget/archive/refs/heads/6.7.zip",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			body, err := f.Fetch(context.Background(), widget, tc.candidate)
			require.NoError(t, err)
			defer func() { _ = body.Close() }()

			data, err := io.ReadAll(body)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(data))
			require.Contains(t, srv.Requests(), tc.path)
		})
	}
}

func TestFetcher_Fetch_Failures(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{})
	srv.SetStatus("/web/acme/widget/zipball/v9.0.0", http.StatusInternalServerError)
	f := newTestFetcher(t, srv)

	_, err := f.Fetch(context.Background(), widget, resolver.Candidate{Reference: "v1.0.0", Kind: resolver.KindTag})
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)

	_, err = f.Fetch(context.Background(), widget, resolver.Candidate{Reference: "v9.0.0", Kind: resolver.KindTag})
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
	require.ErrorIs(t, err, apperrors.ErrUpstream)

	_, err = f.Fetch(context.Background(), widget, resolver.Candidate{Reference: "v1.0.0", Kind: "commit"})
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
}

func TestFetcher_DownloadToTemp(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Archives: map[string][]byte{"v1.0.0": []byte("zip-bytes")},
	})
	f := newTestFetcher(t, srv)
	dir := t.TempDir()

	path, cleanup, err := f.DownloadToTemp(context.Background(), widget, resolver.Candidate{Reference: "v1.0.0", Kind: resolver.KindTag}, dir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "zip-bytes", string(data))

	cleanup()
	require.NoFileExists(t, path)
	require.Empty(t, entries(t, dir))

	// A second call must be harmless.
	cleanup()
}

func TestFetcher_DownloadToTemp_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Archives: map[string][]byte{"v1.0.0": {}},
	})
	f := newTestFetcher(t, srv)
	dir := t.TempDir()

	path, cleanup, err := f.DownloadToTemp(context.Background(), widget, resolver.Candidate{Reference: "v1.0.0", Kind: resolver.KindTag}, dir)
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
	require.Empty(t, path)
	require.NotNil(t, cleanup)
	cleanup()
	require.Empty(t, entries(t, dir))
}

type failingSource struct {
	body io.ReadCloser
}

func (s *failingSource) TagArchiveURL(repository.Reference, string) (string, error) {
	return "https://example.test/archive.zip", nil
}

func (s *failingSource) BranchArchiveURL(repository.Reference, string) (string, error) {
	return "https://example.test/archive.zip", nil
}

func (s *failingSource) Download(context.Context, string) (io.ReadCloser, error) {
	return s.body, nil
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestFetcher_DownloadToTemp_ReadError(t *testing.T) {
	t.Parallel()

	f, err := NewFetcher(hclog.NewNullLogger(), &failingSource{body: io.NopCloser(brokenReader{})})
	require.NoError(t, err)
	dir := t.TempDir()

	_, cleanup, err := f.DownloadToTemp(context.Background(), widget, resolver.Candidate{Reference: "main", Kind: resolver.KindBranch}, dir)
	require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
	require.ErrorContains(t, err, "connection reset")
	cleanup()
	require.Empty(t, entries(t, dir))
}

func TestNewFetcher_NilSource(t *testing.T) {
	t.Parallel()

	_, err := NewFetcher(hclog.NewNullLogger(), nil)
	require.Error(t, err)
}
