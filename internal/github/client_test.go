package github_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/kaws-dev/gitplug/internal/cache"
	apperrors "github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/github"
	"github.com/kaws-dev/gitplug/internal/github/githubtest"
	"github.com/kaws-dev/gitplug/internal/repository"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

var widget = repository.Reference{Host: "github.com", Owner: "acme", Name: "widget"}

func newTestClient(t *testing.T, srv *githubtest.Server, opts ...github.Option) *github.Client {
	t.Helper()

	base := []github.Option{
		github.WithAPIURL(srv.APIURL()),
		github.WithRawURL(srv.RawURL()),
		github.WithWebURL(srv.WebURL()),
		github.WithUserAgent("gitplug-test"),
	}

	client, err := github.NewClient(hclog.NewNullLogger(), append(base, opts...)...)
	require.NoError(t, err)

	return client
}

func TestClient_TagsAndBranches(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Tags:     []string{"v1.1.0", "v1.0.0"},
		Branches: []string{"main", "6.6"},
		Commits: map[string]githubtest.Commit{
			"v1.1.0": {SHA: "aaa"},
			"main":   {SHA: "bbb"},
		},
	})
	client := newTestClient(t, srv)

	tags, err := client.Tags(context.Background(), widget)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "v1.1.0", tags[0].Name)
	require.Equal(t, "aaa", tags[0].Commit.SHA)
	require.Equal(t, "v1.0.0", tags[1].Name)

	branches, err := client.Branches(context.Background(), widget)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	require.Equal(t, "main", branches[0].Name)
	require.Equal(t, "bbb", branches[0].Commit.SHA)

	require.Equal(t, []string{"gitplug-test"}, srv.UserAgents())
}

func TestClient_Tags_FollowsPagination(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.PageSize = 2
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Tags: []string{"v5", "v4", "v3", "v2", "v1"},
	})
	client := newTestClient(t, srv)

	tags, err := client.Tags(context.Background(), widget)
	require.NoError(t, err)

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	require.Equal(t, []string{"v5", "v4", "v3", "v2", "v1"}, names)
}

func TestClient_Tags_UnknownRepository(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	client := newTestClient(t, srv)

	_, err := client.Tags(context.Background(), widget)
	require.ErrorIs(t, err, github.ErrNotFound)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestClient_Commit(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 4, 26, 10, 0, 0, 0, time.UTC)
	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Commits: map[string]githubtest.Commit{
			"6.7": {SHA: "0123456789abcdef", Date: date},
		},
	})
	client := newTestClient(t, srv)

	commit, err := client.Commit(context.Background(), widget, "6.7")
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", commit.SHA)
	require.NotNil(t, commit.Date)
	require.True(t, date.Equal(*commit.Date))

	_, err = client.Commit(context.Background(), widget, "missing")
	require.ErrorIs(t, err, github.ErrNotFound)
}

func TestClient_AheadBy(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		AheadBy: map[string]int{"aaa...bbb": 4},
	})
	client := newTestClient(t, srv)

	n, err := client.AheadBy(context.Background(), widget, "aaa", "bbb")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestClient_RawFile(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Files: map[string]map[string]string{
			"v1.0.0":      {"composer.json": `{"version":"1.0.0"}`},
			"feature/6.7": {"composer.json": `{"version":"2.0.0"}`},
		},
	})
	client := newTestClient(t, srv)

	data, err := client.RawFile(context.Background(), widget, "v1.0.0", "composer.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"1.0.0"}`, string(data))

	data, err = client.RawFile(context.Background(), widget, "feature/6.7", "composer.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"2.0.0"}`, string(data))

	_, err = client.RawFile(context.Background(), widget, "v9.9.9", "composer.json")
	require.ErrorIs(t, err, github.ErrNotFound)
}

func TestClient_RawFile_UsesCache(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Files: map[string]map[string]string{"v1.0.0": {"composer.json": `{}`}},
	})

	c, err := cache.NewCache(hclog.NewNullLogger(), cache.WithDirectory(filepath.Join(t.TempDir(), "cache")))
	require.NoError(t, err)
	client := newTestClient(t, srv, github.WithCache(c))

	for range 3 {
		_, err := client.RawFile(context.Background(), widget, "v1.0.0", "composer.json")
		require.NoError(t, err)
	}

	require.Len(t, srv.Requests(), 1)
}

func TestClient_ArchiveURLs(t *testing.T) {
	t.Parallel()

	client, err := github.NewClient(hclog.NewNullLogger())
	require.NoError(t, err)

	tagURL, err := client.TagArchiveURL(widget, "v1.2.0")
	require.NoError(t, err)
	require.Equal(t, "https://github.com/acme/widget/zipball/v1.2.0", tagURL)

	branchURL, err := client.BranchArchiveURL(widget, "6.7")
	require.NoError(t, err)
	require.Equal(t, "https://github.com/acme/widget/archive/refs/heads/6.7.zip", branchURL)
}

func TestClient_Download(t *testing.T) {
	t.Parallel()

	srv := githubtest.NewServer(t)
	srv.AddRepo("acme/widget", &githubtest.Repo{
		Archives: map[string][]byte{"v1.0.0": []byte("zip-bytes")},
	})
	client := newTestClient(t, srv)

	u, err := client.TagArchiveURL(widget, "v1.0.0")
	require.NoError(t, err)

	rc, err := client.Download(context.Background(), u)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "zip-bytes", string(data))
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		remaining string
		limited   bool
	}{
		{name: "429", status: http.StatusTooManyRequests, limited: true},
		{name: "403 exhausted", status: http.StatusForbidden, remaining: "0", limited: true},
		{name: "403 with remaining quota", status: http.StatusForbidden, remaining: "12", limited: false},
		{name: "403 without headers", status: http.StatusForbidden, limited: false},
		{name: "500", status: http.StatusInternalServerError, limited: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			httpClient := &http.Client{
				Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
					header := http.Header{}
					if tc.remaining != "" {
						header.Set("X-RateLimit-Remaining", tc.remaining)
					}
					return &http.Response{
						StatusCode: tc.status,
						Status:     http.StatusText(tc.status),
						Header:     header,
						Body:       io.NopCloser(http.NoBody),
						Request:    req,
					}, nil
				}),
			}

			client, err := github.NewClient(hclog.NewNullLogger(), github.WithHTTPClient(httpClient))
			require.NoError(t, err)

			_, err = client.Tags(context.Background(), widget)
			require.Error(t, err)
			require.Equal(t, tc.limited, github.IsRateLimitError(err))
			require.Equal(t, tc.limited, errors.Is(err, apperrors.ErrRateLimited))
			require.Equal(t, !tc.limited, errors.Is(err, apperrors.ErrUpstream))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		}),
	}
	client, err := github.NewClient(hclog.NewNullLogger(), github.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Branches(context.Background(), widget)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	require.ErrorContains(t, err, "boom")
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	opts, err := github.NewOptions(nil, github.WithTimeout(3*time.Second))
	require.NoError(t, err)
	require.Equal(t, github.DefaultAPIURL, opts.APIURL)
	require.Equal(t, github.DefaultUserAgent, opts.UserAgent)
	require.Equal(t, 3*time.Second, opts.Timeout)

	_, err = github.NewOptions(github.WithAPIURL("not a url"))
	require.ErrorContains(t, err, "invalid API base URL")

	_, err = github.NewOptions(github.WithTimeout(0))
	require.Error(t, err)

	_, err = github.NewOptions(github.WithUserAgent(" "))
	require.Error(t, err)

	_, err = github.NewOptions(github.WithHTTPClient(nil))
	require.Error(t, err)
}
