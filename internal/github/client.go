// Package github is a small client for the parts of the GitHub REST API, raw content host and archive
// endpoints needed to resolve and download plugin releases. Any host exposing the same URL shapes
// (e.g. GitHub Enterprise) can be targeted through the base URL options.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/cache"
	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/repository"
)

const (
	perPage  = 100
	maxPages = 10
)

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// Client talks to the hosting service.
// NewClient should be used to create instances of Client.
type Client struct {
	apiURL     string
	rawURL     string
	webURL     string
	userAgent  string
	httpClient *http.Client
	cache      *cache.Cache
	logger     hclog.Logger
}

// Ref is a named git reference (tag or branch) and the commit it points at.
type Ref struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Commit describes a single commit.
type Commit struct {
	SHA  string
	Date *time.Time
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date *time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type compareResponse struct {
	AheadBy int `json:"ahead_by"`
}

// NewClient creates a hosting-service client.
func NewClient(logger hclog.Logger, opt ...Option) (*Client, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		apiURL:     opts.APIURL,
		rawURL:     opts.RawURL,
		webURL:     opts.WebURL,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		cache:      opts.Cache,
		logger:     logger.Named("github"),
	}, nil
}

// Tags lists the repository's tags in the order the hosting service returns them.
func (c *Client) Tags(ctx context.Context, ref repository.Reference) ([]Ref, error) {
	return c.listRefs(ctx, ref, "tags")
}

// Branches lists the repository's branches in the order the hosting service returns them.
func (c *Client) Branches(ctx context.Context, ref repository.Reference) ([]Ref, error) {
	return c.listRefs(ctx, ref, "branches")
}

// Commit returns the commit a reference (branch, tag or SHA) currently points at.
func (c *Client) Commit(ctx context.Context, ref repository.Reference, reference string) (Commit, error) {
	u, err := url.JoinPath(c.apiURL, "repos", ref.Owner, ref.Name, "commits", reference)
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}

	var payload commitResponse
	if _, err := c.getJSON(ctx, u, &payload); err != nil {
		return Commit{}, err
	}
	if payload.SHA == "" {
		return Commit{}, fmt.Errorf("%w: commit response for '%s' has no sha", errors.ErrUpstream, reference)
	}

	return Commit{SHA: payload.SHA, Date: payload.Commit.Author.Date}, nil
}

// AheadBy returns how many commits head is ahead of base.
func (c *Client) AheadBy(ctx context.Context, ref repository.Reference, base string, head string) (int, error) {
	u, err := url.JoinPath(c.apiURL, "repos", ref.Owner, ref.Name, "compare", base+"..."+head)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}

	var payload compareResponse
	if _, err := c.getJSON(ctx, u, &payload); err != nil {
		return 0, err
	}

	return payload.AheadBy, nil
}

// RawFile returns the content of the file at path as of the given reference.
// Reads go through the cache when one is configured.
func (c *Client) RawFile(ctx context.Context, ref repository.Reference, reference string, path string) ([]byte, error) {
	u, err := url.JoinPath(c.rawURL, ref.Owner, ref.Name, reference, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}

	fetch := func() ([]byte, error) {
		resp, err := c.get(ctx, u, "")
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", errors.ErrUpstream, u, err)
		}
		return data, nil
	}

	if c.cache == nil {
		return fetch()
	}

	return c.cache.Fetch(u, fetch)
}

// TagArchiveURL returns the source archive URL for a tag.
func (c *Client) TagArchiveURL(ref repository.Reference, tag string) (string, error) {
	return url.JoinPath(c.webURL, ref.Owner, ref.Name, "zipball", tag)
}

// BranchArchiveURL returns the source archive URL for the head of a branch.
func (c *Client) BranchArchiveURL(ref repository.Reference, branch string) (string, error) {
	return url.JoinPath(c.webURL, ref.Owner, ref.Name, "archive", "refs", "heads", branch+".zip")
}

// Download opens the body at the given URL. The caller must close the returned reader.
func (c *Client) Download(ctx context.Context, archiveURL string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, archiveURL, "")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) listRefs(ctx context.Context, ref repository.Reference, kind string) ([]Ref, error) {
	u, err := url.JoinPath(c.apiURL, "repos", ref.Owner, ref.Name, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}
	u += fmt.Sprintf("?per_page=%d", perPage)

	var refs []Ref
	for page := 0; u != "" && page < maxPages; page++ {
		var batch []Ref
		header, err := c.getJSON(ctx, u, &batch)
		if err != nil {
			return nil, err
		}
		refs = append(refs, batch...)
		u = nextLink(header)
	}

	c.logger.Debug("Listed references", "repo", ref.Path(), "kind", kind, "count", len(refs))

	return refs, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) (http.Header, error) {
	resp, err := c.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response from %s: %w", errors.ErrUpstream, u, err)
	}

	return resp.Header, nil
}

// get performs a GET request and returns the response when the status is 2xx.
// The caller must close the response body.
func (c *Client) get(ctx context.Context, u string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request for %s: %w", errors.ErrInvalidInput, u, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	c.logger.Trace("Request", "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %w", errors.ErrUpstream, u, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, statusError(resp, u)
	}

	return resp, nil
}

func nextLink(header http.Header) string {
	m := nextLinkPattern.FindStringSubmatch(header.Get("Link"))
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
