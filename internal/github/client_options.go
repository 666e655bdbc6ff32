package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaws-dev/gitplug/internal/cache"
)

const (
	DefaultAPIURL    = "https://api.github.com"
	DefaultRawURL    = "https://raw.githubusercontent.com"
	DefaultWebURL    = "https://github.com"
	DefaultUserAgent = "gitplug"
	DefaultTimeout   = 10 * time.Second
)

// Option defines a functional option for configuring Client.
type Option func(*Options) error

// Options contains optional configuration for the hosting-service client.
type Options struct {
	APIURL     string
	RawURL     string
	WebURL     string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Cache      *cache.Cache
}

// NewOptions returns Options with defaults applied, then the supplied options in order.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		APIURL:    DefaultAPIURL,
		RawURL:    DefaultRawURL,
		WebURL:    DefaultWebURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithAPIURL sets the base URL of the REST API.
func WithAPIURL(u string) Option {
	return func(o *Options) error {
		base, err := baseURL("API", u)
		if err != nil {
			return err
		}
		o.APIURL = base
		return nil
	}
}

// WithRawURL sets the base URL used to read files at a reference.
func WithRawURL(u string) Option {
	return func(o *Options) error {
		base, err := baseURL("raw", u)
		if err != nil {
			return err
		}
		o.RawURL = base
		return nil
	}
}

// WithWebURL sets the base URL archives are downloaded from.
func WithWebURL(u string) Option {
	return func(o *Options) error {
		base, err := baseURL("web", u)
		if err != nil {
			return err
		}
		o.WebURL = base
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *Options) error {
		ua = strings.TrimSpace(ua)
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		o.UserAgent = ua
		return nil
	}
}

// WithTimeout bounds each request. It is ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.HTTPClient = c
		return nil
	}
}

// WithCache routes raw file reads through the given cache.
func WithCache(c *cache.Cache) Option {
	return func(o *Options) error {
		o.Cache = c
		return nil
	}
}

func baseURL(kind string, raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid %s base URL '%s'", kind, raw)
	}
	return raw, nil
}
