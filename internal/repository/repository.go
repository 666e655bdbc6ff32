package repository

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kaws-dev/gitplug/internal/errors"
)

// DefaultHost is assumed when a source is given in the short "owner/name" form.
const DefaultHost = "github.com"

// Reference identifies a repository on a source-control hosting service.
// Parse should be used to create instances of Reference.
type Reference struct {
	Host  string `json:"host"  yaml:"host"`
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name"  yaml:"name"`
}

// Parse normalizes an arbitrary repository URL into a Reference.
//
// Accepted forms include:
//
//	https://github.com/acme/widget
//	https://github.com/acme/widget.git
//	https://github.com/acme/widget/tree/6.7
//	https://github.com/acme/widget/releases/tag/v1.2.0
//	github.com/acme/widget
//	git@github.com:acme/widget.git
//	acme/widget
//
// Any path segments after the owner and name are discarded, so Parse(ref.String()) always yields ref.
func Parse(rawURL string) (Reference, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: repository URL cannot be empty", errors.ErrInvalidInput)
	}

	host, path, err := splitHostPath(raw)
	if err != nil {
		return Reference{}, err
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return Reference{}, fmt.Errorf("%w: repository URL '%s' must contain an owner and a name", errors.ErrInvalidInput, raw)
	}

	owner := strings.TrimSpace(segments[0])
	name := strings.TrimSuffix(strings.TrimSpace(segments[1]), ".git")
	if owner == "" || name == "" {
		return Reference{}, fmt.Errorf("%w: repository URL '%s' must contain an owner and a name", errors.ErrInvalidInput, raw)
	}

	return Reference{
		Host:  host,
		Owner: owner,
		Name:  name,
	}, nil
}

// String returns the canonical web URL of the repository.
func (r Reference) String() string {
	return "https://" + r.Host + "/" + r.Path()
}

// Path returns the "owner/name" form used by hosting-service APIs.
func (r Reference) Path() string {
	return r.Owner + "/" + r.Name
}

func splitHostPath(raw string) (string, string, error) {
	// SCP-like syntax, e.g. git@github.com:acme/widget.git
	if at := strings.Index(raw, "@"); at >= 0 && !strings.Contains(raw, "://") {
		if h, p, ok := strings.Cut(raw[at+1:], ":"); ok {
			return normalizeHost(h), p, nil
		}
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: invalid repository URL '%s': %v", errors.ErrInvalidInput, raw, err)
		}
		if u.Host == "" {
			return "", "", fmt.Errorf("%w: repository URL '%s' has no host", errors.ErrInvalidInput, raw)
		}
		return normalizeHost(u.Host), u.Path, nil
	}

	// Scheme-less URL whose first segment is a host name, e.g. github.com/acme/widget
	first, rest, _ := strings.Cut(raw, "/")
	if strings.Contains(first, ".") {
		return normalizeHost(first), rest, nil
	}

	return DefaultHost, raw, nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}
