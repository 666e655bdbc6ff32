// Package resolver selects the releases of a remote package that are compatible with a host version.
//
// Tags are scanned first. Only when no tag is compatible are branches considered, and then only
// branches whose name contains the host's major.minor token.
package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/constraint"
	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/github"
	"github.com/kaws-dev/gitplug/internal/manifest"
	"github.com/kaws-dev/gitplug/internal/repository"
	"github.com/kaws-dev/gitplug/internal/version"
)

// Kind is the type of reference a candidate was found under.
type Kind string

const (
	KindTag    Kind = "tag"
	KindBranch Kind = "branch"
)

// KindOf infers the kind of an explicitly requested reference from its shape.
func KindOf(reference string) Kind {
	if version.IsReleaseTag(reference) {
		return KindTag
	}
	return KindBranch
}

// Candidate is a tag or branch under evaluation.
type Candidate struct {
	Reference       string  `json:"reference" yaml:"reference"`
	Kind            Kind    `json:"kind" yaml:"kind"`
	ManifestVersion *string `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
	Requirement     *string `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}

// ResolvedVersion is a compatible candidate with its display label.
type ResolvedVersion struct {
	Candidate `yaml:",inline"`
	Label     string `json:"label" yaml:"label"`
}

// RefLister lists the references of a remote repository.
type RefLister interface {
	Tags(ctx context.Context, ref repository.Reference) ([]github.Ref, error)
	Branches(ctx context.Context, ref repository.Reference) ([]github.Ref, error)
}

// ManifestFetcher reads the manifest at a reference.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, ref repository.Reference, reference string) (manifest.Manifest, error)
}

// Resolver scans a repository for compatible releases.
// NewResolver should be used to create instances of Resolver.
type Resolver struct {
	refs      RefLister
	manifests ManifestFetcher
	logger    hclog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger hclog.Logger, refs RefLister, manifests ManifestFetcher) (*Resolver, error) {
	if refs == nil {
		return nil, fmt.Errorf("reference lister cannot be nil")
	}
	if manifests == nil {
		return nil, fmt.Errorf("manifest fetcher cannot be nil")
	}

	return &Resolver{
		refs:      refs,
		manifests: manifests,
		logger:    logger.Named("resolver"),
	}, nil
}

// ResolveLatest returns the single best compatible candidate for target.
// It returns errors.ErrNoCompatibleVersion when neither tags nor branches qualify.
func (r *Resolver) ResolveLatest(ctx context.Context, ref repository.Reference, target string) (Candidate, error) {
	if strings.TrimSpace(target) == "" {
		return Candidate{}, fmt.Errorf("%w: target version is required", errors.ErrInvalidInput)
	}

	tags, err := r.compatibleTags(ctx, ref, target)
	if err != nil {
		return Candidate{}, err
	}
	if len(tags) > 0 {
		sortDescending(tags)
		r.logger.Debug("Resolved tag", "repo", ref.Path(), "target", target, "tag", tags[0].Reference)
		return tags[0], nil
	}

	branch, err := r.bestBranch(ctx, ref, target)
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %s for %s: %w", errors.ErrNoCompatibleVersion, ref.Path(), target, err)
	}
	if branch == nil {
		return Candidate{}, fmt.Errorf("%w: %s for %s", errors.ErrNoCompatibleVersion, ref.Path(), target)
	}

	r.logger.Debug("Resolved branch", "repo", ref.Path(), "target", target, "branch", branch.Reference)

	return *branch, nil
}

// ResolveAll returns every compatible tag sorted from highest to lowest version, or, when there is none,
// the best compatible branch. Nothing compatible yields an empty slice and a nil error.
// Failing to list tags is returned, failing to list branches is logged and treated as no branches.
func (r *Resolver) ResolveAll(ctx context.Context, ref repository.Reference, target string) ([]ResolvedVersion, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: target version is required", errors.ErrInvalidInput)
	}

	tags, err := r.compatibleTags(ctx, ref, target)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		sortDescending(tags)
		out := make([]ResolvedVersion, 0, len(tags))
		for _, c := range tags {
			out = append(out, ResolvedVersion{Candidate: c, Label: Label(c)})
		}
		return out, nil
	}

	branch, err := r.bestBranch(ctx, ref, target)
	if err != nil {
		r.logger.Warn("Branch fallback failed", "repo", ref.Path(), "target", target, "error", err)
		return []ResolvedVersion{}, nil
	}
	if branch == nil {
		return []ResolvedVersion{}, nil
	}

	return []ResolvedVersion{{Candidate: *branch, Label: Label(*branch)}}, nil
}

// Label formats the display label of a candidate: "<reference> (v<manifest version>)",
// or just the reference when the manifest declares no version.
func Label(c Candidate) string {
	if c.ManifestVersion == nil {
		return c.Reference
	}
	return fmt.Sprintf("%s (v%s)", c.Reference, *c.ManifestVersion)
}

// ParseLabel recovers the reference from a display label. Plain references are returned unchanged.
//
//	ParseLabel("6.7 (v1.7.0)") == "6.7"
func ParseLabel(label string) string {
	if before, _, found := strings.Cut(label, " ("); found {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(label)
}

func (r *Resolver) compatibleTags(ctx context.Context, ref repository.Reference, target string) ([]Candidate, error) {
	tags, err := r.refs.Tags(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", ref.Path(), err)
	}

	var out []Candidate
	for _, tag := range tags {
		if c, ok := r.check(ctx, ref, tag.Name, KindTag, target); ok {
			out = append(out, c)
		}
	}

	r.logger.Debug("Scanned tags", "repo", ref.Path(), "target", target, "tags", len(tags), "compatible", len(out))

	return out, nil
}

// bestBranch returns nil without error when no branch is compatible.
func (r *Resolver) bestBranch(ctx context.Context, ref repository.Reference, target string) (*Candidate, error) {
	token, err := version.MajorMinor(target)
	if err != nil {
		return nil, err
	}

	branches, err := r.refs.Branches(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of %s: %w", ref.Path(), err)
	}

	var compatible []Candidate
	for _, branch := range branches {
		if !strings.Contains(branch.Name, token) {
			continue
		}
		if c, ok := r.check(ctx, ref, branch.Name, KindBranch, token); ok {
			compatible = append(compatible, c)
		}
	}

	r.logger.Debug("Scanned branches", "repo", ref.Path(), "token", token, "branches", len(branches), "compatible", len(compatible))

	return pickBranch(compatible, token), nil
}

// check fetches the manifest at reference and reports whether its requirement matches target.
// Manifest failures exclude the reference without failing the scan.
func (r *Resolver) check(ctx context.Context, ref repository.Reference, reference string, kind Kind, target string) (Candidate, bool) {
	m, err := r.manifests.FetchManifest(ctx, ref, reference)
	if err != nil {
		r.logger.Debug("Skipping reference", "repo", ref.Path(), "reference", reference, "error", err)
		return Candidate{}, false
	}
	if m.Requirement == nil || !constraint.Matches(*m.Requirement, target) {
		return Candidate{}, false
	}

	return Candidate{
		Reference:       reference,
		Kind:            kind,
		ManifestVersion: m.Version,
		Requirement:     m.Requirement,
	}, true
}

// pickBranch prefers the branch named exactly token, otherwise the longest name.
// Equal lengths keep listing order.
func pickBranch(branches []Candidate, token string) *Candidate {
	if len(branches) == 0 {
		return nil
	}

	for i := range branches {
		if branches[i].Reference == token {
			return &branches[i]
		}
	}

	best := 0
	for i := 1; i < len(branches); i++ {
		if len(branches[i].Reference) > len(branches[best].Reference) {
			best = i
		}
	}

	return &branches[best]
}

func sortDescending(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return version.Compare(b.Reference, a.Reference)
	})
}
