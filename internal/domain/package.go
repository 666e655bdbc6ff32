package domain

import (
	"time"

	"github.com/kaws-dev/gitplug/internal/resolver"
)

// InstallRequest asks for a fresh install of the package hosted at SourceURL.
type InstallRequest struct {
	SourceURL string

	// Version is a reference or a display label. Empty selects the latest compatible release.
	Version string
}

// InstallResult describes a completed install.
type InstallResult struct {
	PackageName        string `json:"packageName" yaml:"packageName"`
	InstalledReference string `json:"installedReference" yaml:"installedReference"`

	// DisplayVersion is the reference annotated with the package's declared version.
	DisplayVersion string `json:"displayVersion" yaml:"displayVersion"`

	// PackageVersion is the package's declared version, or the installed reference when it declares none.
	PackageVersion string `json:"packageVersion" yaml:"packageVersion"`
}

// UpdateRequest asks to replace the installed package PackageName with a release from SourceURL.
type UpdateRequest struct {
	SourceURL   string
	PackageName string

	// Version is a reference or a display label. Empty selects the latest compatible release.
	Version string
}

// UpdateResult describes a completed update.
type UpdateResult struct {
	Installed          bool   `json:"installed" yaml:"installed"`
	PackageName        string `json:"packageName" yaml:"packageName"`
	InstalledReference string `json:"installedReference" yaml:"installedReference"`
	PackageVersion     string `json:"packageVersion" yaml:"packageVersion"`
}

// CheckRequest asks whether a newer compatible release than the installed one exists.
type CheckRequest struct {
	SourceURL string

	// CurrentVersion is the installed package version, compared against the latest tag.
	CurrentVersion string

	// InstalledReference is the installed branch, compared by head commit against the latest branch.
	InstalledReference string
}

// CheckResult is the outcome of an update check.
type CheckResult struct {
	// LatestVersion is the reference of the best compatible release, empty when there is none.
	LatestVersion string `json:"latestVersion" yaml:"latestVersion"`

	// Versions lists every compatible release, best first.
	Versions []resolver.ResolvedVersion `json:"versions" yaml:"versions"`

	UpdateAvailable bool `json:"updateAvailable" yaml:"updateAvailable"`

	// UpdateDetail is set when branches were compared.
	UpdateDetail *BranchUpdate `json:"updateDetail,omitempty" yaml:"updateDetail,omitempty"`
}

// BranchUpdate compares the head commits of the installed and the latest branch.
type BranchUpdate struct {
	HasUpdate       bool       `json:"hasUpdate" yaml:"hasUpdate"`
	InstalledCommit string     `json:"installedCommit,omitempty" yaml:"installedCommit,omitempty"`
	LatestCommit    string     `json:"latestCommit,omitempty" yaml:"latestCommit,omitempty"`
	InstalledDate   *time.Time `json:"installedDate,omitempty" yaml:"installedDate,omitempty"`
	LatestDate      *time.Time `json:"latestDate,omitempty" yaml:"latestDate,omitempty"`
	CommitsBehind   int        `json:"commitsBehind" yaml:"commitsBehind"`
	Error           string     `json:"error,omitempty" yaml:"error,omitempty"`
}
