// Package linkage persists which remote source, reference and commit each installed package came from.
package linkage

import (
	"context"
	"time"
)

// SourceKindGit is the only source kind written by gitplug.
const SourceKindGit = "git"

// Record ties an installed package to its remote source.
type Record struct {
	ID                 string    `json:"id" yaml:"id"`
	PackageID          string    `json:"packageId" yaml:"packageId"`
	PackageName        string    `json:"packageName" yaml:"packageName"`
	SourceKind         string    `json:"sourceKind" yaml:"sourceKind"`
	SourceURL          string    `json:"sourceUrl" yaml:"sourceUrl"`
	InstalledReference string    `json:"installedReference" yaml:"installedReference"`
	InstalledCommit    *string   `json:"installedCommit,omitempty" yaml:"installedCommit,omitempty"`
	PackageVersion     *string   `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// UpsertParams are the mutable fields of a Record, keyed by PackageID.
type UpsertParams struct {
	PackageID          string
	SourceURL          string
	InstalledReference string
	InstalledCommit    *string
	PackageVersion     *string
}

// Store persists linkage records, one per package.
type Store interface {
	// Upsert updates the record for params.PackageID, or inserts a new one with a fresh identifier.
	Upsert(ctx context.Context, params UpsertParams) (Record, error)

	// Get returns the record for a package, or errors.ErrLinkNotFound.
	Get(ctx context.Context, packageID string) (Record, error)

	// List returns all records ordered by package name.
	List(ctx context.Context) ([]Record, error)

	// Close releases the underlying storage.
	Close() error
}
