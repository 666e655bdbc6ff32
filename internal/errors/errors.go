// Package errors defines domain-level errors used throughout the application.
// These errors represent resolution and installation failures and are mapped to appropriate HTTP status codes
// at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrInvalidInput indicates that the caller supplied a missing or malformed source URL, reference or name.
	// Recommended to map to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrManifestUnavailable indicates that the manifest at a remote reference could not be fetched or decoded.
	// During resolution this is a per-candidate failure and the candidate is skipped.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrManifestUnavailable = errors.New("manifest unavailable")

	// ErrNoCompatibleVersion indicates that neither tags nor branches yielded a release compatible
	// with the running host version.
	// Recommended to map to HTTP 404 Not Found.
	ErrNoCompatibleVersion = errors.New("no compatible version")

	// ErrDownloadFailed indicates that a release archive could not be downloaded,
	// either because of a non-2xx status or an empty body.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrDownloadFailed = errors.New("download failed")

	// ErrCorruptArchive indicates that a downloaded archive could not be opened, was empty,
	// or contained entries that would be written outside the install root.
	// Recommended to map to HTTP 422 Unprocessable Entity.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrExtractionIncomplete indicates that the archive's top-level folder was missing after extraction.
	// Recommended to map to HTTP 422 Unprocessable Entity.
	ErrExtractionIncomplete = errors.New("extraction incomplete")

	// ErrIdentityUnresolved indicates that neither the manifest nor the descriptor of an extracted
	// package declared a name.
	// Recommended to map to HTTP 422 Unprocessable Entity.
	ErrIdentityUnresolved = errors.New("package identity unresolved")

	// ErrIdentityMismatch indicates that the extracted package is not the package the update was requested for.
	// Recommended to map to HTTP 422 Unprocessable Entity.
	ErrIdentityMismatch = errors.New("package identity mismatch")

	// ErrAlreadyInstalled indicates that a fresh install targeted a directory that already exists.
	// Recommended to map to HTTP 409 Conflict.
	ErrAlreadyInstalled = errors.New("package already installed")

	// ErrLinkagePersistenceFailed indicates that the linkage record for an installed package could not be written.
	// Install and update log this error and still report success; it is only surfaced by the store itself.
	// Recommended to map to HTTP 500 Internal Server Error.
	ErrLinkagePersistenceFailed = errors.New("linkage persistence failed")

	// ErrLinkNotFound indicates that no linkage record exists for the requested package.
	// Recommended to map to HTTP 404 Not Found.
	ErrLinkNotFound = errors.New("linkage record not found")

	// ErrUpstream indicates that the hosting service answered with an unexpected status or could not be reached.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrUpstream = errors.New("hosting service request failed")

	// ErrRateLimited indicates that the hosting service refused the request because the rate limit was exhausted.
	// Recommended to map to HTTP 503 Service Unavailable.
	ErrRateLimited = errors.New("hosting service rate limit exceeded")
)
