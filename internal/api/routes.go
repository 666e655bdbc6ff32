package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaws-dev/gitplug/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(router huma.API, svc contracts.PackageService) (string, error) {
	if isNil(router) {
		return "", fmt.Errorf("router cannot be nil")
	}
	if isNil(svc) {
		return "", fmt.Errorf("package service cannot be nil")
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, svc, "/health")
	RegisterVersionRoutes(versionedGroup, svc, "/versions")
	RegisterPackageRoutes(versionedGroup, svc, "/packages")
	RegisterLinkRoutes(versionedGroup, svc, "/links")

	return apiPathPrefix, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
