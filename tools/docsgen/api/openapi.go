//go:build docsgen_api
// +build docsgen_api

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/api"
	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// stubService provides a stub implementation for documentation generation.
type stubService struct{}

func (stubService) HostVersion(context.Context) (string, error) { return "", nil }
func (stubService) ListCompatibleVersions(context.Context, string) ([]resolver.ResolvedVersion, error) {
	return nil, nil
}
func (stubService) Install(context.Context, domain.InstallRequest) (domain.InstallResult, error) {
	return domain.InstallResult{}, nil
}
func (stubService) Update(context.Context, domain.UpdateRequest) (domain.UpdateResult, error) {
	return domain.UpdateResult{}, nil
}
func (stubService) CheckForUpdate(context.Context, domain.CheckRequest) (domain.CheckResult, error) {
	return domain.CheckResult{}, nil
}
func (stubService) Links(context.Context) ([]linkage.Record, error) { return nil, nil }

// main generates the OpenAPI specification for the gitplug API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "gitplug.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Create a chi router (same as the daemon).
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Create Huma config and router (same as the daemon).
	config := huma.DefaultConfig("gitplug docs", api.APIVersion)
	router := humachi.New(mux, config)

	// The OpenAPI spec generation only needs the route definitions, not the actual handlers.
	apiPathPrefix, err := api.RegisterRoutes(router, stubService{})
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	// Get the OpenAPI spec as YAML.
	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	// Ensure the docs directory exists.
	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	// Write the YAML to the output file.
	if err := os.WriteFile(outputPath, yamlBytes, 0o644); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
