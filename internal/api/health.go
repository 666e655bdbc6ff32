package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaws-dev/gitplug/internal/contracts"
)

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthStatus represents the status of the daemon.
type HealthStatus string

// Health describes the daemon and the host application it serves.
type Health struct {
	Status      HealthStatus `json:"status"`
	HostVersion string       `json:"hostVersion,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Body Health
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, svc contracts.PackageService, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Summary:     "Get the daemon health and host version",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
			return handleHealth(ctx, svc)
		},
	)
}

// handleHealth reports the host version. A host whose version cannot be read is degraded, not an error.
func handleHealth(ctx context.Context, svc contracts.PackageService) (*HealthResponse, error) {
	resp := &HealthResponse{}

	v, err := svc.HostVersion(ctx)
	if err != nil {
		resp.Body = Health{Status: HealthStatusDegraded, Error: err.Error()}
		return resp, nil
	}

	resp.Body = Health{Status: HealthStatusOK, HostVersion: v}
	return resp, nil
}
