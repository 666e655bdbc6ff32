package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// DomainResolvedVersion is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainResolvedVersion resolver.ResolvedVersion

// Version is a compatible release of a package.
type Version struct {
	Reference      string  `doc:"Tag or branch name"                    example:"v1.2.0"          json:"reference"`
	Kind           string  `doc:"Reference kind"                        enum:"tag,branch"         json:"kind"`
	PackageVersion *string `doc:"Version declared by the package"       example:"1.2.0"           json:"packageVersion,omitempty"`
	Label          string  `doc:"Display label, accepted as a version"   example:"v1.2.0 (v1.2.0)" json:"label"`
}

// VersionsRequest represents the incoming request for listing compatible versions.
type VersionsRequest struct {
	URL string `doc:"Repository URL of the package" example:"https://github.com/acme/widget" query:"url" required:"true"`
}

// VersionsResponse is the response for GET /versions.
type VersionsResponse struct {
	Body struct {
		Versions []Version `doc:"Compatible releases, best first" json:"versions"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainResolvedVersion) ToAPIType() (Version, error) {
	return Version{
		Reference:      d.Reference,
		Kind:           string(d.Kind),
		PackageVersion: d.ManifestVersion,
		Label:          d.Label,
	}, nil
}

// RegisterVersionRoutes sets up the version listing endpoint.
func RegisterVersionRoutes(routerAPI huma.API, svc contracts.PackageService, apiPathPrefix string) {
	versionsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Versions"}

	huma.Register(
		versionsAPI,
		huma.Operation{
			OperationID: "listVersions",
			Method:      http.MethodGet,
			Summary:     "List the releases of a package compatible with the host",
			Tags:        tags,
		},
		func(ctx context.Context, input *VersionsRequest) (*VersionsResponse, error) {
			return handleVersions(ctx, svc, input.URL)
		},
	)
}

func handleVersions(ctx context.Context, svc contracts.PackageService, sourceURL string) (*VersionsResponse, error) {
	versions, err := svc.ListCompatibleVersions(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	apiVersions, err := convertVersions(versions)
	if err != nil {
		return nil, err
	}

	resp := &VersionsResponse{}
	resp.Body.Versions = apiVersions

	return resp, nil
}

func convertVersions(versions []resolver.ResolvedVersion) ([]Version, error) {
	return convertAll(versions, func(v resolver.ResolvedVersion) Convertible[Version] {
		return DomainResolvedVersion(v)
	})
}
