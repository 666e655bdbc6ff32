package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/linkage"
)

// DomainLink is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainLink linkage.Record

// Link ties an installed package to the repository it was installed from.
type Link struct {
	PackageName        string    `example:"AcmeWidget"                    json:"packageName"`
	SourceKind         string    `example:"git"                           json:"sourceKind"`
	SourceURL          string    `example:"https://github.com/acme/widget" json:"sourceUrl"`
	InstalledReference string    `example:"v1.2.0"                        json:"installedReference"`
	InstalledCommit    *string   `json:"installedCommit,omitempty"`
	PackageVersion     *string   `json:"packageVersion,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// LinksResponse is the response for GET /links.
type LinksResponse struct {
	Body struct {
		Links []Link `doc:"Linkage records ordered by package name" json:"links"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainLink) ToAPIType() (Link, error) {
	return Link{
		PackageName:        d.PackageName,
		SourceKind:         d.SourceKind,
		SourceURL:          d.SourceURL,
		InstalledReference: d.InstalledReference,
		InstalledCommit:    d.InstalledCommit,
		PackageVersion:     d.PackageVersion,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

// RegisterLinkRoutes sets up the linkage listing endpoint.
func RegisterLinkRoutes(routerAPI huma.API, svc contracts.PackageService, apiPathPrefix string) {
	linksAPI := huma.NewGroup(routerAPI, apiPathPrefix)

	huma.Register(
		linksAPI,
		huma.Operation{
			OperationID: "listLinks",
			Method:      http.MethodGet,
			Summary:     "List where each installed package came from",
			Tags:        []string{"Links"},
		},
		func(ctx context.Context, _ *struct{}) (*LinksResponse, error) {
			return handleLinks(ctx, svc)
		},
	)
}

func handleLinks(ctx context.Context, svc contracts.PackageService) (*LinksResponse, error) {
	records, err := svc.Links(ctx)
	if err != nil {
		return nil, err
	}

	links, err := convertAll(records, func(r linkage.Record) Convertible[Link] {
		return DomainLink(r)
	})
	if err != nil {
		return nil, err
	}

	resp := &LinksResponse{}
	resp.Body.Links = links

	return resp, nil
}
