package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/domain"
)

// DomainBranchUpdate is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainBranchUpdate domain.BranchUpdate

// InstallRequest represents the incoming request to install a package.
type InstallRequest struct {
	Body struct {
		URL     string `doc:"Repository URL of the package"                              example:"https://github.com/acme/widget" json:"url"`
		Version string `doc:"Reference or display label, the latest compatible when empty" example:"v1.2.0"                         json:"version,omitempty"`
	}
}

// InstallResult describes a completed install.
type InstallResult struct {
	PackageName        string `doc:"Name the package was installed as"            example:"AcmeWidget"      json:"packageName"`
	InstalledReference string `doc:"Installed tag or branch"                      example:"v1.2.0"          json:"installedReference"`
	DisplayVersion     string `doc:"Display label of the installed release"       example:"v1.2.0 (v1.2.0)" json:"displayVersion"`
	PackageVersion     string `doc:"Declared package version, or the reference"   example:"1.2.0"           json:"packageVersion"`
}

// InstallResponse is the response for POST /packages/install.
type InstallResponse struct {
	Body InstallResult
}

// UpdateRequest represents the incoming request to update an installed package.
type UpdateRequest struct {
	Body struct {
		URL     string `doc:"Repository URL of the package"                              example:"https://github.com/acme/widget" json:"url"`
		Name    string `doc:"Name of the installed package"                              example:"AcmeWidget"                     json:"name"`
		Version string `doc:"Reference or display label, the latest compatible when empty" example:"6.7 (v1.3.0)"                   json:"version,omitempty"`
	}
}

// UpdateResult describes a completed update.
type UpdateResult struct {
	Installed          bool   `json:"installed"`
	PackageName        string `json:"packageName"`
	InstalledReference string `json:"installedReference"`
	PackageVersion     string `json:"packageVersion"`
}

// UpdateResponse is the response for POST /packages/update.
type UpdateResponse struct {
	Body UpdateResult
}

// CheckRequest represents the incoming request to check a package for updates.
type CheckRequest struct {
	URL                string `doc:"Repository URL of the package"    example:"https://github.com/acme/widget" query:"url"                required:"true"`
	CurrentVersion     string `doc:"Installed package version"        example:"1.0.0"                          query:"currentVersion"`
	InstalledReference string `doc:"Installed branch, for branch releases" example:"6.7"                      query:"installedReference"`
}

// BranchUpdate compares the head commits of the installed and the latest branch.
type BranchUpdate struct {
	HasUpdate       bool       `json:"hasUpdate"`
	InstalledCommit string     `json:"installedCommit,omitempty"`
	LatestCommit    string     `json:"latestCommit,omitempty"`
	InstalledDate   *time.Time `json:"installedDate,omitempty"`
	LatestDate      *time.Time `json:"latestDate,omitempty"`
	CommitsBehind   int        `json:"commitsBehind"`
	Error           string     `json:"error,omitempty"`
}

// CheckResult is the outcome of an update check.
type CheckResult struct {
	LatestVersion   string        `doc:"Best compatible reference, empty when there is none" json:"latestVersion"`
	Versions        []Version     `doc:"Compatible releases, best first"                     json:"versions"`
	UpdateAvailable bool          `json:"updateAvailable"`
	UpdateInfo      *BranchUpdate `doc:"Commit comparison, set for branch releases"         json:"updateInfo,omitempty"`
}

// CheckResponse is the response for GET /packages/check.
type CheckResponse struct {
	Body CheckResult
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainBranchUpdate) ToAPIType() (BranchUpdate, error) {
	return BranchUpdate{
		HasUpdate:       d.HasUpdate,
		InstalledCommit: d.InstalledCommit,
		LatestCommit:    d.LatestCommit,
		InstalledDate:   d.InstalledDate,
		LatestDate:      d.LatestDate,
		CommitsBehind:   d.CommitsBehind,
		Error:           d.Error,
	}, nil
}

// RegisterPackageRoutes sets up the install, update and check endpoints.
func RegisterPackageRoutes(routerAPI huma.API, svc contracts.PackageService, apiPathPrefix string) {
	packagesAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Packages"}

	huma.Register(
		packagesAPI,
		huma.Operation{
			OperationID:   "installPackage",
			Method:        http.MethodPost,
			Path:          "/install",
			Summary:       "Install a package from its repository",
			Tags:          tags,
			DefaultStatus: http.StatusCreated,
		},
		func(ctx context.Context, input *InstallRequest) (*InstallResponse, error) {
			return handleInstall(ctx, svc, input)
		},
	)

	huma.Register(
		packagesAPI,
		huma.Operation{
			OperationID: "updatePackage",
			Method:      http.MethodPost,
			Path:        "/update",
			Summary:     "Replace an installed package with another release",
			Tags:        tags,
		},
		func(ctx context.Context, input *UpdateRequest) (*UpdateResponse, error) {
			return handleUpdate(ctx, svc, input)
		},
	)

	huma.Register(
		packagesAPI,
		huma.Operation{
			OperationID: "checkPackage",
			Method:      http.MethodGet,
			Path:        "/check",
			Summary:     "Check whether a newer compatible release exists",
			Tags:        tags,
		},
		func(ctx context.Context, input *CheckRequest) (*CheckResponse, error) {
			return handleCheck(ctx, svc, input)
		},
	)
}

func handleInstall(ctx context.Context, svc contracts.PackageService, input *InstallRequest) (*InstallResponse, error) {
	res, err := svc.Install(ctx, domain.InstallRequest{
		SourceURL: input.Body.URL,
		Version:   input.Body.Version,
	})
	if err != nil {
		return nil, err
	}

	resp := &InstallResponse{}
	resp.Body = InstallResult{
		PackageName:        res.PackageName,
		InstalledReference: res.InstalledReference,
		DisplayVersion:     res.DisplayVersion,
		PackageVersion:     res.PackageVersion,
	}

	return resp, nil
}

func handleUpdate(ctx context.Context, svc contracts.PackageService, input *UpdateRequest) (*UpdateResponse, error) {
	res, err := svc.Update(ctx, domain.UpdateRequest{
		SourceURL:   input.Body.URL,
		PackageName: input.Body.Name,
		Version:     input.Body.Version,
	})
	if err != nil {
		return nil, err
	}

	resp := &UpdateResponse{}
	resp.Body = UpdateResult{
		Installed:          res.Installed,
		PackageName:        res.PackageName,
		InstalledReference: res.InstalledReference,
		PackageVersion:     res.PackageVersion,
	}

	return resp, nil
}

func handleCheck(ctx context.Context, svc contracts.PackageService, input *CheckRequest) (*CheckResponse, error) {
	res, err := svc.CheckForUpdate(ctx, domain.CheckRequest{
		SourceURL:          input.URL,
		CurrentVersion:     input.CurrentVersion,
		InstalledReference: input.InstalledReference,
	})
	if err != nil {
		return nil, err
	}

	versions, err := convertVersions(res.Versions)
	if err != nil {
		return nil, err
	}

	resp := &CheckResponse{}
	resp.Body = CheckResult{
		LatestVersion:   res.LatestVersion,
		Versions:        versions,
		UpdateAvailable: res.UpdateAvailable,
	}

	if res.UpdateDetail != nil {
		info, err := DomainBranchUpdate(*res.UpdateDetail).ToAPIType()
		if err != nil {
			return nil, err
		}
		resp.Body.UpdateInfo = &info
	}

	return resp, nil
}
