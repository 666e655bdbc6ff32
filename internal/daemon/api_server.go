package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kaws-dev/gitplug/internal/api"
	"github.com/kaws-dev/gitplug/internal/cmd"
	"github.com/kaws-dev/gitplug/internal/contracts"
	"github.com/kaws-dev/gitplug/internal/errors"
)

// APIServer manages the HTTP API for the daemon.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// Service runs the package operations.
	service contracts.PackageService

	// Gatherer supplies the metrics endpoint.
	gatherer prometheus.Gatherer

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration

	metricsPath string
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		service:         deps.Service,
		gatherer:        deps.Gatherer,
		addr:            deps.Addr,
		cors:            apiOpts.CORS,
		shutdownTimeout: apiOpts.ShutdownTimeout,
		metricsPath:     apiOpts.MetricsPath,
	}, nil
}

// Handler builds the router serving the versioned API, its OpenAPI docs and the metrics endpoint.
func (a *APIServer) Handler() (http.Handler, error) {
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Add CORS middleware if enabled.
	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	config := huma.DefaultConfig("gitplug docs", cmd.Version())
	config.Info.Version = api.APIVersion
	router := humachi.New(mux, config)

	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	apiPathPrefix, err := api.RegisterRoutes(router, a.service)
	if err != nil {
		return nil, fmt.Errorf("failed to register API routes: %w", err)
	}

	mux.Handle(a.metricsPath, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	a.logger.Debug("Routes registered", "prefix", apiPathPrefix, "metrics", a.metricsPath)

	return mux, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting API server", "address", a.addr)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.logger.Info("Shutting down API server...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("API server shutdown incomplete", "error", err)
		}
		a.logger.Info("Shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   make([]string, 0, len(a.cors.AllowOrigins)),
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		ExposedHeaders:   a.cors.ExposedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// A wildcard origin never allows credentials.
	for _, origin := range a.cors.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins = append(corsOptions.AllowedOrigins, origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 404: Nothing compatible or nothing recorded
//   - 409: Conflicts with installed packages
//   - 422: Archives that cannot be installed
//   - 502: Hosting service failures
//   - 503: Hosting service rate limits
//   - 500: Unexpected internal errors (default case)
//
// Hosting service failures are matched before 404 since ErrNoCompatibleVersion may wrap them.
//
// Don't forget to:
// 1. Add test cases to TestMapError (internal/daemon/api_server_test.go)
// 2. Update the documentation in internal/errors/errors.go
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrRateLimited):
		logger.Warn("Hosting service rate limit exceeded", "error", err)
		return huma.Error503ServiceUnavailable(err.Error())
	case stdErrors.Is(err, errors.ErrDownloadFailed),
		stdErrors.Is(err, errors.ErrManifestUnavailable),
		stdErrors.Is(err, errors.ErrUpstream):
		logger.Error("Hosting service request failed", "error", err)
		return huma.Error502BadGateway("Hosting service error", err)
	case stdErrors.Is(err, errors.ErrNoCompatibleVersion):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrLinkNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrAlreadyInstalled):
		return huma.Error409Conflict(err.Error())
	case stdErrors.Is(err, errors.ErrIdentityMismatch),
		stdErrors.Is(err, errors.ErrIdentityUnresolved),
		stdErrors.Is(err, errors.ErrCorruptArchive),
		stdErrors.Is(err, errors.ErrExtractionIncomplete):
		return huma.Error422UnprocessableEntity(err.Error())
	case stdErrors.Is(err, errors.ErrLinkagePersistenceFailed):
		logger.Error("Linkage persistence failed", "error", err)
		return huma.Error500InternalServerError("Linkage persistence failed", err)
	default:
		logger.Error("Unexpected error handling package request", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// It allows the logger to be supplied to functions that resolve huma.StatusError,
// and it supports different behaviors based on the variadic errors parameter.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch len(errs) {
		case 0:
			// No errors provided; return a generic error.
			return huma.NewError(status, msg)
		case 1:
			// Request validation failures arrive as detail errors with a 4xx status.
			if status >= 400 && status < 500 && status != http.StatusNotFound {
				var detailer huma.ErrorDetailer
				if stdErrors.As(errs[0], &detailer) {
					return huma.NewError(status, msg, errs...)
				}
			}
			return mapError(logger, errs[0])
		default:
			// Multiple errors are request validation failures when they carry details.
			var detailer huma.ErrorDetailer
			if stdErrors.As(errs[0], &detailer) {
				return huma.NewError(status, msg, errs...)
			}
			return mapError(logger, stdErrors.Join(errs...))
		}
	}
}
