package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Daemon serves the package API until its context is canceled, then releases the resources it was given.
type Daemon struct {
	apiServer      *APIServer
	logger         hclog.Logger
	closers        []io.Closer
	releaseTimeout time.Duration
}

// NewDaemon creates a daemon from validated dependencies and optional configuration.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	apiDeps, err := NewAPIDependencies(deps.Logger, deps.Service, deps.Gatherer, deps.APIAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid API dependencies: %w", err)
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		apiServer:      apiServer,
		logger:         deps.Logger.Named("daemon"),
		closers:        deps.Closers,
		releaseTimeout: opts.ReleaseTimeout,
	}, nil
}

// StartAndManage runs the API server and blocks until ctx is canceled or the server fails.
// A canceled context is a normal shutdown and is not reported as an error.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	d.logger.Info("Starting daemon")

	runErr := d.apiServer.Start(ctx)
	if stdErrors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if err := d.release(); err != nil {
		d.logger.Error("Failed to release daemon resources", "error", err)
		runErr = stdErrors.Join(runErr, err)
	}

	if runErr != nil {
		return fmt.Errorf("daemon stopped: %w", runErr)
	}

	d.logger.Info("Daemon stopped")

	return nil
}

// release closes each resource in order, giving up after the release timeout.
func (d *Daemon) release() error {
	done := make(chan error, 1)

	go func() {
		var errs []error
		for _, c := range d.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		done <- stdErrors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(d.releaseTimeout):
		return fmt.Errorf("timed out after %v releasing resources", d.releaseTimeout)
	}
}
