package daemon

import (
	"fmt"
	"io"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kaws-dev/gitplug/internal/contracts"
)

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8091").
	APIAddr string

	// Logger for daemon and subcomponent (API server) operations.
	Logger hclog.Logger

	// Service runs the package operations served by the API.
	Service contracts.PackageService

	// Gatherer supplies the metrics endpoint.
	Gatherer prometheus.Gatherer

	// Closers are released in order once the API server has stopped (e.g. the linkage store).
	Closers []io.Closer
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	svc contracts.PackageService,
	gatherer prometheus.Gatherer,
	closers ...io.Closer,
) (Dependencies, error) {
	deps := Dependencies{
		APIAddr:  apiAddr,
		Logger:   logger,
		Service:  svc,
		Gatherer: gatherer,
		Closers:  closers,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if d.Service == nil || reflect.ValueOf(d.Service).IsNil() {
		return fmt.Errorf("package service cannot be nil")
	}

	if d.Gatherer == nil || reflect.ValueOf(d.Gatherer).IsNil() {
		return fmt.Errorf("metrics gatherer cannot be nil")
	}

	for i, c := range d.Closers {
		if c == nil || reflect.ValueOf(c).IsNil() {
			return fmt.Errorf("closer %d cannot be nil", i)
		}
	}

	return nil
}
