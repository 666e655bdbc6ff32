package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kaws-dev/gitplug/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8091").
	Addr string

	// Service runs the package operations exposed by the API.
	Service contracts.PackageService

	// Gatherer supplies the metrics served on the metrics endpoint.
	Gatherer prometheus.Gatherer

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	svc contracts.PackageService,
	gatherer prometheus.Gatherer,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:     addr,
		Service:  svc,
		Gatherer: gatherer,
		Logger:   logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Service == nil || reflect.ValueOf(d.Service).IsNil() {
		return fmt.Errorf("package service cannot be nil")
	}
	if d.Gatherer == nil || reflect.ValueOf(d.Gatherer).IsNil() {
		return fmt.Errorf("metrics gatherer cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
