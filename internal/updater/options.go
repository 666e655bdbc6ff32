package updater

import (
	"fmt"
)

// Option defines a functional option for configuring Service.
type Option func(*Options) error

// Options contains optional configuration for Service.
type Options struct {
	// TempDir is where archives are downloaded to, the system temp directory when empty.
	TempDir string

	// Metrics records operation counts and durations. Nothing is recorded when nil.
	Metrics *Metrics
}

// NewOptions returns Options with the supplied options applied in order.
func NewOptions(opt ...Option) (Options, error) {
	var opts Options

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options{}, err
		}
	}

	return opts, nil
}

// WithTempDir sets the directory archives are downloaded to.
func WithTempDir(dir string) Option {
	return func(o *Options) error {
		o.TempDir = dir
		return nil
	}
}

// WithMetrics records operation metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) error {
		if m == nil {
			return fmt.Errorf("metrics cannot be nil")
		}
		o.Metrics = m
		return nil
	}
}
