package manifest

import (
	"fmt"
	"strings"
)

// Option defines a functional option for configuring Reader and local manifest parsing.
type Option func(*Options) error

// Options contains optional configuration for manifest reading.
type Options struct {
	// PlatformPackage is the key in the manifest's require section holding the platform requirement.
	PlatformPackage string

	// ClassKey is the key in the manifest's extra section holding the implementation class.
	ClassKey string
}

// NewOptions returns Options with defaults applied, then the supplied options in order.
func NewOptions(opt ...Option) (Options, error) {
	opts := Options{
		PlatformPackage: DefaultPlatformPackage,
		ClassKey:        DefaultClassKey,
	}

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

// WithPlatformPackage sets the package whose requirement is matched against the host version.
func WithPlatformPackage(name string) Option {
	return func(o *Options) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("platform package cannot be empty")
		}
		o.PlatformPackage = name
		return nil
	}
}

// WithClassKey sets the extra-section key naming the implementation class.
func WithClassKey(key string) Option {
	return func(o *Options) error {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("class key cannot be empty")
		}
		o.ClassKey = key
		return nil
	}
}
