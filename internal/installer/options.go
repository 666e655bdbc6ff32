package installer

import (
	"fmt"
	"strings"

	"github.com/kaws-dev/gitplug/internal/manifest"
)

// Option defines a functional option for configuring Installer.
type Option func(*Options) error

// Options contains optional configuration for Installer.
type Options struct {
	// ClassKey is the key in the manifest's extra section holding the implementation class.
	ClassKey string
}

// NewOptions returns Options with defaults applied, then the supplied options in order.
func NewOptions(opt ...Option) (Options, error) {
	opts := Options{ClassKey: manifest.DefaultClassKey}

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

// WithClassKey sets the manifest key naming the implementation class.
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
