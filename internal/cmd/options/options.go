package options

import (
	"fmt"
	"reflect"

	"github.com/kaws-dev/gitplug/internal/cmd"
	"github.com/kaws-dev/gitplug/internal/config"
)

// CmdOption configures CmdOptions.
type CmdOption func(*CmdOptions) error

// CmdOptions holds the collaborators commands are built with, so tests can replace them.
type CmdOptions struct {
	ConfigLoader      config.Loader
	ConfigInitializer config.Initializer
	ServiceBuilder    cmd.ServiceBuilder
}

func defaultOptions() CmdOptions {
	configLoader := &config.DefaultLoader{}

	return CmdOptions{
		ConfigLoader:      configLoader,
		ConfigInitializer: configLoader,
		ServiceBuilder:    &cmd.BaseCmd{},
	}
}

// NewOptions returns the default options with the supplied options applied in order.
func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}

	return opts, nil
}

func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(l) {
			return fmt.Errorf("config loader cannot be nil")
		}
		o.ConfigLoader = l
		return nil
	}
}

func WithConfigInitializer(i config.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(i) {
			return fmt.Errorf("config initializer cannot be nil")
		}
		o.ConfigInitializer = i
		return nil
	}
}

func WithServiceBuilder(b cmd.ServiceBuilder) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(b) {
			return fmt.Errorf("service builder cannot be nil")
		}
		o.ServiceBuilder = b
		return nil
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
