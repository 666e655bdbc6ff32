package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaws-dev/gitplug/internal/cmd"
	"github.com/kaws-dev/gitplug/internal/config"
)

type fakeLoader struct {
	config.Loader
}

type fakeInitializer struct {
	config.Initializer
}

type fakeBuilder struct {
	cmd.ServiceBuilder
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()

	require.NotNil(t, opts.ConfigLoader)
	require.NotNil(t, opts.ConfigInitializer)
	require.NotNil(t, opts.ServiceBuilder)
}

func TestNewOptions_NoOverrides(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	assert.NoError(t, err)

	require.IsType(t, &config.DefaultLoader{}, opts.ConfigLoader)
	require.IsType(t, &config.DefaultLoader{}, opts.ConfigInitializer)
	require.IsType(t, &cmd.BaseCmd{}, opts.ServiceBuilder)
}

func TestNewOptions_WithOverrides(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	initializer := &fakeInitializer{}
	builder := &fakeBuilder{}

	opts, err := NewOptions(
		WithConfigLoader(loader),
		WithConfigInitializer(initializer),
		WithServiceBuilder(builder),
	)
	require.NoError(t, err)

	require.Equal(t, loader, opts.ConfigLoader)
	require.Equal(t, initializer, opts.ConfigInitializer)
	require.Equal(t, builder, opts.ServiceBuilder)
}

func TestNewOptions_WithNilValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     CmdOption
		wantErr string
	}{
		{"nil loader", WithConfigLoader(nil), "config loader cannot be nil"},
		{"typed nil loader", WithConfigLoader((*fakeLoader)(nil)), "config loader cannot be nil"},
		{"nil initializer", WithConfigInitializer(nil), "config initializer cannot be nil"},
		{"nil builder", WithServiceBuilder(nil), "service builder cannot be nil"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(tc.opt)
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestNewOptions_WithNilOption(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions(nil)
	require.NoError(t, err)
	require.NotNil(t, opts.ServiceBuilder)
}

func TestNewOptions_WithFailingOption(t *testing.T) {
	t.Parallel()

	badOpt := func(*CmdOptions) error {
		return errors.New("fail")
	}

	_, err := NewOptions(badOpt)
	require.Error(t, err)
	require.ErrorContains(t, err, "fail")
}
