package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/config"
	"github.com/kaws-dev/gitplug/internal/flags"
)

const (
	flagFormat       = "format"
	flagRefreshCache = "refresh-cache"
	flagVersion      = "version"
)

// serviceCmd is embedded by the commands that run package operations.
type serviceCmd struct {
	*cmd.BaseCmd
	Format       cmd.OutputFormat
	RefreshCache bool
	cfgLoader    config.Loader
	builder      cmd.ServiceBuilder
}

func newServiceCmd(baseCmd *cmd.BaseCmd, opts cmdopts.CmdOptions) serviceCmd {
	return serviceCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.ServiceBuilder,
	}
}

func (c *serviceCmd) registerFlags(cobraCommand *cobra.Command) {
	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		flagFormat,
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	cobraCommand.Flags().BoolVar(
		&c.RefreshCache,
		flagRefreshCache,
		false,
		"Ignore cached manifests and fetch them again",
	)
}

// openStack loads the configuration and wires the package service. The caller must close the stack.
func (c *serviceCmd) openStack() (*cmd.Stack, error) {
	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	stack, err := c.builder.BuildService(cfg, c.RefreshCache)
	if err != nil {
		return nil, fmt.Errorf("failed to set up %s: %w", cmd.AppName, err)
	}

	return stack, nil
}

func requiredArg(value string, name string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%s is required and cannot be empty", name)
	}
	return v, nil
}
