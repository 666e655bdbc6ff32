package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/config"
	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/printer"
)

// InstallCmd installs a plugin that is not yet present on the host.
type InstallCmd struct {
	serviceCmd
	Version string
}

func NewInstallCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InstallCmd{serviceCmd: newServiceCmd(baseCmd, opts)}
	c.cfgLoader = config.NewValidatingLoader(c.cfgLoader, config.InstallDirExists)

	cobraCommand := &cobra.Command{
		Use:   "install <repository-url> [--version]",
		Short: "Installs a plugin from its repository",
		Long: "Downloads a compatible release of the plugin, places it in the host's plugin directory, " +
			"activates it and records where it came from. Without --version the newest compatible release is used.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Version,
		flagVersion,
		"",
		"Optional, the tag, branch or version label to install",
	)

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

func (c *InstallCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[domain.InstallResult](
		c.Format,
		cobraCmd.OutOrStdout(),
		&printer.InstallResultPrinter{},
	)
	if err != nil {
		return err
	}

	sourceURL, err := requiredArg(args[0], "repository URL")
	if err != nil {
		return handler.HandleError(err)
	}

	stack, err := c.openStack()
	if err != nil {
		return handler.HandleError(err)
	}
	defer func() { _ = stack.Close() }()

	res, err := stack.Service.Install(cobraCmd.Context(), domain.InstallRequest{
		SourceURL: sourceURL,
		Version:   strings.TrimSpace(c.Version),
	})
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(res)
}
