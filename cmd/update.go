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

// UpdateCmd replaces an installed plugin with another release from its repository.
type UpdateCmd struct {
	serviceCmd
	Version string
}

func NewUpdateCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &UpdateCmd{serviceCmd: newServiceCmd(baseCmd, opts)}
	c.cfgLoader = config.NewValidatingLoader(c.cfgLoader, config.InstallDirExists)

	cobraCommand := &cobra.Command{
		Use:   "update <repository-url> <plugin-name> [--version]",
		Short: "Updates an installed plugin",
		Long: "Replaces the installed plugin with a compatible release from its repository. " +
			"The downloaded release must declare the same plugin identity as the installed one.",
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Version,
		flagVersion,
		"",
		"Optional, the tag, branch or version label to update to",
	)

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

func (c *UpdateCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[domain.UpdateResult](
		c.Format,
		cobraCmd.OutOrStdout(),
		&printer.UpdateResultPrinter{},
	)
	if err != nil {
		return err
	}

	sourceURL, err := requiredArg(args[0], "repository URL")
	if err != nil {
		return handler.HandleError(err)
	}

	name, err := requiredArg(args[1], "plugin name")
	if err != nil {
		return handler.HandleError(err)
	}

	stack, err := c.openStack()
	if err != nil {
		return handler.HandleError(err)
	}
	defer func() { _ = stack.Close() }()

	res, err := stack.Service.Update(cobraCmd.Context(), domain.UpdateRequest{
		SourceURL:   sourceURL,
		PackageName: name,
		Version:     strings.TrimSpace(c.Version),
	})
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(res)
}
