package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/domain"
	"github.com/kaws-dev/gitplug/internal/printer"
)

// CheckCmd reports whether a newer compatible release than the installed one exists.
type CheckCmd struct {
	serviceCmd
	CurrentVersion     string
	InstalledReference string
}

func NewCheckCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CheckCmd{serviceCmd: newServiceCmd(baseCmd, opts)}

	cobraCommand := &cobra.Command{
		Use:   "check <repository-url> [--current-version] [--installed-reference]",
		Short: "Checks a plugin repository for updates",
		Long: "Finds the newest compatible release of a plugin. Tags are compared with --current-version, " +
			"branches are compared by head commit with the branch given by --installed-reference.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.CurrentVersion,
		"current-version",
		"",
		"Optional, the installed plugin version",
	)

	cobraCommand.Flags().StringVar(
		&c.InstalledReference,
		"installed-reference",
		"",
		"Optional, the branch the installed plugin was taken from",
	)

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

func (c *CheckCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[domain.CheckResult](
		c.Format,
		cobraCmd.OutOrStdout(),
		&printer.CheckResultPrinter{},
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

	res, err := stack.Service.CheckForUpdate(cobraCmd.Context(), domain.CheckRequest{
		SourceURL:          sourceURL,
		CurrentVersion:     strings.TrimSpace(c.CurrentVersion),
		InstalledReference: strings.TrimSpace(c.InstalledReference),
	})
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(res)
}
