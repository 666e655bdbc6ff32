package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/filter"
	"github.com/kaws-dev/gitplug/internal/printer"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

// VersionsCmd lists the releases of a plugin repository that are compatible with the host.
type VersionsCmd struct {
	serviceCmd
	Kind string
}

func NewVersionsCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &VersionsCmd{serviceCmd: newServiceCmd(baseCmd, opts)}

	cobraCommand := &cobra.Command{
		Use:   "versions <repository-url>",
		Short: "Lists the plugin versions compatible with the host",
		Long: "Lists the tags and branches of a plugin repository whose declared platform requirement " +
			"is satisfied by the host version, newest first.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Kind,
		"kind",
		"",
		"Optional, only list versions of this kind (tag or branch)",
	)

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

func (c *VersionsCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[resolver.ResolvedVersion](c.Format, cobraCmd.OutOrStdout(), printer.NewVersionPrinter())
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

	versions, err := stack.Service.ListCompatibleVersions(cobraCmd.Context(), sourceURL)
	if err != nil {
		return handler.HandleError(err)
	}

	versions, err = filter.Items(versions, map[string]string{"kind": c.Kind}, versionFilters()...)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResults(versions...)
}

func versionFilters() []filter.Option[resolver.ResolvedVersion] {
	return []filter.Option[resolver.ResolvedVersion]{
		filter.WithMatcher("kind", filter.Equals(func(v resolver.ResolvedVersion) string { return string(v.Kind) })),
	}
}
