package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/filter"
	"github.com/kaws-dev/gitplug/internal/linkage"
	"github.com/kaws-dev/gitplug/internal/printer"
)

// LinksCmd lists the installed plugins together with the repository each was installed from.
type LinksCmd struct {
	serviceCmd
	Name   string
	Source string
}

func NewLinksCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &LinksCmd{serviceCmd: newServiceCmd(baseCmd, opts)}

	cobraCommand := &cobra.Command{
		Use:   "links",
		Short: "Lists plugins installed from git repositories",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Name,
		"name",
		"",
		"Optional, only list plugins whose name contains this value",
	)

	cobraCommand.Flags().StringVar(
		&c.Source,
		"source",
		"",
		"Optional, only list plugins whose repository URL contains this value",
	)

	c.registerFlags(cobraCommand)

	return cobraCommand, nil
}

func (c *LinksCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := cmd.NewOutputHandler[linkage.Record](c.Format, cobraCmd.OutOrStdout(), printer.NewLinkPrinter())
	if err != nil {
		return err
	}

	stack, err := c.openStack()
	if err != nil {
		return handler.HandleError(err)
	}
	defer func() { _ = stack.Close() }()

	links, err := stack.Service.Links(cobraCmd.Context())
	if err != nil {
		return handler.HandleError(err)
	}

	links, err = filter.Items(links, map[string]string{"name": c.Name, "source": c.Source}, linkFilters()...)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResults(links...)
}

func linkFilters() []filter.Option[linkage.Record] {
	return []filter.Option[linkage.Record]{
		filter.WithMatcher("name", filter.Partial(func(r linkage.Record) string { return r.PackageName })),
		filter.WithMatcher("source", filter.Partial(func(r linkage.Record) string { return r.SourceURL })),
	}
}
