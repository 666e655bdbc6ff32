package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/flags"
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return fmt.Errorf("error creating root command: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}

	return nil
}

// NewRootCmd creates the top-level command with every subcommand attached.
// Unless overridden, commands build their package service with the root's BaseCmd so they share its logger.
func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	if c == nil || c.BaseCmd == nil {
		return nil, fmt.Errorf("root command requires a base command")
	}

	opt = append([]cmdopts.CmdOption{cmdopts.WithServiceBuilder(c.BaseCmd)}, opt...)

	rootCmd := &cobra.Command{
		Use:          fmt.Sprintf("%s <command> [args]", cmd.AppName),
		Short:        "Installs and updates plugins straight from their git repositories.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(*cmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,
		NewVersionsCmd,
		NewInstallCmd,
		NewUpdateCmd,
		NewCheckCmd,
		NewLinksCmd,
		NewDaemonCmd,
	}

	for _, fn := range fns {
		subCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(subCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'gitplug' CLI resolves which releases of a git-hosted plugin are compatible
with the host application, installs them into the host's plugin directory and keeps
them up to date, remembering where each installed plugin came from.`
}
