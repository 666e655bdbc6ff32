package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/cmd"
	cmdopts "github.com/kaws-dev/gitplug/internal/cmd/options"
	"github.com/kaws-dev/gitplug/internal/daemon"
	"github.com/kaws-dev/gitplug/internal/flags"
)

const devAddr = "localhost:8091"

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	serviceCmd
	Dev  bool
	Addr string
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{serviceCmd: newServiceCmd(baseCmd, opts)}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches a `gitplug` daemon instance",
		Long:  "Launches a `gitplug` daemon instance, which serves the version, install, update and check operations over an HTTP API",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		"Address for the daemon to bind, overrides api.addr from the config file (not applicable in --dev mode)",
	)

	cobraCommand.Flags().BoolVar(
		&c.RefreshCache,
		flagRefreshCache,
		false,
		"Ignore cached manifests and fetch them again",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = cfg.API.Addr
	}

	// Override address for dev mode.
	if c.Dev {
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	if err := daemon.IsValidAddr(addr); err != nil {
		return err
	}

	stack, err := c.builder.BuildService(cfg, c.RefreshCache)
	if err != nil {
		return fmt.Errorf("failed to set up %s: %w", cmd.AppName, err)
	}

	deps, err := daemon.NewDependencies(logger, addr, stack.Service, stack.Gatherer, stack)
	if err != nil {
		_ = stack.Close()
		return fmt.Errorf("error configuring %s daemon: %w", cmd.AppName, err)
	}

	d, err := daemon.NewDaemon(deps, daemon.WithAPIOptions(daemon.APIOptionsFromConfig(cfg.API)...))
	if err != nil {
		_ = stack.Close()
		return fmt.Errorf("failed to create %s daemon instance: %w", cmd.AppName, err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		cobraCmd.Context(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	// Print --dev mode banner if required.
	if c.Dev {
		logger.Info("Launching daemon in dev mode", "addr", addr)
		if err := c.printBanner(cobraCmd.OutOrStdout(), addr); err != nil {
			return err
		}
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		if err != nil {
			logger.Error("daemon exited with error", "error", err)
		}
		return err // Propagate daemon failure.
	}
}

func (c *DaemonCmd) printBanner(w io.Writer, addr string) error {
	banner := fmt.Sprintf("%s daemon running in 'dev' mode.\n\n"+
		"  Local API:\thttp://%s/api/v1\n"+
		"  OpenAPI UI:\thttp://%s/docs\n"+
		"  Metrics:\thttp://%s%s\n"+
		"  Config file:\t%s\n",
		cmd.AppName, addr, addr, addr, daemon.DefaultMetricsPath, flags.ConfigFile)

	if flags.LogPath != "" {
		banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
	}

	banner += "\nPress Ctrl+C to stop.\n\n"

	_, err := io.WriteString(w, banner)
	return err
}
