package host

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds each host command when no timeout is configured.
const DefaultCommandTimeout = 2 * time.Minute

// CommandOption defines a functional option for configuring CommandRunner.
type CommandOption func(*CommandOptions) error

// CommandOptions contains optional configuration for CommandRunner.
type CommandOptions struct {
	WorkDir           string
	RefreshCommand    []string
	ActivateCommand   []string
	CacheClearCommand []string
	Timeout           time.Duration
	Recorder          PackageRecorder
}

// NewCommandOptions returns CommandOptions with defaults applied, then the supplied options in order.
func NewCommandOptions(opt ...CommandOption) (CommandOptions, error) {
	opts := CommandOptions{Timeout: DefaultCommandTimeout}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CommandOptions{}, err
		}
	}

	return opts, nil
}

// WithWorkDir sets the directory commands run in.
func WithWorkDir(dir string) CommandOption {
	return func(o *CommandOptions) error {
		o.WorkDir = strings.TrimSpace(dir)
		return nil
	}
}

// WithRefreshCommand sets the command that makes the host discover placed packages.
func WithRefreshCommand(args []string) CommandOption {
	return func(o *CommandOptions) error {
		cmd, err := command("refresh", args)
		if err != nil {
			return err
		}
		o.RefreshCommand = cmd
		return nil
	}
}

// WithActivateCommand sets the command that installs and activates a package.
// Arguments may contain NamePlaceholder.
func WithActivateCommand(args []string) CommandOption {
	return func(o *CommandOptions) error {
		cmd, err := command("activate", args)
		if err != nil {
			return err
		}
		o.ActivateCommand = cmd
		return nil
	}
}

// WithCacheClearCommand sets the command that invalidates the host's caches.
func WithCacheClearCommand(args []string) CommandOption {
	return func(o *CommandOptions) error {
		cmd, err := command("cache clear", args)
		if err != nil {
			return err
		}
		o.CacheClearCommand = cmd
		return nil
	}
}

// WithCommandTimeout bounds each command.
func WithCommandTimeout(timeout time.Duration) CommandOption {
	return func(o *CommandOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("command timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// WithRecorder stores each registered package in the given registry.
func WithRecorder(r PackageRecorder) CommandOption {
	return func(o *CommandOptions) error {
		o.Recorder = r
		return nil
	}
}

// command validates a command template. An empty template disables the step.
func command(step string, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(args[0]) == "" {
		return nil, fmt.Errorf("%s command has an empty executable", step)
	}
	return slices.Clone(args), nil
}
