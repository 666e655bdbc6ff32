package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NamePlaceholder is replaced with the package name in command arguments.
const NamePlaceholder = "{name}"

const maxOutputInError = 512

var (
	_ Registrar        = (*CommandRunner)(nil)
	_ CacheInvalidator = (*CommandRunner)(nil)
)

// CommandRunner integrates with the host application by running its console commands.
// NewCommandRunner should be used to create instances of CommandRunner.
type CommandRunner struct {
	workDir    string
	refresh    []string
	activate   []string
	cacheClear []string
	timeout    time.Duration
	recorder   PackageRecorder
	logger     hclog.Logger
}

// NewCommandRunner creates a CommandRunner.
func NewCommandRunner(logger hclog.Logger, opt ...CommandOption) (*CommandRunner, error) {
	opts, err := NewCommandOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &CommandRunner{
		workDir:    opts.WorkDir,
		refresh:    opts.RefreshCommand,
		activate:   opts.ActivateCommand,
		cacheClear: opts.CacheClearCommand,
		timeout:    opts.Timeout,
		recorder:   opts.Recorder,
		logger:     logger.Named("host"),
	}, nil
}

// Register records the package in the registry when a recorder is configured, then runs the refresh
// and activate commands. Every step is attempted and all failures are returned together.
func (r *CommandRunner) Register(ctx context.Context, pkg Package) error {
	var errs []error

	if r.recorder != nil {
		if _, err := r.recorder.RecordPackage(ctx, pkg.Name, pkg.Version, pkg.Path); err != nil {
			errs = append(errs, fmt.Errorf("failed to record package: %w", err))
		}
	}

	if err := r.run(ctx, "refresh", r.refresh, pkg.Name); err != nil {
		errs = append(errs, err)
	}

	if err := r.run(ctx, "activate", r.activate, pkg.Name); err != nil {
		errs = append(errs, err)
	}

	return stdErrors.Join(errs...)
}

// InvalidateCache runs the cache clear command. It does nothing when no command is configured.
func (r *CommandRunner) InvalidateCache(ctx context.Context) error {
	return r.run(ctx, "cache clear", r.cacheClear, "")
}

func (r *CommandRunner) run(ctx context.Context, step string, template []string, name string) error {
	if len(template) == 0 {
		r.logger.Trace("No command configured", "step", step)
		return nil
	}

	args := Expand(template, name)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.workDir

	r.logger.Debug("Running host command", "step", step, "command", strings.Join(args, " "), "dir", r.workDir)

	out, err := cmd.CombinedOutput()
	if err != nil {
		output := strings.TrimSpace(string(out))
		if len(output) > maxOutputInError {
			output = output[len(output)-maxOutputInError:]
		}
		r.logger.Warn("Host command failed", "step", step, "error", err, "output", output)
		return fmt.Errorf("%s command failed: %w: %s", step, err, output)
	}

	return nil
}

// Expand returns a copy of template with NamePlaceholder replaced by name.
func Expand(template []string, name string) []string {
	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = strings.ReplaceAll(arg, NamePlaceholder, name)
	}
	return args
}
