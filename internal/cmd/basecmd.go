package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/kaws-dev/gitplug/internal/flags"
	"github.com/kaws-dev/gitplug/internal/perms"
)

// AppName is the name of the application as it appears in logs and output.
const AppName = "gitplug"

var version = "dev" // Set at build time using -ldflags

// Version returns the version of the application.
func Version() string {
	return version
}

type BaseCmd struct {
	logger     hclog.Logger
	loggerOnce sync.Once
	loggerErr  error
}

// SetLogger replaces the command's logger, typically in tests.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.loggerOnce.Do(func() {})
	c.logger = logger
	c.loggerErr = nil
}

// Logger returns the logger for the command, creating it from the global flags on first use.
// Logs are discarded unless a log path is configured.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = newLogger()
	})

	return c.logger, c.loggerErr
}

func newLogger() (hclog.Logger, error) {
	logLevel := strings.ToLower(strings.TrimSpace(flags.LogLevel))
	if logLevel == "" {
		logLevel = flags.DefaultLogLevel
	}

	var output io.Writer = io.Discard
	if logPath := strings.TrimSpace(flags.LogPath); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   AppName,
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	}), nil
}

// RequireTogether returns an error when some, but not all, of the named flags were set on the command.
func (c *BaseCmd) RequireTogether(cmd *cobra.Command, flagNames ...string) error {
	set := 0
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			set++
		}
	}

	if set == 0 || set == len(flagNames) {
		return nil
	}

	names := slices.Clone(flagNames)
	slices.Sort(names)

	return fmt.Errorf("flags must be provided together or not at all: (%s)", strings.Join(names, ", "))
}
