//go:build docsgen_cli
// +build docsgen_cli

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra/doc"

	"github.com/kaws-dev/gitplug/cmd"
	internalcmd "github.com/kaws-dev/gitplug/internal/cmd"
	"github.com/kaws-dev/gitplug/internal/perms"
)

// docsPath is the path to the commands documentation, relative to the repository root.
const docsPath = "./docs/commands/"

// main assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "gitplug.docsgen.cli",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	if err := generate(); err != nil {
		logger.Error("failed to generate CLI docs", "error", err)
		os.Exit(1)
	}

	logger.Info("CLI docs generated", "path", docsPath)
}

func generate() error {
	rootCmd, err := cmd.NewRootCmd(&cmd.RootCmd{BaseCmd: &internalcmd.BaseCmd{}})
	if err != nil {
		return fmt.Errorf("failed to create root command: %w", err)
	}
	rootCmd.DisableAutoGenTag = true

	if err := os.RemoveAll(docsPath); err != nil {
		return fmt.Errorf("failed to clear %s: %w", docsPath, err)
	}

	if err := os.MkdirAll(docsPath, perms.RegularDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", docsPath, err)
	}

	return doc.GenMarkdownTreeCustom(rootCmd, docsPath, frontMatter, func(name string) string { return name })
}

// frontMatter titles each page after its command path, e.g. "gitplug_install.md" becomes "gitplug install".
func frontMatter(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\ntitle: %s\n---\n\n", strings.ReplaceAll(name, "_", " "))
}
