package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "GITPLUG_CONFIG_FILE"
	EnvVarLogPath    = "GITPLUG_LOG_PATH"
	EnvVarLogLevel   = "GITPLUG_LOG_LEVEL"

	// Defaults
	DefaultConfigFile = ".gitplug.toml"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

var (
	ConfigFile string
	LogPath    string
	LogLevel   string
)

// globalFlag is a persistent string flag whose default comes from an environment variable.
type globalFlag struct {
	target    *string
	name      string
	envVar    string
	def       string
	usage     string
	normalize func(string) string
}

// InitFlags registers the global flags on the given flag set.
// Each value is taken from its flag, then its environment variable, then its default.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	globalFlag{
		target: &ConfigFile,
		name:   FlagNameConfigFile,
		envVar: EnvVarConfigFile,
		def:    DefaultConfigFile,
		usage:  "path to config file",
	}.register(fs)
}

func initLogger(fs *pflag.FlagSet) {
	globalFlag{
		target: &LogPath,
		name:   FlagNameLogPath,
		envVar: EnvVarLogPath,
		def:    DefaultLogPath,
		usage:  "path to generated log file",
	}.register(fs)

	globalFlag{
		target:    &LogLevel,
		name:      FlagNameLogLevel,
		envVar:    EnvVarLogLevel,
		def:       DefaultLogLevel,
		usage:     "log level for gitplug logs (trace, debug, info, warn, error, off)",
		normalize: strings.ToLower,
	}.register(fs)
}

// register binds the flag, keeping a value that was already set programmatically.
func (f globalFlag) register(fs *pflag.FlagSet) {
	if *f.target == "" {
		*f.target = f.def
		if env := strings.TrimSpace(os.Getenv(f.envVar)); env != "" {
			*f.target = env
			if f.normalize != nil {
				*f.target = f.normalize(env)
			}
		}
	}

	fs.StringVar(f.target, f.name, *f.target, f.usage)
}
