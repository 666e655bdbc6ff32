package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		ConfigFile = ""
		LogPath = ""
		LogLevel = ""
	})
}

func TestInitConfigFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /custom/path/config.toml  ",
			expected: "/custom/path/config.toml",
		},
		{
			name:     "env var missing",
			value:    "",
			expected: DefaultConfigFile,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: DefaultConfigFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarConfigFile, tc.value)
			resetFlags(t)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initConfigFile(fs)

			require.Equal(t, tc.expected, ConfigFile)
			flag := fs.Lookup(FlagNameConfigFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestInitLogger_EnvVars(t *testing.T) {
	tests := []struct {
		name          string
		logPathValue  string
		logLevelValue string
		expectedPath  string
		expectedLevel string
	}{
		{
			name:          "both env vars set with extra whitespace",
			logPathValue:  "  /var/log/gitplug.log  ",
			logLevelValue: "  DEBUG  ",
			expectedPath:  "/var/log/gitplug.log",
			expectedLevel: "debug",
		},
		{
			name:          "env vars set to only whitespace",
			logPathValue:  "   ",
			logLevelValue: "   ",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarLogPath, tc.logPathValue)
			t.Setenv(EnvVarLogLevel, tc.logLevelValue)
			resetFlags(t)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initLogger(fs)

			require.Equal(t, tc.expectedPath, LogPath)
			require.Equal(t, tc.expectedLevel, LogLevel)
		})
	}
}

func TestInitFlags_Precedence(t *testing.T) {
	tests := []struct {
		name           string
		envConfig      string
		envLogLevel    string
		cmdLineArgs    []string
		expectedConfig string
		expectedLogLvl string
	}{
		{
			name:        "flags take precedence over env",
			envConfig:   "/env/config.toml",
			envLogLevel: "warn",
			cmdLineArgs: []string{
				"--" + FlagNameConfigFile, "/flag/config.toml",
				"--" + FlagNameLogLevel, "trace",
			},
			expectedConfig: "/flag/config.toml",
			expectedLogLvl: "trace",
		},
		{
			name:           "env used when flags not set",
			envConfig:      "/env/only/config.toml",
			envLogLevel:    "error",
			expectedConfig: "/env/only/config.toml",
			expectedLogLvl: "error",
		},
		{
			name:           "defaults used when nothing set",
			expectedConfig: DefaultConfigFile,
			expectedLogLvl: DefaultLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarConfigFile, tc.envConfig)
			t.Setenv(EnvVarLogPath, "")
			t.Setenv(EnvVarLogLevel, tc.envLogLevel)
			resetFlags(t)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			InitFlags(fs)
			require.NoError(t, fs.Parse(tc.cmdLineArgs))

			require.Equal(t, tc.expectedConfig, ConfigFile)
			require.Equal(t, tc.expectedLogLvl, LogLevel)
			require.Equal(t, DefaultLogPath, LogPath)
		})
	}
}
