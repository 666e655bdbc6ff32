package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gitplug.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultLoader_Load(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
[host]
version = "6.6.3.1"
install_dir = "plugins"
activate_command = ["bin/console", "plugin:install", "--activate", "{name}"]

[hosting]
api_url = "http://localhost:9000/"
timeout = "3s"

[cache]
enabled = false

[api]
addr = "localhost:9999"

[api.cors]
enable = true
allow_origins = ["http://localhost:3000"]
`)

	cfg, err := (&DefaultLoader{}).Load(path)
	require.NoError(t, err)

	require.Equal(t, path, cfg.ConfigFilePath())
	require.Equal(t, "6.6.3.1", cfg.Host.Version)
	require.Empty(t, cfg.Host.ComposerLock)
	require.Equal(t, "plugins", cfg.Host.InstallDir)
	require.Equal(t, DefaultPlatformPackage, cfg.Host.PlatformPackage)
	require.Equal(t, DefaultIdentityClassKey, cfg.Host.IdentityClassKey)
	require.Equal(t, "http://localhost:9000", cfg.Hosting.APIURL)
	require.Equal(t, DefaultHostingRawURL, cfg.Hosting.RawURL)
	require.Equal(t, 3*time.Second, time.Duration(cfg.Hosting.Timeout))
	require.False(t, cfg.Cache.CachingEnabled())
	require.Equal(t, DefaultCacheTTL, time.Duration(cfg.Cache.TTL))
	require.Equal(t, "localhost:9999", cfg.API.Addr)
	require.True(t, cfg.API.CORS.Enable)
}

func TestDefaultLoader_Load_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := (&DefaultLoader{}).Load(writeConfigFile(t, ``))
	require.NoError(t, err)

	require.Equal(t, DefaultComposerLock, cfg.Host.ComposerLock)
	require.Equal(t, DefaultInstallDir, cfg.Host.InstallDir)
	require.Equal(t, DefaultHostingAPIURL, cfg.Hosting.APIURL)
	require.Equal(t, DefaultHostingWebURL, cfg.Hosting.WebURL)
	require.Equal(t, DefaultHostingUserAgent, cfg.Hosting.UserAgent)
	require.Equal(t, DefaultHostingTimeout, time.Duration(cfg.Hosting.Timeout))
	require.True(t, cfg.Cache.CachingEnabled())
	require.Equal(t, DefaultStorePath, cfg.Store.Path)
	require.Equal(t, []string{"bin/console", "cache:clear"}, cfg.Host.CacheClearCommand)
}

func TestDefaultLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		missing     bool
		errContains string
	}{
		{name: "missing file", missing: true, errContains: "run: 'gitplug init'"},
		{name: "invalid toml", content: "[host", errContains: "failed to decode config"},
		{name: "invalid api url", content: "[hosting]\napi_url = \"ftp://example.com\"", errContains: "hosting.api_url"},
		{name: "invalid timeout", content: "[hosting]\ntimeout = \"soon\"", errContains: "failed to decode config"},
		{name: "cors without origins", content: "[api.cors]\nenable = true", errContains: "allow_origins"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "missing.toml")
			if !tc.missing {
				path = writeConfigFile(t, tc.content)
			}

			_, err := (&DefaultLoader{}).Load(path)
			require.ErrorIs(t, err, ErrConfigLoadFailed)
			require.ErrorContains(t, err, tc.errContains)
		})
	}
}

func TestDefaultLoader_Init(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".gitplug.toml")
	loader := &DefaultLoader{}

	require.NoError(t, loader.Init(path))
	require.ErrorContains(t, loader.Init(path), "already exists")

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Hosting, cfg.Hosting)
	require.Equal(t, DefaultConfig().Host.ActivateCommand, cfg.Host.ActivateCommand)
}
