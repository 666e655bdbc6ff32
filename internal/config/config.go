package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kaws-dev/gitplug/internal/perms"
)

const (
	DefaultComposerLock      = "composer.lock"
	DefaultPlatformPackage   = "shopware/core"
	DefaultIdentityClassKey  = "shopware-plugin-class"
	DefaultInstallDir        = "custom/plugins"
	DefaultCommandTimeout    = 2 * time.Minute
	DefaultHostingAPIURL     = "https://api.github.com"
	DefaultHostingRawURL     = "https://raw.githubusercontent.com"
	DefaultHostingWebURL     = "https://github.com"
	DefaultHostingUserAgent  = "gitplug"
	DefaultHostingTimeout    = 10 * time.Second
	DefaultCacheTTL          = time.Hour
	DefaultStorePath         = ".gitplug/gitplug.db"
	DefaultAPIAddr           = "0.0.0.0:8091"
	DefaultAPIShutdownPeriod = 5 * time.Second
)

// DefaultConfig returns a configuration with every setting populated with its default value.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Init creates the base skeleton configuration file for a gitplug project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load decodes the configuration file at path, applies defaults to anything left unset and validates the result.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'gitplug init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	h := &c.Host
	h.Version = strings.TrimSpace(h.Version)
	if h.Version == "" && strings.TrimSpace(h.ComposerLock) == "" {
		h.ComposerLock = DefaultComposerLock
	}
	h.PlatformPackage = orDefault(h.PlatformPackage, DefaultPlatformPackage)
	h.IdentityClassKey = orDefault(h.IdentityClassKey, DefaultIdentityClassKey)
	h.InstallDir = orDefault(h.InstallDir, DefaultInstallDir)
	if h.RefreshCommand == nil {
		h.RefreshCommand = []string{"bin/console", "plugin:refresh"}
	}
	if h.ActivateCommand == nil {
		h.ActivateCommand = []string{"bin/console", "plugin:install", "--activate", "{name}"}
	}
	if h.CacheClearCommand == nil {
		h.CacheClearCommand = []string{"bin/console", "cache:clear"}
	}
	h.CommandTimeout = Duration(h.CommandTimeout.OrDefault(DefaultCommandTimeout))

	g := &c.Hosting
	g.APIURL = strings.TrimRight(orDefault(g.APIURL, DefaultHostingAPIURL), "/")
	g.RawURL = strings.TrimRight(orDefault(g.RawURL, DefaultHostingRawURL), "/")
	g.WebURL = strings.TrimRight(orDefault(g.WebURL, DefaultHostingWebURL), "/")
	g.UserAgent = orDefault(g.UserAgent, DefaultHostingUserAgent)
	g.Timeout = Duration(g.Timeout.OrDefault(DefaultHostingTimeout))

	c.Cache.TTL = Duration(c.Cache.TTL.OrDefault(DefaultCacheTTL))

	c.Store.Path = orDefault(c.Store.Path, DefaultStorePath)

	c.API.Addr = orDefault(c.API.Addr, DefaultAPIAddr)
	c.API.ShutdownTimeout = Duration(c.API.ShutdownTimeout.OrDefault(DefaultAPIShutdownPeriod))
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Host.PlatformPackage) == "" {
		return NewErrInvalidValue("host.platform_package", c.Host.PlatformPackage)
	}
	if strings.TrimSpace(c.Host.InstallDir) == "" {
		return NewErrInvalidValue("host.install_dir", c.Host.InstallDir)
	}
	if len(c.Host.ActivateCommand) > 0 && strings.TrimSpace(c.Host.ActivateCommand[0]) == "" {
		return NewErrInvalidValue("host.activate_command", strings.Join(c.Host.ActivateCommand, " "))
	}

	for key, value := range map[string]string{
		"hosting.api_url": c.Hosting.APIURL,
		"hosting.raw_url": c.Hosting.RawURL,
		"hosting.web_url": c.Hosting.WebURL,
	} {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewErrInvalidValue(key, value)
		}
	}

	if c.API.CORS.Enable && len(c.API.CORS.AllowOrigins) == 0 {
		return fmt.Errorf("%w: api.cors.allow_origins must be set when CORS is enabled", ErrInvalidValue)
	}

	return nil
}

func orDefault(value string, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
