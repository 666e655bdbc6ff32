package config

var _ Provider = (*DefaultLoader)(nil)

type Loader interface {
	Load(path string) (*Config, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type DefaultLoader struct{}

// Config represents the .gitplug.toml file structure.
//
// NOTE: if you add/remove fields you must review applyDefaults and validate.
type Config struct {
	// Host describes the application plugins are installed into.
	Host HostSection `json:"host" toml:"host" yaml:"host"`

	// Hosting configures access to the source-control hosting service.
	Hosting HostingSection `json:"hosting" toml:"hosting" yaml:"hosting"`

	// Cache configures the on-disk cache for remote manifest reads.
	Cache CacheSection `json:"cache" toml:"cache" yaml:"cache"`

	// Store configures the linkage database.
	Store StoreSection `json:"store" toml:"store" yaml:"store"`

	// API configures the daemon's HTTP API.
	API APISection `json:"api" toml:"api" yaml:"api"`

	configFilePath string `toml:"-"`
}

// HostSection contains settings describing the host application.
type HostSection struct {
	// Version pins the host platform version (e.g. "6.6.3.1").
	// When empty the version is read from ComposerLock.
	Version string `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`

	// ComposerLock is the path to the host's composer.lock file.
	ComposerLock string `json:"composerLock,omitempty" toml:"composer_lock,omitempty" yaml:"composer_lock,omitempty"`

	// PlatformPackage is the package whose requirement plugins declare compatibility against.
	PlatformPackage string `json:"platformPackage,omitempty" toml:"platform_package,omitempty" yaml:"platform_package,omitempty"`

	// IdentityClassKey is the composer.json "extra" key holding the plugin's implementation class.
	IdentityClassKey string `json:"identityClassKey,omitempty" toml:"identity_class_key,omitempty" yaml:"identity_class_key,omitempty"`

	// InstallDir is the directory plugins are placed in.
	InstallDir string `json:"installDir,omitempty" toml:"install_dir,omitempty" yaml:"install_dir,omitempty"`

	// WorkDir is the directory host commands are executed from.
	WorkDir string `json:"workDir,omitempty" toml:"work_dir,omitempty" yaml:"work_dir,omitempty"`

	// RefreshCommand makes the host aware of newly placed plugins.
	RefreshCommand []string `json:"refreshCommand,omitempty" toml:"refresh_command,omitempty" yaml:"refresh_command,omitempty"`

	// ActivateCommand installs and activates a plugin, "{name}" is replaced with the plugin name.
	ActivateCommand []string `json:"activateCommand,omitempty" toml:"activate_command,omitempty" yaml:"activate_command,omitempty"`

	// CacheClearCommand invalidates the host's caches.
	CacheClearCommand []string `json:"cacheClearCommand,omitempty" toml:"cache_clear_command,omitempty" yaml:"cache_clear_command,omitempty"`

	// CommandTimeout bounds each host command.
	CommandTimeout Duration `json:"commandTimeout,omitempty" toml:"command_timeout,omitempty" yaml:"command_timeout,omitempty"`
}

// HostingSection contains settings for the source-control hosting service.
type HostingSection struct {
	// APIURL is the base URL of the REST API.
	APIURL string `json:"apiUrl,omitempty" toml:"api_url,omitempty" yaml:"api_url,omitempty"`

	// RawURL is the base URL used to read files at a reference.
	RawURL string `json:"rawUrl,omitempty" toml:"raw_url,omitempty" yaml:"raw_url,omitempty"`

	// WebURL is the base URL archives are downloaded from.
	WebURL string `json:"webUrl,omitempty" toml:"web_url,omitempty" yaml:"web_url,omitempty"`

	// UserAgent is sent with every request.
	UserAgent string `json:"userAgent,omitempty" toml:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// Timeout bounds each request.
	Timeout Duration `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CacheSection contains settings for the manifest cache.
type CacheSection struct {
	Enabled *bool    `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Dir     string   `json:"dir,omitempty"     toml:"dir,omitempty"     yaml:"dir,omitempty"`
	TTL     Duration `json:"ttl,omitempty"     toml:"ttl,omitempty"     yaml:"ttl,omitempty"`
}

// StoreSection contains settings for the linkage database.
type StoreSection struct {
	// Path to the SQLite database file, relative paths are resolved against host.work_dir.
	Path string `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`
}

// APISection contains settings for the daemon's HTTP API.
type APISection struct {
	Addr            string      `json:"addr,omitempty"            toml:"addr,omitempty"             yaml:"addr,omitempty"`
	ShutdownTimeout Duration    `json:"shutdownTimeout,omitempty" toml:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
	CORS            CORSSection `json:"cors"                      toml:"cors"                       yaml:"cors"`
}

// CORSSection contains Cross-Origin Resource Sharing (CORS) configuration.
type CORSSection struct {
	Enable           bool     `json:"enable,omitempty"           toml:"enable,omitempty"            yaml:"enable,omitempty"`
	AllowOrigins     []string `json:"allowOrigins,omitempty"     toml:"allow_origins,omitempty"     yaml:"allow_origins,omitempty"`
	AllowMethods     []string `json:"allowMethods,omitempty"     toml:"allow_methods,omitempty"     yaml:"allow_methods,omitempty"`
	AllowHeaders     []string `json:"allowHeaders,omitempty"     toml:"allow_headers,omitempty"     yaml:"allow_headers,omitempty"`
	ExposeHeaders    []string `json:"exposeHeaders,omitempty"    toml:"expose_headers,omitempty"    yaml:"expose_headers,omitempty"`
	AllowCredentials bool     `json:"allowCredentials,omitempty" toml:"allow_credentials,omitempty" yaml:"allow_credentials,omitempty"`
	MaxAge           Duration `json:"maxAge,omitempty"           toml:"max_age,omitempty"           yaml:"max_age,omitempty"`
}

// CachingEnabled returns whether the manifest cache is enabled, defaulting to true.
func (c CacheSection) CachingEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// ConfigFilePath returns the path of the file this configuration was loaded from.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}
