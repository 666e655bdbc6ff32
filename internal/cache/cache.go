package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/kaws-dev/gitplug/internal/files"
	"github.com/kaws-dev/gitplug/internal/perms"
)

// Cache stores remote manifest reads on disk, keyed by the URL they were read from.
// NewCache should be used to create instances of Cache.
type Cache struct {
	// dir is the directory where cache files are stored.
	dir string

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// refresh ignores existing entries and overwrites them when true.
	refresh bool

	// logger is used for logging cache operations.
	logger hclog.Logger
}

// FetchFunc retrieves the content for a key when no fresh cache entry exists.
type FetchFunc func() ([]byte, error)

// NewCache creates a new cache instance for remote manifests.
func NewCache(logger hclog.Logger, opts ...Option) (*Cache, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	// Only create cache directory if caching is enabled.
	if options.enabled {
		if err := files.EnsureAtLeastRegularDir(options.dir); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Cache{
		dir:     options.dir,
		logger:  logger.Named("cache"),
		enabled: options.enabled,
		refresh: options.refreshCache,
		ttl:     options.ttl,
	}, nil
}

// Fetch returns the cached content for key when a fresh entry exists,
// otherwise it calls fetch and stores a successful result.
// Errors from fetch are returned unchanged and never cached.
func (c *Cache) Fetch(key string, fetch FetchFunc) ([]byte, error) {
	if !c.enabled {
		c.logger.Trace("Cache disabled, fetching", "key", key)
		return fetch()
	}

	cachePath := c.path(key)

	if c.refresh {
		c.logger.Debug("Cache refresh requested", "key", key)
	} else if !c.isExpired(cachePath) {
		data, err := os.ReadFile(cachePath)
		if err == nil {
			c.logger.Trace("Using cached file", "key", key, "path", cachePath)
			return data, nil
		}
		c.logger.Warn("Failed to read cache file, fetching", "key", key, "path", cachePath, "error", err)
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := c.write(cachePath, data); err != nil {
		c.logger.Warn("Failed to update cache", "key", key, "path", cachePath, "error", err)
	}

	return data, nil
}

// path returns the cache file path for a key.
func (c *Cache) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", hash))
}

// write saves data to a temporary file in the cache directory and renames it into place.
func (c *Cache) write(cachePath string, data []byte) error {
	tmpFile, err := os.CreateTemp(c.dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath) // Clean up on any error.
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Chmod(tmpPath, perms.RegularFile); err != nil {
		return fmt.Errorf("failed to set cache file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	c.logger.Trace("Successfully cached file", "path", cachePath)
	return nil
}

// isExpired checks if a cache file is expired based on modification time.
func (c *Cache) isExpired(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true // Treat missing as expired.
	}
	return time.Since(info.ModTime()) > c.ttl
}
