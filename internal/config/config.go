// Package config loads shopsync configuration from the environment,
// optional .env files, and an optional config file, in that order of
// precedence. Viper handles the merge; callers receive a plain struct.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// Environment variable names understood by shopsync.
const (
	EnvStoragePath = "SHOP_STORAGE_PATH"
	EnvCatalogDir  = "SHOP_CATALOG_DIR"
	EnvClientID    = "ETSY_CLIENT_ID"
	EnvShopID      = "ETSY_SHOP_ID"
)

// Config holds the resolved application configuration.
type Config struct {
	// StoragePath is the settings/credentials JSON document location.
	StoragePath string

	// CatalogDir is the root directory for namespaced entity snapshots.
	CatalogDir string

	// ClientID is the Etsy application API key (keystring).
	ClientID string

	// ShopID is the numeric shop identifier, kept as a string because it
	// only ever appears inside resource paths.
	ShopID string

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load resolves configuration from .env files, environment variables, and
// viper-readable config files. Only ClientID is validated here; the stores
// apply their own defaults for paths.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	cfg := &Config{
		StoragePath: getString(EnvStoragePath),
		CatalogDir:  getString(EnvCatalogDir),
		ClientID:    getString(EnvClientID),
		ShopID:      getString(EnvShopID),
		LogLevel:    getStringDefault("LOG_LEVEL", "info"),
		LogFormat:   getStringDefault("LOG_FORMAT", "auto"),
	}

	if cfg.StoragePath == "" {
		cfg.StoragePath = DefaultStoragePath()
	}
	if cfg.CatalogDir == "" {
		cfg.CatalogDir = DefaultCatalogDir()
	}

	return cfg, nil
}

// RequireClientID returns a ConfigError when no API key is configured.
// Commands that talk to the provider call this up front so the operator
// gets one clear message instead of a failed request.
func (c *Config) RequireClientID() error {
	if c.ClientID == "" {
		return &errors.ConfigError{
			Component: "etsy",
			Message:   "environment variable " + EnvClientID + " not set",
		}
	}
	return nil
}

// RequireShopID returns a ConfigError when no shop id is configured.
func (c *Config) RequireShopID() error {
	if c.ShopID == "" {
		return &errors.ConfigError{
			Component: "etsy",
			Message:   "environment variable " + EnvShopID + " not set",
		}
	}
	return nil
}

// DefaultStoragePath returns the settings document location used when
// SHOP_STORAGE_PATH is not set: a well-known file in the user's home.
func DefaultStoragePath() string {
	return filepath.Join(homeDir(), ".shopsync", "shopsync.json")
}

// DefaultCatalogDir returns the catalog root used when SHOP_CATALOG_DIR is
// not set.
func DefaultCatalogDir() string {
	return filepath.Join(homeDir(), ".shopsync", "catalog")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// getString checks both OS environment variables and viper configuration.
func getString(key string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(key)
}

func getStringDefault(key, def string) string {
	if v := getString(key); v != "" {
		return v
	}
	return def
}
