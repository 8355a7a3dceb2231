// Package app provides the application context and dependency wiring for
// the shopsync CLI. It centralizes configuration, logging, and the lazily
// constructed stores and API client that commands share.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dkstudio/shopsync/internal/catalog"
	"github.com/dkstudio/shopsync/internal/config"
	"github.com/dkstudio/shopsync/internal/etsy"
	"github.com/dkstudio/shopsync/internal/reconcile"
	"github.com/dkstudio/shopsync/internal/shopstore"
	"github.com/dkstudio/shopsync/pkg/logging"
)

// App holds the shopsync application with all its dependencies. Stores and
// the API client are created lazily the first time a command needs them, so
// offline commands never touch credentials.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *config.Config

	// Logger
	logger zerolog.Logger

	mu      sync.Mutex
	store   *shopstore.Store
	catalog *catalog.Store
	client  *etsy.Client
}

// New creates an App with the given version information, loading
// configuration from the environment.
func New(version, commit, date string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  cfg,
	}
	a.logger = logging.New(&logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	return a, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// Store returns the settings/credentials store, creating it on first use.
func (a *App) Store() *shopstore.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store == nil {
		a.store = shopstore.Open(a.config.StoragePath)
	}
	return a.store
}

// Catalog returns the local entity catalog, creating it on first use.
func (a *App) Catalog() *catalog.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.catalog == nil {
		a.catalog = catalog.Open(a.config.CatalogDir)
	}
	return a.catalog
}

// Client returns the Etsy API client. It fails when no API key is
// configured; commands that reach the network call this first so the
// operator gets one clear configuration error.
func (a *App) Client() (*etsy.Client, error) {
	if err := a.config.RequireClientID(); err != nil {
		return nil, err
	}
	store := a.Store()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		a.client = etsy.New(store, a.config.ClientID)
	}
	return a.client, nil
}

// Engine builds a reconciliation engine wired with terminal prompts. It
// requires both the API key and the shop id.
func (a *App) Engine() (*reconcile.Engine, error) {
	if err := a.config.RequireShopID(); err != nil {
		return nil, err
	}
	client, err := a.Client()
	if err != nil {
		return nil, err
	}
	return reconcile.New(
		a.Catalog(),
		client,
		a.config.ShopID,
		NewTerminalChooser(),
		NewTerminalConfirmer(),
		a.logger,
	), nil
}
