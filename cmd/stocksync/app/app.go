// Package app provides the application context and dependency wiring for
// the stocksync CLI: configuration, logging, and construction of the
// catalog and supplier clients the commands run against.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Kirkidoo/Sync-Stock/internal/catalog"
	"github.com/Kirkidoo/Sync-Stock/pkg/errors"
)

// App represents the stocksync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Catalog client (lazy-initialized, singleton)
	mu      sync.Mutex
	catalog *catalog.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Catalog returns the catalog client, creating it lazily so commands that
// never touch the catalog (verify) do not require its credentials.
func (a *App) Catalog() (*catalog.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}

	client, err := catalog.NewClient(catalog.Config{
		ShopDomain:  a.config.ShopDomain,
		AccessToken: a.config.AccessToken,
		APIVersion:  a.config.APIVersion,
		BatchSize:   a.config.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	a.catalog = client
	return client, nil
}

// Pairs returns the configured supplier/location pairs, filtered to name
// when it is non-empty.
func (a *App) Pairs(name string) ([]SupplierPair, error) {
	if len(a.config.Suppliers) == 0 {
		return nil, errors.NewConfigError("suppliers", "no supplier pairs configured", nil)
	}
	if name == "" {
		return a.config.Suppliers, nil
	}
	for _, pair := range a.config.Suppliers {
		if pair.Name == name {
			return []SupplierPair{pair}, nil
		}
	}
	return nil, errors.NewConfigError("suppliers", "unknown supplier: "+name, nil)
}
