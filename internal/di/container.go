// Package di provides dependency injection configuration for the Shelfplay server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfplayapp/shelfplay-server/internal/config"
	"github.com/shelfplayapp/shelfplay-server/internal/di/providers"
	"github.com/shelfplayapp/shelfplay-server/internal/logger"
	"github.com/shelfplayapp/shelfplay-server/internal/shelf"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Repository
	do.Provide(injector, providers.ProvideShelf)

	return injector
}

// Bootstrap initializes all services and returns any construction error.
// This triggers lazy initialization of the whole dependency graph.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*shelf.Repository](injector); err != nil {
		return err
	}
	return nil
}
