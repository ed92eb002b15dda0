// Package di provides dependency injection configuration for the BookBlog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookblog/bookblog-server/internal/auth"
	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/di/providers"
	"github.com/bookblog/bookblog-server/internal/logger"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/service"
	"github.com/bookblog/bookblog-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
// Nothing is constructed until first invoked.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigProvider(flags))
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverProcessor)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideLoginLimiter)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideArchiver)
	do.Provide(injector, providers.ProvideRemoteStore)
	do.Provide(injector, providers.ProvideBackupService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the server graph and starts listening. The default
// administrator is created before the first request can arrive.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		warm[*config.Config],
		warm[*logger.Logger],
		warm[*store.Store],
		warm[*images.Storage],
		warm[*auth.TokenService],
		warm[*service.AuthService],
		warm[*service.CatalogService],
		warm[*backup.BackupService],
		providers.EnsureDefaultAdmin,
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}

	providers.PruneCommentsOnStart(injector)

	return warm[*providers.HTTPServerHandle](injector)
}

// warm constructs T eagerly so configuration errors surface at startup.
func warm[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
