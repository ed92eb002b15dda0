// Package providers contains dependency injection providers for the BookBlog server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/logger"
)

// ConfigProvider returns a provider that loads configuration with the given
// command-line overrides.
func ConfigProvider(flags config.Flags) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.Load(flags)
	}
}

// ProvideLogger provides the structured logger. Records go to stderr so
// CLI output on stdout stays machine readable.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
	)

	return log, nil
}
