// Package providers contains dependency injection providers for the Kanine server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/kanineapp/kanine-server/internal/config"
	"github.com/kanineapp/kanine-server/internal/logger"
)

// Version is the server version, set at build time with
// -ldflags "-X github.com/kanineapp/kanine-server/internal/di/providers.Version=...".
var Version = "dev"

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Kanine Server",
		"version", Version,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}
