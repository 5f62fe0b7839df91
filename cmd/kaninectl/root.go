package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kanineapp/kanine-server/internal/config"
	"github.com/kanineapp/kanine-server/internal/logger"
	"github.com/kanineapp/kanine-server/internal/search"
	"github.com/kanineapp/kanine-server/internal/store/sqlite"
)

// globalFlags are shared by every subcommand and forwarded to the config loader,
// so the CLI resolves the data directory exactly like the server does.
type globalFlags struct {
	dataPath string
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "kaninectl",
		Short: "Administration tool for a Kanine server data directory",
		Long: `kaninectl works directly on the SQLite database and search index of a
Kanine server. It reads the same configuration as the server (flags, environment,
.env file) so DATA_PATH only needs to be set once.

Stop the server before rebuilding the search index: the index is locked while open.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "Data directory (default: DATA_PATH or ~/Kanine/data)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to .env file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newUserCmd(flags))
	cmd.AddCommand(newSearchCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))

	return cmd
}

// load resolves the configuration and a logger writing to w.
func (g *globalFlags) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	args := []string{"-env-file", g.envFile}
	if g.dataPath != "" {
		args = append(args, "-data-path", g.dataPath)
	}
	if g.logLevel != "" {
		args = append(args, "-log-level", g.logLevel)
	}

	cfg, err := config.LoadConfigFrom(flag.NewFlagSet("kaninectl", flag.ContinueOnError), args)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{
		Writer:      w,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	return cfg, log.Logger, nil
}

// openStore opens the configured database.
func openStore(cfg *config.Config, log *slog.Logger) (*sqlite.Store, error) {
	st, err := sqlite.Open(cfg.Data.DatabasePath(), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// openIndex opens the configured search index.
func openIndex(cfg *config.Config, log *slog.Logger) (*search.SearchIndex, error) {
	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return index, nil
}
