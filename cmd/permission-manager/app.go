package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/asakaida/permission-manager/internal/handlers"
	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/infrastructure/database"
	"github.com/asakaida/permission-manager/internal/infrastructure/logging"
	"github.com/asakaida/permission-manager/internal/infrastructure/metrics"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/asakaida/permission-manager/internal/repositories/postgres"
	"github.com/asakaida/permission-manager/internal/repositories/sqlite"
	"github.com/asakaida/permission-manager/internal/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds state shared by every subcommand of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	dataDir    string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

// loadConfig runs before every subcommand
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	viper.Reset()

	if err := config.InitConfig(a.configFile); err != nil {
		return err
	}
	if a.dataDir != "" {
		viper.Set("DATA_DIR", a.dataDir)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, a.stderr)
	slog.SetDefault(a.logger)
	return nil
}

// withHandler opens the store for the duration of one operation and releases it afterwards
func (a *app) withHandler(fn func(h *handlers.PermissionHandler) error) error {
	db, err := database.Open(a.cfg)
	if err != nil {
		return fmt.Errorf("permission database is unavailable: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			a.logger.Warn("failed to close database", "error", cerr)
		}
	}()
	a.logger.Debug("opened permission database", "driver", db.Driver(), "location", db.Location())

	exporter := metrics.NewPrometheusExporter()
	defer func() {
		if a.cfg.Metrics.TextFile == "" {
			return
		}
		if werr := exporter.WriteTextfile(a.cfg.Metrics.TextFile); werr != nil {
			a.logger.Warn("failed to write metrics textfile", "path", a.cfg.Metrics.TextFile, "error", werr)
		}
	}()

	repo := metrics.NewInstrumentedRepository(a.newRepository(db), exporter)
	svc := services.NewPermissionService(repo, services.PermissionServiceOptions{
		PreservePermissions: a.cfg.Editor.PreservePermissions,
	}, a.logger)

	return fn(handlers.NewPermissionHandler(svc, a.stdout, a.useColor()))
}

func (a *app) newRepository(db database.Database) repositories.PermissionRepository {
	if db.Driver() == config.DriverPostgres {
		return postgres.NewPostgresPermissionRepository(db.Conn(), a.logger)
	}
	return sqlite.NewSQLitePermissionRepository(db.Conn(), a.logger)
}
