package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/inovatickets/validador/internal/app"
	"github.com/inovatickets/validador/internal/clock"
	"github.com/inovatickets/validador/internal/config"
	"github.com/inovatickets/validador/internal/remote"
	"github.com/inovatickets/validador/internal/storage/sqlite"
	"github.com/inovatickets/validador/migrations"
)

var rootCmd = &cobra.Command{
	Use:   "validador",
	Short: "Offline-first ticket validation for venue access control",
	Long: `validador keeps a local snapshot of events, sectors and ticket codes,
accepts or rejects scanned codes with no network required, and reconciles
with the backend whenever connectivity allows.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(
		syncCmd,
		watchCmd,
		validateCmd,
		eventsCmd,
		sectorsCmd,
		statusCmd,
		logsCmd,
	)
}

// env bundles everything a command needs: configuration, logger, the open
// store and the services built on it.
type env struct {
	cfg        *config.Config
	log        *slog.Logger
	db         *sqlite.DB
	validation *app.ValidationService
	sync       *app.SyncService
	events     *app.EventService
	logs       *app.LogService
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := buildLogger(cfg.Log)

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(ctx, db.Conn()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	gateway := remote.New(cfg.Backend.URL, cfg.Backend.APIKey,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
		remote.WithPageSize(cfg.Sync.PageSize),
	)

	clk := clock.NewSystem()
	logSvc := app.NewLogService(sqlite.NewLogRepository(db), clk, logger)

	return &env{
		cfg:        cfg,
		log:        logger,
		db:         db,
		validation: app.NewValidationService(sqlite.NewCodeRepository(db), logSvc, clk, logger),
		sync:       app.NewSyncService(sqlite.NewSyncRepository(db), gateway, logSvc, clk, logger),
		events:     app.NewEventService(sqlite.NewEventRepository(db), logSvc, cfg.Device.Name, logger),
		logs:       logSvc,
	}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn("close database", "err", err)
	}
}

func buildLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.File != "" {
		return slog.New(slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 3,
		}, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
