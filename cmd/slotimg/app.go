package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/config"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/db"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/imagestore/local"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/logging"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/quota"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/service"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/store"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	metrics     *metrics.Recorder
	assets      *service.AssetService
	assignments *service.AssignmentService
	resolver    *service.Resolver

	closers []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, closers: []func(){cleanup}}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, func() { closeDB(database, logger) })

	images, err := local.NewLocalImageStore(cfg.MediaPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	a.metrics = metrics.New()
	a.assets = service.NewAssetService(
		store.NewAssetStore(database),
		images,
		quota.NewBudget(cfg.StorageQuota, images.Usage),
		service.Options{
			QuotaThreshold: cfg.QuotaThreshold,
			QuotaTimeout:   cfg.QuotaCheckTimeout,
			MediaURLPrefix: cfg.MediaURLPrefix,
		},
		a.metrics,
		logger,
	)
	a.assignments = service.NewAssignmentService(store.NewAssignmentStore(database), logger)
	a.assets.OnDeleted(a.assignments.AssetDeleted)
	a.resolver = service.NewResolver(a.assignments, a.assets, a.metrics, logger)

	logger.Debug("application wired",
		"db_path", cfg.DBPath,
		"media_path", cfg.MediaPath,
		"storage_quota", humanize.Bytes(uint64(cfg.StorageQuota)),
	)
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func closeDB(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
