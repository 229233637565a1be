// Command climated serves nearest-station degree-day lookups over HTTP.
//
// At startup it loads a station dataset (STATIONS_PATH), builds the immutable
// nearest-neighbor index, optionally loads a geonames postal-code table
// (ZIPDB_PATH) for ZIP lookups, and serves /lookup/{zip}, /nearest, /healthz,
// /readyz, and /metrics until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-normals/internal/adapter/httpapi"
	"github.com/couchcryptid/climate-normals/internal/adapter/stationfile"
	"github.com/couchcryptid/climate-normals/internal/adapter/zipcode"
	"github.com/couchcryptid/climate-normals/internal/config"
	"github.com/couchcryptid/climate-normals/internal/index"
	"github.com/couchcryptid/climate-normals/internal/observability"
	"github.com/couchcryptid/climate-normals/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	rows, badLines, err := stationfile.Load(cfg.StationsPath, cfg.StationsFormat)
	if err != nil {
		logger.Error("failed to load station file", "path", cfg.StationsPath, "error", err)
		os.Exit(1)
	}

	ix, report := index.Build(rows, index.WithCellSize(cfg.GridCellDeg))
	logger.Info("station index built",
		"path", cfg.StationsPath,
		"stations", report.Loaded,
		"skipped_rows", report.Skipped,
		"replaced_duplicates", report.Replaced,
		"unreadable_lines", badLines,
	)
	for _, sample := range report.Samples {
		logger.Debug("skipped station row", "detail", sample)
	}
	if report.Loaded == 0 {
		logger.Warn("station index is empty; all lookups will return not found")
	}
	metrics.IndexStations.Set(float64(report.Loaded))
	metrics.RowsSkipped.Set(float64(report.Skipped))

	opts := []resolver.Option{
		resolver.WithMetrics(metrics),
		resolver.WithFarMatchRadius(cfg.FarMatchKm),
	}
	if cfg.ZIPDBPath != "" {
		zdb, err := zipcode.Load(cfg.ZIPDBPath)
		if err != nil {
			logger.Error("failed to load zip database", "path", cfg.ZIPDBPath, "error", err)
			os.Exit(1)
		}
		logger.Info("zip database loaded", "path", cfg.ZIPDBPath, "entries", zdb.Len(), "cache_size", cfg.ZIPCacheSize)
		opts = append(opts, resolver.WithZIPGeocoder(zdb, cfg.ZIPCacheSize))
	} else {
		logger.Info("zip lookups disabled (ZIPDB_PATH not set)")
	}

	res := resolver.New(ix, logger, opts...)
	srv := httpapi.NewServer(cfg.HTTPAddr, res, res, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
