package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/peak-catalog/internal/adapter/cloudinary"
	httpadapter "github.com/couchcryptid/peak-catalog/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/peak-catalog/internal/adapter/kafka"
	"github.com/couchcryptid/peak-catalog/internal/adapter/peakapi"
	"github.com/couchcryptid/peak-catalog/internal/catalog"
	"github.com/couchcryptid/peak-catalog/internal/config"
	"github.com/couchcryptid/peak-catalog/internal/observability"
	"github.com/couchcryptid/peak-catalog/internal/state"
)

const imageFolder = "peaks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	backend := peakapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)
	store := state.NewStore(cfg.SessionCapacity, metrics)

	// Signed uploads when API credentials are present, otherwise the unsigned preset.
	var uploader catalog.ImageUploader
	if cfg.CloudinarySigned() {
		signed, err := cloudinary.NewSignedUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, imageFolder, cfg.CloudinaryTimeout, metrics, logger)
		if err != nil {
			logger.Error("cloudinary setup failed", "error", err)
			os.Exit(1)
		}
		uploader = signed
		logger.Info("image uploads enabled", "mode", "signed")
	} else {
		preset, err := cloudinary.NewPresetUploader(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset, cfg.CloudinaryTimeout, metrics, logger)
		if err != nil {
			logger.Error("cloudinary setup failed", "error", err)
			os.Exit(1)
		}
		uploader = preset
		logger.Info("image uploads enabled", "mode", "preset", "configured", cfg.CloudinaryCloudName != "" && cfg.CloudinaryUploadPreset != "")
	}

	// Peak change events are feature-flagged via PEAK_EVENTS_ENABLED / KAFKA_BROKERS.
	var (
		publisher *kafkaadapter.Publisher
		events    catalog.EventPublisher
	)
	if cfg.PeakEventsEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		events = publisher
		logger.Info("peak change events enabled", "topic", cfg.KafkaPeakTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("peak change events disabled")
	}

	svc := catalog.New(backend, store, uploader, events, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
