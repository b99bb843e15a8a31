package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tsunami-statement-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tsunami-statement-service/internal/adapter/kafka"
	"github.com/couchcryptid/tsunami-statement-service/internal/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/observability"
	"github.com/couchcryptid/tsunami-statement-service/internal/pipeline"
	"github.com/couchcryptid/tsunami-statement-service/internal/tracker"
	"github.com/joho/godotenv"
)

func main() {
	// Local overrides; absent in deployed environments.
	_ = godotenv.Load(".env.localdev")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	site, err := config.LoadSite(cfg.SiteConfigPath)
	if err != nil {
		logger.Error("failed to load site", "error", err, "path", cfg.SiteConfigPath)
		os.Exit(1)
	}
	templates, err := config.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		logger.Error("failed to load templates", "error", err, "dir", cfg.TemplateDir)
		os.Exit(1)
	}
	canned, err := config.LoadCannedTemplates(cfg.TemplateDir)
	if err != nil {
		logger.Error("failed to load canned templates", "error", err, "dir", cfg.TemplateDir)
		os.Exit(1)
	}
	logger.Info("site loaded",
		"office", site.Office,
		"zones", len(site.Zones),
		"arrival_points", len(site.ArrivalPoints),
		"templates", len(templates),
		"canned_templates", len(canned),
	)

	issuances := tracker.New(cfg.IssuanceLogPath, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(site, logger,
		pipeline.WithTemplates(templates),
		pipeline.WithCannedTemplates(canned),
		pipeline.WithBroadcastExpiry(cfg.BroadcastExpiry),
		pipeline.WithDedupeCacheSize(cfg.DedupeCacheSize),
	)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize,
		pipeline.WithIssuanceRecorder(issuances))

	audit, err := pipeline.ScheduleAudit(cfg.IssuanceAuditSchedule, issuances, metrics, logger)
	if err != nil {
		logger.Error("failed to schedule issuance audit", "error", err)
		os.Exit(1)
	}
	pipeline.AuditIssuances(issuances, metrics, logger)
	audit.Start()

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger,
		httpadapter.WithComposer(transformer),
		httpadapter.WithIssuanceLog(issuances),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-audit.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
