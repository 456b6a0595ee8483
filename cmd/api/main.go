package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldservice-platform/internal/aigen"
	"fieldservice-platform/internal/audit"
	"fieldservice-platform/internal/auth"
	"fieldservice-platform/internal/config"
	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/httpapi"
	"fieldservice-platform/internal/ingest"
	"fieldservice-platform/internal/media"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/internal/pipeline"
	"fieldservice-platform/internal/pricing"
	"fieldservice-platform/internal/reporting"
	"fieldservice-platform/internal/review"
	"fieldservice-platform/pkg/logger"
	"fieldservice-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Persistence
	consultRepo := consultations.NewPostgresRepo(db)
	estStore := estimates.NewPostgresStore(db)
	pageStore := pages.NewPostgresStore(db)
	auditRepo := audit.NewMemoryRepo()
	// Price book and audit storage are in-memory until their Postgres
	// implementations land.
	catalogRepo := &pricing.MemoryRepo{}

	// Provider clients
	videoHost := media.NewVideoHostClient(cfg.Providers.VideoHostURL, cfg.Providers.VideoHostKey, 0)
	stt := media.NewSTTClient(cfg.Providers.STTURL, cfg.Providers.STTKey, 0)
	genClient := aigen.NewHTTPClient(cfg.Providers.GenURL, cfg.Providers.GenKey, cfg.Providers.GenModel, 0)

	// Domain services
	pipelineSvc := pipeline.NewService(consultRepo, rdb, log)
	pageSvc := pages.NewService(pageStore)
	estSvc := estimates.NewService(estStore)
	auditSvc := audit.NewService(auditRepo)
	ingestSvc := ingest.NewService(consultRepo, pipelineSvc, videoHost, stt, cfg.Pipeline.TranscribeTimeout, log)
	generator := aigen.NewGenerator(consultRepo, pipelineSvc, pageSvc, genClient, rdb, aigen.GeneratorConfig{
		CapLimit:     cfg.Pipeline.GenerationCap,
		StageTimeout: cfg.Pipeline.GenerateTimeout,
	}, log)
	reviewSvc := review.NewService(consultRepo, pipelineSvc, estSvc, estStore, pageSvc, pricing.NewService(catalogRepo), auditSvc, log)
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db))

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		authMW: auth.RequireAccessToken(authManager),
		handlers: httpapi.Handlers{
			Auth:      authManager,
			Pipeline:  pipelineSvc,
			Ingest:    ingestSvc,
			Generator: generator,
			Review:    reviewSvc,
			Reports:   reportSvc,
		},
		webhooks: httpapi.WebhookHandlers{
			Ingest: ingestSvc,
			Secret: cfg.Providers.WebhookSecret,
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
