package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uca-platform/uca-api/api/swagger"
	"github.com/uca-platform/uca-api/internal/handler"
	"github.com/uca-platform/uca-api/internal/middleware"
	"github.com/uca-platform/uca-api/internal/repository"
	"github.com/uca-platform/uca-api/internal/service"
	"github.com/uca-platform/uca-api/pkg/cache"
	"github.com/uca-platform/uca-api/pkg/config"
	"github.com/uca-platform/uca-api/pkg/database"
	"github.com/uca-platform/uca-api/pkg/jobs"
	"github.com/uca-platform/uca-api/pkg/logger"
	corsmiddleware "github.com/uca-platform/uca-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uca-platform/uca-api/pkg/middleware/requestid"
	"github.com/uca-platform/uca-api/pkg/render"
	"github.com/uca-platform/uca-api/pkg/storage"
)

// @title UCA API
// @version 1.0.0
// @description Course assessment statistics, chart export and report generation
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := buildCacheRepository(cfg, logr)
	defer cacheRepo.Close()

	artifactStore, err := storage.NewLocalStorage(cfg.Artifacts.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init artifact storage", "error", err)
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	weightRepo := repository.NewWeightConfigRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)
	statsSvc := service.NewStatisticsService(logr)
	chartSvc := service.NewChartService()
	artifactSvc := service.NewArtifactService(render.NewDefaultEngine(), artifactStore, metricsSvc, logr, cfg.Artifacts.ExportTimeout)
	analysisSvc := service.NewAnalysisService(
		courseRepo, sectionRepo, assessmentRepo, weightRepo, distributionRepo,
		statsSvc, chartSvc, artifactSvc, cacheSvc, cfg.Analytics.CacheTTL, logr,
	)
	snapshotSvc := service.NewSnapshotService(
		courseRepo, sectionRepo, assessmentRepo, weightRepo, distributionRepo,
		analysisSvc, logr,
	)

	validate := validator.New()
	var reportSvc *service.ReportService
	queue := jobs.NewQueue("reports", func(ctx context.Context, job jobs.Job) error {
		return reportSvc.HandleJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc = service.NewReportService(
		reportJobRepo, queue, analysisSvc, artifactSvc, artifactStore, reportStore,
		signer, metricsSvc, validate, logr,
		service.ReportServiceConfig{
			ResultTTL:        cfg.Reports.ResultTTL,
			CleanupInterval:  cfg.Reports.CleanupInterval,
			DownloadBasePath: cfg.APIPrefix + "/reports/download",
		},
	)
	queue.Start(ctx)
	defer queue.Stop()

	reportSvc.RecoverQueued(ctx)
	go reportSvc.StartCleanup(ctx)

	analysisHandler := handler.NewAnalysisHandler(analysisSvc, snapshotSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/courses/:id/analysis", analysisHandler.CourseAnalysis)
		api.POST("/courses/:id/charts", analysisHandler.ExportCharts)
		api.GET("/courses/:id/snapshot", analysisHandler.Snapshot)
		api.PUT("/courses/:id/snapshot", analysisHandler.ImportSnapshot)

		api.POST("/reports", reportHandler.Create)
		api.GET("/reports/:id", reportHandler.Status)
		api.GET("/reports/download/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown", "error", err)
	}
}

// buildCacheRepository returns a repository backed by Redis when statistics
// caching is enabled, or one wrapping a nil client that degrades every
// operation to a miss.
func buildCacheRepository(cfg *config.Config, logr *zap.Logger) *repository.CacheRepository {
	if !cfg.Analytics.CacheEnabled {
		return repository.NewCacheRepository(nil, logr)
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, statistics cache disabled", "error", err)
		return repository.NewCacheRepository(nil, logr)
	}
	return repository.NewCacheRepository(client, logr)
}
