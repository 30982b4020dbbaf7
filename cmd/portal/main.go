package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Mk-yl/convocation-portal/api/swagger"
	"github.com/Mk-yl/convocation-portal/internal/handler"
	"github.com/Mk-yl/convocation-portal/internal/middleware"
	"github.com/Mk-yl/convocation-portal/internal/repository"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	"github.com/Mk-yl/convocation-portal/pkg/cache"
	"github.com/Mk-yl/convocation-portal/pkg/config"
	"github.com/Mk-yl/convocation-portal/pkg/logger"
	corsmiddleware "github.com/Mk-yl/convocation-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/Mk-yl/convocation-portal/pkg/middleware/requestid"
)

// @title Convocation Portal API
// @version 1.0.0
// @description Import candidates, generate convocations and email them
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

	metrics := service.NewMetricsService()
	upstream := repository.NewUpstreamClient(cfg.Upstream.BaseURL, &http.Client{}, metrics, logr)
	convocations := repository.NewConvocationRepository(upstream, repository.ConvocationTimeouts{
		Default:  cfg.Upstream.Timeout,
		Generate: cfg.Upstream.GenerateTimeout,
		Download: cfg.Upstream.DownloadTimeout,
		Email:    cfg.Upstream.EmailTimeout,
	})
	references := repository.NewReferenceRepository(upstream, cfg.Upstream.Timeout)

	var cacheSvc *service.CacheService
	if cfg.Reference.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("reference cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Reference.CacheTTL, logr)
		}
	}

	validate := workflow.NewValidator()
	referenceSvc := service.NewReferenceService(references, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(nil, logr, nil, nil)
	env := handler.NewStageEnv(metrics, logr)

	handlers := handler.Handlers{
		Dashboard:  handler.NewDashboardHandler(cfg.APIPrefix),
		Import:     handler.NewImportHandler(convocations, exportSvc, env, cfg.Imports.PreviewLimit),
		Generate:   handler.NewGenerateHandler(referenceSvc, convocations, validate, env),
		Email:      handler.NewEmailHandler(convocations, validate, env),
		References: handler.NewReferenceHandler(referenceSvc, logr),
	}
	if cfg.Admin.AuthEnabled {
		handlers.AdminAuth = middleware.AdminJWT(cfg.Admin.JWTSecret)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	ops := handler.NewOpsHandler(metrics, cfg.Upstream.BaseURL, cacheSvc)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", ops.Prometheus)
	}
	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
