package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/elearning-analytics-console/api/swagger"
	"github.com/noah-isme/elearning-analytics-console/internal/console"
	"github.com/noah-isme/elearning-analytics-console/internal/handler"
	"github.com/noah-isme/elearning-analytics-console/internal/middleware"
	"github.com/noah-isme/elearning-analytics-console/pkg/config"
	"github.com/noah-isme/elearning-analytics-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/elearning-analytics-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/elearning-analytics-console/pkg/middleware/requestid"
)

// @title E-Learning Analytics Console
// @version 1.0.0
// @description Session-aware console over the e-learning analytics backend
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := console.New(ctx, cfg, logr, console.Options{SignedLinks: true})
	if err != nil {
		logr.Fatal("failed to assemble console", zap.Error(err))
	}
	defer app.Close() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(app.Metrics))

	handler.Register(r, handler.Routes{
		Guard:    app.Guard,
		Session:  handler.NewSessionHandler(app.Sessions),
		Views:    handler.NewViewHandler(app.Dashboard, app.Students, app.Courses, app.Search),
		Reports:  handler.NewReportHandler(app.Reports),
		Accounts: handler.NewAccountHandler(app.Profile, app.Settings),
		Metrics:  handler.NewMetricsHandler(app.Metrics, app.Exports),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	cleanupDone := app.Reports.StartCleanup(ctx)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	<-cleanupDone
}
