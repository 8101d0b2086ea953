package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"fritakagp.app/backend/common/errtrack"
	"fritakagp.app/backend/common/id"
	"fritakagp.app/backend/common/logger"
	"fritakagp.app/backend/common/otel"
	"fritakagp.app/backend/core/config"
	"fritakagp.app/backend/core/db"
	"fritakagp.app/backend/internal/bootstrap"
	"fritakagp.app/backend/internal/http/middleware"
	httprouter "fritakagp.app/backend/internal/http/router"
	"fritakagp.app/backend/internal/http/validation"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/service"
	"fritakagp.app/backend/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider when exporting)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	if enabled, err := errtrack.Setup(cfg, "fritakagp-server"); err != nil {
		slog.ErrorContext(ctx, "failed to initialize sentry", "error", err)
		os.Exit(1)
	} else if enabled {
		defer errtrack.Flush(2 * time.Second)
	}

	slog.InfoContext(ctx, "fritakagp starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	integrations, err := bootstrap.NewIntegrations(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create integration clients", "error", err)
		os.Exit(1)
	}
	defer integrations.Close()

	stores := store.NewStores(database.Queries())
	services := service.NewServices(service.Deps{
		Stores:   stores,
		Tx:       service.NewTxRunner(database),
		Producer: queue.NewProducer(slog.Default()),
		Files:    integrations.Files,
		Scanner:  integrations.Scanner,
		Persons:  integrations.Persons,
		Orgs:     integrations.Orgs,
	})

	var background *bootstrap.Background
	if cfg.RunsWorkers(config.ServiceTypeServer) {
		redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		if redisClient != nil {
			defer redisClient.Close()
		}

		background, err = bootstrap.NewBackground(cfg, database, redisClient, integrations)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create background workers", "error", err)
			os.Exit(1)
		}
		background.Start(ctx)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, services)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up router", "error", err)
		os.Exit(1)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if background != nil {
		background.Stop()
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) (*gin.Engine, error) {
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		IdentityHeader: cfg.IdentityHeader,
	})

	return router, nil
}

const banner = `
  __      _ _        _                      
 / _|_ __(_) |_ __ _| | ____ _  __ _ _ __   
| |_| '__| | __/ _' | |/ / _' |/ _' | '_ \  
|  _| |  | | || (_| |   < (_| | (_| | |_) | 
|_| |_|  |_|\__\__,_|_|\_\__,_|\__, | .__/  
                               |___/|_|  server
`
