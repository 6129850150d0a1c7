package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/profile-service/internal/config"
	profilehttp "github.com/pribylovaa/profile-service/internal/http"
	"github.com/pribylovaa/profile-service/internal/http/middleware"
	"github.com/pribylovaa/profile-service/internal/service"
	"github.com/pribylovaa/profile-service/internal/storage/minio"
	"github.com/pribylovaa/profile-service/internal/storage/postgres"
	"github.com/pribylovaa/profile-service/internal/tracing"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting profile-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	shutdownTracing, err := tracing.Setup(rootCtx, cfg.Tracing, cfg.Env)
	if err != nil {
		log.Error("tracing_setup_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing_shutdown_failed", slog.String("err", err.Error()))
		}
	}()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

// run поднимает зависимости, обслуживает HTTP до отмены ctx и корректно всё закрывает.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	profilesStore, err := postgres.New(dbCtx, cfg.Postgres.URL, postgres.PoolOptions{
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err == nil {
		err = profilesStore.EnsureSchema(dbCtx)
		if err != nil {
			profilesStore.Close()
		}
	}
	dbCancel()
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer profilesStore.Close()
	log.Info("postgres_connected")

	s3Ctx, s3Cancel := context.WithTimeout(ctx, 10*time.Second)
	imagesStore, err := minio.New(s3Ctx, cfg.S3)
	s3Cancel()
	if err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	log.Info("minio_connected", slog.String("bucket", cfg.S3.Bucket))

	svc := service.New(profilesStore, imagesStore, cfg)
	log.Info("service_initialized")

	var ready atomic.Bool

	metrics := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
	handler := profilehttp.NewRouter(svc, profilehttp.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Request,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxImageBytes:  cfg.Image.MaxSizeBytes,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		Ready: func(ctx context.Context) error {
			if !ready.Load() {
				return errors.New("not ready")
			}
			return profilesStore.Ping(ctx)
		},
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		return err
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("service_ready")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	return serveErr
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
