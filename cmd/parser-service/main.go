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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aluiziolira/bookparse/config"
	"github.com/aluiziolira/bookparse/logging"
	"github.com/aluiziolira/bookparse/rpc"
	"github.com/aluiziolira/bookparse/service"
	"github.com/aluiziolira/bookparse/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.DefaultServiceConfig()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Host, "host", cfg.Host, "gRPC listen host")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "gRPC listen port")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Record store: file or postgres")
	flag.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "JSON store path for the file store")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	flag.StringVar(&cfg.Table, "table", cfg.Table, "Postgres table name")
	flag.StringVar(&cfg.AdminAddr, "admin-addr", cfg.AdminAddr, "Admin HTTP address for /metrics and /healthz (empty disables)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	logger := logging.Setup(cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("parser service failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.ServiceConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", slog.Any("error", err))
		}
	}()

	metrics := service.NewMetrics()
	svc, err := service.New(ctx, service.NewMemoryKeySet(), store,
		service.WithMetrics(metrics),
		service.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr(), err)
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryServerInterceptor(metrics, logger)))
	rpc.Register(server, svc)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	var admin *http.Server
	if cfg.AdminAddr != "" {
		admin = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           adminRouter(metrics, svc),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server failed", slog.Any("error", err))
			}
		}()
		logger.Info("admin server enabled", slog.String("addr", cfg.AdminAddr))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(lis)
	}()
	logger.Info("parser service listening",
		slog.String("addr", lis.Addr().String()),
		slog.String("store", cfg.Store),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining in-flight calls")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve grpc: %w", err)
		}
	}

	healthServer.Shutdown()
	server.GracefulStop()
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := admin.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin server shutdown failed", slog.Any("error", err))
		}
	}
	logger.Info("parser service stopped", slog.Int("seen_keys", svc.SeenKeys()))
	return nil
}

func openStore(ctx context.Context, cfg *config.ServiceConfig) (storage.RecordStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
			DSN:   cfg.DatabaseURL,
			Table: cfg.Table,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return storage.NewFileStore(cfg.StorePath), nil
	}
}

func adminRouter(metrics *service.Metrics, svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ok seen_keys=%d\n", svc.SeenKeys())
	})
	return r
}
