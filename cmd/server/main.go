package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/config"
	"campus-access-backend/internal/db"
	"campus-access-backend/internal/health"
	httpapi "campus-access-backend/internal/http"
	"campus-access-backend/internal/migrations"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
	"campus-access-backend/internal/store/memory"
	"campus-access-backend/internal/store/postgres"
)

func main() {
	configPath := pflag.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply migrations and exit")
	inMemory := pflag.Bool("memory", false, "use the in-memory store instead of Postgres")
	pflag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(!*inMemory); err != nil {
		log.Fatalf("config: %v", err)
	}

	cleanupLogs, err := setupLogger(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		log.Printf("logger setup failed: %v", err)
	} else {
		defer cleanupLogs()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, *inMemory)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()
	if *migrateOnly {
		log.Printf("migrations complete")
		return
	}

	limiter, closeRedis := loginLimiter(ctx, cfg)
	defer closeRedis()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := services.NewAccessLogHub()
	checker := health.Checker{DB: st, DiskPath: cfg.MetricsDiskPath, Clock: clock.Real(), Started: time.Now().UTC()}
	server := httpapi.NewServer(cfg, httpapi.Deps{
		Store:    st,
		Clock:    clock.Real(),
		Limiter:  limiter,
		Hub:      hub,
		Registry: registry,
		Health:   checker,
	})
	if err := server.Users.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer, healthServer := health.NewGRPCServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.GRPCAddr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			log.Printf("grpc health listening on %s", cfg.GRPCAddr)
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			checker.Watch(gctx, healthServer, cfg.HealthPollInterval())
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
	}
	log.Printf("shutdown complete")
}

// openStore connects to Postgres and applies pending migrations, or returns
// the in-memory store when asked to.
func openStore(ctx context.Context, cfg config.Config, inMemory bool) (store.Store, func(), error) {
	if inMemory {
		log.Printf("using in-memory store")
		return memory.New(), func() {}, nil
	}
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Apply(ctx, database, cfg.MigrationsDir); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return postgres.New(database), func() { _ = database.Close() }, nil
}

// loginLimiter uses redis when REDIS_ADDR is set and reachable.
func loginLimiter(ctx context.Context, cfg config.Config) (services.LoginLimiter, func()) {
	if cfg.RedisAddr == "" {
		return services.NoopLimiter{}, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis unreachable, login throttling disabled: %v", err)
		_ = client.Close()
		return services.NoopLimiter{}, func() {}
	}
	return services.RedisLimiter{
		Client:      client,
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow(),
	}, func() { _ = client.Close() }
}
