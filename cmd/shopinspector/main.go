package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/cache"
	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/handler"
	"github.com/amoylab/shopinspector/internal/apiserver/middleware"
	"github.com/amoylab/shopinspector/internal/apiserver/report"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/apiserver/scheduler"
	"github.com/amoylab/shopinspector/internal/apiserver/service"
	"github.com/amoylab/shopinspector/internal/auth/jwt"
	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"
	"github.com/amoylab/shopinspector/pkg/logger"
	"github.com/amoylab/shopinspector/pkg/metrics"
	"github.com/amoylab/shopinspector/pkg/trace"
	"github.com/amoylab/shopinspector/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of shopinspector",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shopinspector version %s\n", version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lg := initLogger(cfg)
			defer lg.Sync()

			db, err := database.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			lg.Info("database schema is up to date", zap.String("type", cfg.Database.Type))
			return db.Close()
		},
	}

	rootCmd = &cobra.Command{
		Use:   "shopinspector",
		Short: "ShopInspector API Server",
		Long:  `ShopInspector serves the facility inspection API: master data, QR inspections, photo uploads and PDF reports`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd, migrateCmd)
}

func loadConfig() (*config.APIServerConfig, error) {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
	}
	return cfg, nil
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return lg
}

func initDatabase(lg *zap.Logger, cfg *config.DatabaseConfig) database.Database {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		lg.Fatal("Failed to initialize database", zap.String("type", cfg.Type), zap.Error(err))
	}
	return db
}

func initStorage(lg *zap.Logger, cfg *config.StorageConfig) *storage.DiskStorage {
	store, err := storage.NewDiskStorage(lg, cfg.DataDir)
	if err != nil {
		lg.Fatal("Failed to initialize storage", zap.String("path", cfg.DataDir), zap.Error(err))
	}
	return store
}

// initCache builds the QR code cache, backed by Redis when an address is configured
func initCache(ctx context.Context, lg *zap.Logger, cfg *config.CacheConfig) (*cache.Cache, func() error) {
	cc := cache.Config{TTL: cfg.TTL, MaxMemory: cfg.MaxMemory}
	closer := func() error { return nil }
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cc.Redis = rdb
		closer = rdb.Close
	}
	return cache.New(cc, lg), closer
}

// initRouter wires the services and mounts every route
func initRouter(db database.Database, store *storage.DiskStorage, qr *cache.Cache, tasks *scheduler.Scheduler, m *metrics.Metrics, cfg *config.APIServerConfig, lg *zap.Logger) (*gin.Engine, error) {
	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	errs := errorx.NewErrorHandler(lg)

	var observer service.Observer
	if m != nil {
		observer = m
	}
	svc := service.New(service.Deps{
		Repos:         repository.New(db.DB()),
		Storage:       store,
		Reports:       report.NewGenerator(lg),
		Cache:         qr,
		Observer:      observer,
		Logger:        lg,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		MaxPhotoSize:  cfg.Storage.MaxPhotoSize,
	})

	if tasks != nil && cfg.Maintenance.SweepInterval > 0 {
		grace := cfg.Maintenance.PhotoGrace
		err := tasks.AddTask("orphan-photo-sweep", cfg.Maintenance.SweepInterval,
			scheduler.RetryPolicy{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: 10 * time.Minute},
			func(ctx context.Context) (map[string]any, error) {
				res, err := svc.Inspections.SweepOrphanPhotos(ctx, grace)
				return res.Summary(), err
			})
		if err != nil {
			return nil, err
		}
	}

	auth, err := handler.NewAuthHandler(cfg.SuperAdmin, jwtService, errs, lg)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(errs.RecoveryMiddleware(), errs.ErrorMiddleware())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	r.Static("/uploads", filepath.Join(store.BaseDir(), "uploads"))

	routes := handler.Routes{
		API:         handler.NewHandler(svc, errs, lg, cfg.Storage.MaxPhotoSize),
		Auth:        auth,
		Info:        handler.NewServiceInfoHandler(),
		RequireAuth: middleware.JWTAuthMiddleware(jwtService, errs),
	}
	if tasks != nil {
		routes.Maintenance = handler.NewMaintenanceHandler(tasks, errs)
	}
	routes.Register(r)
	return r, nil
}

func run() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	lg := initLogger(cfg)
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()
	store := initStorage(lg, &cfg.Storage)
	qr, closeCache := initCache(ctx, lg, &cfg.Cache)
	defer closeCache()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	tasks := scheduler.New(lg)
	router, err := initRouter(db, store, qr, tasks, m, cfg, lg)
	if err != nil {
		lg.Fatal("Failed to initialize router", zap.Error(err))
	}
	if err := tasks.Start(ctx); err != nil {
		lg.Fatal("Failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lg.Info("Starting shopinspector",
		zap.String("version", version.Get()),
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Type),
		zap.String("data_dir", store.BaseDir()))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Failed to shutdown server", zap.Error(err))
	}
	tasks.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Error("Failed to shutdown tracing", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
