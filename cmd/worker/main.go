package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cmsTheme/internal/api"
	"cmsTheme/internal/compiler"
	"cmsTheme/internal/config"
	"cmsTheme/internal/database"
	"cmsTheme/internal/metrics"
	"cmsTheme/internal/sections"
	"cmsTheme/internal/storage"
	"cmsTheme/internal/styles"
	"cmsTheme/internal/tasks"
	"cmsTheme/internal/theme"
	"cmsTheme/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Println("database connection ready for worker")
	repo := database.NewRepository(db)

	blobs, err := storage.Open(cfg.Assets, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage backend: %v", err)
	}
	log.Printf("storage backend ready, driver=%s", cfg.Assets.Driver)

	store := sections.NewStore(blobs)
	publisher := sections.NewPublisher(store, cfg.Assets.PublicBaseURL)

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	taskClient := asynq.NewClient(redisOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()
	dispatcher := tasks.NewDispatcher(taskClient)

	themeCompiler := compiler.New(repo,
		compiler.WithLogger(logger),
		compiler.WithMaxAliasDepth(cfg.Compiler.MaxAliasDepth),
		compiler.WithEmbedder("Navigation", compiler.NavigationEmbedder(repo.NavigationData)),
	)
	css := worker.CSSOptions{
		Breakpoints:   styles.Breakpoints{TabletPx: cfg.Compiler.TabletPx, DesktopPx: cfg.Compiler.DesktopPx},
		MaxAliasDepth: cfg.Compiler.MaxAliasDepth,
	}
	loader := theme.NewLoader(osfs.New(cfg.Assets.BlueprintDir), ".")

	mux := worker.NewServeMux(worker.Handlers{
		Page:      worker.NewPageHandler(repo, themeCompiler, logger),
		ThemePart: worker.NewThemePartHandler(repo, themeCompiler, store, dispatcher, css, logger),
		Publish:   worker.NewPublishHandler(publisher, repo, redisClient, logger),
		Sync:      worker.NewSyncHandler(loader, repo, store, dispatcher, logger),
	})
	mux.Use(metrics.AsynqMetricsMiddleware())

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	ops := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Worker.OpsPort),
		Handler: api.NewOpsRouter(logger, map[string]api.HealthCheck{
			"database": func(ctx context.Context) error {
				return database.Ping(ctx, db)
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("ops server listening", slog.String("addr", ops.Addr))
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server stopped", slog.Any("error", err))
		}
	}()

	if err := server.Start(mux); err != nil {
		log.Fatalf("start worker server: %v", err)
	}
	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	server.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ops.Shutdown(ctx); err != nil {
		logger.Error("ops server shutdown failed", slog.Any("error", err))
	}
}

// asynqLogger 将 asynq 的内部日志转发到 slog。
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) asynqLogger {
	return asynqLogger{logger: logger.With(slog.String("component", "asynq"))}
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
