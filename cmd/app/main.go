package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/handler"
	"affiliatelink-go/internal/i18n"
	"affiliatelink-go/internal/importer"
	"affiliatelink-go/internal/middleware"
	"affiliatelink-go/internal/queue"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/internal/service"
	"affiliatelink-go/internal/worker"
	"affiliatelink-go/pkg/logging"
)

// app 运行期持有的需要关闭的资源
type app struct {
	cfg         *config.Config
	db          *gorm.DB
	redisPool   *redis.Pool
	queueClient *queue.Client
	worker      *worker.Service
	recorder    *service.ClickRecorder
	cron        *cron.Cron
	engine      *gin.Engine
}

func initConfig() *config.Config {
	path := flag.String("config", os.Getenv("APP_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
	return cfg
}

func buildApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	db, err := repository.OpenDB(cfg.DB, logging.Logger, logging.AtomicLevel)
	if err != nil {
		return nil, err
	}
	a.db = db

	links := repository.NewLinkRepository(db)
	clicks := repository.NewClickRepository(db)
	conversions := repository.NewConversionRepository(db)

	var cache repository.LinkCache
	if cfg.Redis.Enabled {
		a.redisPool = repository.NewRedisPool(cfg.Redis)
		cache = repository.NewRedisLinkCache(a.redisPool, cfg.Redis.LinkTTL())
		logging.Logger.Info("Redis link cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	loc, err := service.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		return nil, err
	}

	allocator := service.NewCodeAllocator(links, service.AllocatorOptions{
		CodeLength:  cfg.Link.CodeLength,
		MaxAttempts: cfg.Link.MaxAttempts,
		Backoff:     cfg.Link.RetryBackoff(),
	})
	linkService := service.NewLinkService(links, allocator, cache, cfg.Link.BaseURL)
	analytics := service.NewAnalyticsService(clicks, conversions, loc)
	merger := service.NewConversionMerger(conversions)

	// 点击落地：启用队列时投递 asynq，否则直接写库
	var sink service.ClickSink
	if cfg.Queue.Enabled {
		a.queueClient = queue.NewClient(cfg.Queue)
		sink = a.queueClient
		a.worker, err = worker.NewService(cfg.Queue, worker.NewConsumer(clicks))
		if err != nil {
			return nil, err
		}
	} else {
		sink = service.NewStoreClickSink(clicks, service.BreakerOptions{
			MaxFailures:    cfg.Click.BreakerFailures,
			OpenTimeout:    time.Duration(cfg.Click.BreakerOpenSeconds) * time.Second,
			HalfOpenProbes: cfg.Click.BreakerHalfOpenProbes,
		})
	}
	a.recorder = service.NewClickRecorder(sink, service.RecorderOptions{
		Workers:      cfg.Click.Workers,
		Buffer:       cfg.Click.Buffer,
		WriteTimeout: cfg.Click.WriteTimeout(),
	})

	if cfg.Import.Enabled {
		a.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(importer.NewCronLogger(logging.Logger))))
		job := importer.NewInboxJob(merger, cfg.Import)
		if _, err := job.Schedule(a.cron, cfg.Import.Schedule); err != nil {
			return nil, err
		}
	}

	catalog, err := i18n.InitI18n(cfg.I18n.Files, cfg.I18n.DefaultLang)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(catalog))

	if cfg.Auth.PasswordHash == "" {
		logging.Logger.Warn("auth.password_hash is empty, admin API is unprotected")
	}
	handler.RegisterRoutes(r, &handler.Handlers{
		Links:       handler.NewLinkHandler(linkService, analytics),
		Conversions: handler.NewConversionHandler(merger, analytics),
		Redirect:    handler.NewRedirectHandler(linkService, a.recorder, cfg.Redirect.FallbackURL),
		Auth:        handler.NewAuthHandler(cfg.Auth.PasswordHash),
	}, cfg.Auth.PasswordHash)
	a.engine = r

	return a, nil
}

func (a *app) start() error {
	a.recorder.Start()
	if a.worker != nil {
		if err := a.worker.Start(); err != nil {
			return err
		}
	}
	if a.cron != nil {
		a.cron.Start()
	}
	return nil
}

func (a *app) shutdown(ctx context.Context) {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.recorder != nil {
		if err := a.recorder.Stop(ctx); err != nil {
			logging.Logger.Warn("Click recorder did not drain", zap.Error(err))
		}
	}
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			logging.Logger.Warn("Queue client close failed", zap.Error(err))
		}
	}
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.redisPool != nil {
		if err := a.redisPool.Close(); err != nil {
			logging.Logger.Warn("Redis pool close failed", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := repository.CloseDB(a.db); err != nil {
			logging.Logger.Warn("Database close failed", zap.Error(err))
		}
	}
}

func startServer(a *app) {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Info("Server is running on " + a.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	a.shutdown(ctx)

	logging.Logger.Info("Server exiting")
}

func main() {
	cfg := initConfig()
	logging.InitLogger(cfg.Log)
	defer func() {
		_ = logging.Logger.Sync()
	}()

	a, err := buildApp(cfg)
	if err != nil {
		logging.Logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	if err := a.start(); err != nil {
		a.shutdown(context.Background())
		logging.Logger.Fatal("Failed to start background services", zap.Error(err))
	}

	startServer(a)
}
