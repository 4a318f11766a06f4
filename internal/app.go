package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/download"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/clock"
	"filevault-api/internal/infrastructure/db/postgres"
	fileDB "filevault-api/internal/infrastructure/db/postgres/file"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/infrastructure/memstore"
	"filevault-api/internal/infrastructure/metrics"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/infrastructure/policy"
	"filevault-api/internal/infrastructure/s3"
	"filevault-api/internal/interface/api/rest"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/pkg/rmqconsumer"
)

// download route throttle, per client IP
const (
	downloadRPS   = 2.0
	downloadBurst = 10
)

type App struct {
	logger      *zap.Logger
	cfg         config.Config
	db          *pgxpool.Pool
	registry    file.Registry
	ledger      download.Ledger
	content     ports.ContentStore
	policy      *policy.Store
	clock       ports.Clock
	httpSrv     *http.Server
	router      *gin.Engine
	mCounter    *prometheus.CounterVec
	mq          ports.RabbitMQ
	mqConsumer  ports.RMQConsumer
	rateLimiter *middleware.RateLimiter
	fileService ports.FileService
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// config
	if err = godotenv.Load(".env"); err != nil {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	// storage
	var (
		dbPool   *pgxpool.Pool
		registry file.Registry
		ledger   download.Ledger
	)
	switch cfg.App.StorageDriver {
	case config.StorageDriverPostgres:
		dbDsn, dsnErr := cfg.DBDSN()
		if dsnErr != nil {
			logger.Fatal("DB config error", zap.Error(dsnErr))
		}
		dbPool, err = postgres.New(ctx, logger, dbDsn)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		repo := fileDB.NewRepository(dbPool)
		registry, ledger = repo, repo
	case config.StorageDriverMemory:
		store := memstore.New()
		registry, ledger = store, store
	default:
		logger.Fatal("unknown storage driver", zap.String("driver", cfg.App.StorageDriver))
	}

	// s3
	s3Client, err := s3.New(ctx, logger, cfg.S3)
	if err != nil {
		logger.Fatal("failed to connect to S3", zap.Error(err))
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	//rmqConsumer
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger, rbMQ.GetConn())
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	return &App{
		logger:      logger,
		cfg:         cfg,
		db:          dbPool,
		registry:    registry,
		ledger:      ledger,
		content:     s3Client,
		policy:      policy.New(cfg.Policy),
		clock:       clock.New(),
		httpSrv:     httpSrv,
		router:      r,
		mCounter:    mCounter,
		mq:          rbMQ,
		mqConsumer:  rmqConsumer,
		rateLimiter: middleware.NewRateLimiter(downloadRPS, downloadBurst),
	}, nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	// "errgroup" instead of "WaitGroup" because:
	// - allows return an error from gorutine
	// - group errors from multiple gorutines into one
	// - wg.Add(1), wg.Done() - automatically under the hood, so never catch deadlock if you forget something ;-)
	// - allows orchestration of parallel processes through the context.Context(gracefull shut down)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.cfg.App.Host+":"+a.cfg.App.Port))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.mq.PublisherWorker(ctx)
		return nil
	})

	g.Go(func() error {
		a.mqConsumer.DeliveryWorker(ctx)
		return nil
	})

	g.Go(func() error {
		a.sweepWorker(ctx)
		return nil
	})

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

// sweepWorker removes expired records on a fixed interval. The same
// pass is reachable on demand through the admin cleanup route.
func (a *App) sweepWorker(ctx context.Context) {
	a.logger.Info("starting sweep worker", zap.Duration("interval", a.cfg.App.SweepInterval))

	ticker := time.NewTicker(a.cfg.App.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := a.fileService.SweepExpired(ctx)
			if err != nil {
				a.logger.Error("SweepExpired() error", zap.Error(err))
				continue
			}
			if removed > 0 {
				a.logger.Info("expired files swept", zap.Int("removed", removed))
			}
			a.rateLimiter.Sweep()
		case <-ctx.Done():
			a.logger.Info("sweep worker gracefully stopped")
			return
		}
	}
}

func (a *App) InitControllers() {
	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	a.fileService = services.NewFileService(a.registry, a.content, a.policy, a.clock, a.mq, a.mCounter)
	downloadService := services.NewDownloadService(a.registry, a.ledger, a.clock, a.mq, a.mCounter)

	// controllers
	rest.NewFileController(a.router, a.fileService, a.clock, a.logger, jwtService)
	rest.NewDownloadController(a.router, downloadService, a.logger, jwtService, a.rateLimiter)
	rest.NewAdminController(a.router, a.fileService, a.policy, a.clock, a.logger, jwtService)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
