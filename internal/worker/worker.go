package worker

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"voice_relay/config"
	"voice_relay/internal/controller/rmq"
	"voice_relay/internal/db/gorm/mysql"
	"voice_relay/internal/mirror"
	"voice_relay/internal/telemetry/metric"
	ttrace "voice_relay/internal/telemetry/trace"
	"voice_relay/pkg/httpserver"
	"voice_relay/pkg/logger"
)

var name = "voice-relay-worker"

const shutdownTimeout = 30 * time.Second

// Worker mirrors voice events from RabbitMQ into MySQL.
type Worker struct {
	cfg *config.Config
}

// New -.
func New(cfg *config.Config) *Worker {
	return &Worker{cfg: cfg}
}

// Run consumes until ctx is done, SIGINT/SIGTERM arrives or the broker goes away.
func (s *Worker) Run(ctx context.Context) error {
	cfg := s.cfg
	l := logger.New(cfg.Log.Level)
	l.Info("Starting mirror worker...")

	traceCloseFn, err := ttrace.InitGlobalProvider(ctx, name, cfg.App, cfg.OTEL)
	if err != nil {
		return errors.Wrap(err, "app - Run - trace provider")
	}
	defer func() {
		ctxShutDown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := traceCloseFn(ctxShutDown); err != nil {
			l.Error(err, "Unable to close trace provider")
		}
	}()

	db, err := mysql.NewDB(cfg.MYSQL)
	if err != nil {
		return errors.Wrap(err, "app - Run - mysql")
	}
	defer func() {
		sql, err := db.DB()
		if err != nil {
			l.Error(err, "unable to get db driver")
			return
		}
		if err := sql.Close(); err != nil {
			l.Error(err, "unable close db connection")
		}
	}()

	repo := mirror.NewGormRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return errors.Wrap(err, "app - Run - migrate")
	}
	mirrorUsecase := mirror.NewMirrorUsecase(repo, l)

	collector := metric.NewCollector()
	amqpWorker, err := rmq.NewAMQPWorker(cfg.RMQ, l, mirrorUsecase, collector)
	if err != nil {
		return errors.Wrap(err, "app - Run - amqp worker")
	}

	var (
		httpServer *httpserver.Server
		httpNotify <-chan error
	)
	if cfg.HTTP.Port != "" {
		gin.SetMode(gin.ReleaseMode)
		handler := gin.New()
		handler.Use(gin.Recovery())
		handler.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
		handler.GET("/metrics", gin.WrapH(collector.Handler()))
		httpServer = httpserver.New(handler, httpserver.Port(cfg.HTTP.Port))
		httpNotify = httpServer.Notify()
	}

	consumeCtx, stopConsume := context.WithCancel(ctx)
	defer stopConsume()
	consumed := make(chan error, 1)
	go func() {
		consumed <- amqpWorker.StartConsumer(consumeCtx)
	}()

	l.Info("mirror worker started")

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var runErr error
	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: " + s.String())
	case <-ctx.Done():
		l.Info("app - Run - context done")
	case err := <-consumed:
		if err != nil {
			runErr = fmt.Errorf("app - Run - amqpWorker.StartConsumer: %w", err)
			l.Error(runErr)
		}
	case err := <-httpNotify:
		runErr = fmt.Errorf("app - Run - httpServer.Notify: %w", err)
		l.Error(runErr)
	}

	// Shutdown
	stopConsume()
	if err := amqpWorker.CloseChan(); err != nil {
		l.Error(fmt.Errorf("app - Run - amqpWorker.CloseChan: %w", err))
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(); err != nil {
			l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
		}
	}

	l.Info("worker exited properly")
	return runErr
}
