package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"voice_relay/config"
	"voice_relay/entity"
	v1 "voice_relay/internal/controller/http/v1"
	"voice_relay/internal/controller/rmq"
	"voice_relay/internal/controller/telegram"
	"voice_relay/internal/storage/boltrepo"
	"voice_relay/internal/storage/s3repo"
	"voice_relay/internal/telemetry/metric"
	ttrace "voice_relay/internal/telemetry/trace"
	"voice_relay/internal/voice"
	"voice_relay/pkg/archive"
	"voice_relay/pkg/audio_converter"
	"voice_relay/pkg/httpserver"
	"voice_relay/pkg/logger"
)

var name = "voice-relay-bot"

const (
	shutdownTimeout = 30 * time.Second
	drainTimeout    = 10 * time.Second
)

// Bot -.
type Bot struct {
	cfg *config.Config
}

// New -.
func New(cfg *config.Config) *Bot {
	return &Bot{cfg: cfg}
}

// Run polls Telegram until ctx is done or SIGINT/SIGTERM arrives.
func (b *Bot) Run(ctx context.Context) error {
	cfg := b.cfg
	l := logger.New(cfg.Log.Level)
	l.Info("Starting bot...")

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

	// Storage
	repo, err := boltrepo.NewVoiceRepository(cfg.DB)
	if err != nil {
		return errors.Wrap(err, "app - Run - boltrepo")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			l.Error(err, "app - Run - repo.Close")
		}
	}()

	// Events
	var events entity.EventPublisher = voice.NopPublisher{}
	if cfg.EventsEnabled() {
		publisher, err := rmq.NewAMQPPublisher(cfg.RMQ, l)
		if err != nil {
			return errors.Wrap(err, "app - Run - amqp publisher")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				l.Error(err, "app - Run - publisher.Close")
			}
		}()
		events = publisher
	}

	// Usecases
	voices := voice.NewVoiceUsecase(repo, events, l, cfg.Bot.AdminID)
	backups, err := b.backupUsecase(ctx, repo, l)
	if err != nil {
		return err
	}

	var converter entity.AudioConverter
	if cfg.Audio.FFmpegEnabled {
		converter = audio_converter.NewAudioConverter()
	}

	// Telegram
	if err := tgbotapi.SetLogger(l); err != nil {
		return errors.Wrap(err, "app - Run - tgbotapi.SetLogger")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return errors.Wrap(err, "app - Run - tgbotapi.NewBotAPI")
	}
	api.Debug = cfg.Bot.Debug
	l.Info("authorized on account @%s", api.Self.UserName)

	collector := metric.NewCollector()
	router := telegram.NewRouter(api, voices, backups, converter, collector, l, telegram.Options{
		BotUsername:     api.Self.UserName,
		InlineLimit:     cfg.Inline.Limit,
		InlineCacheTime: cfg.Inline.CacheTime,
		ConvertAudio:    cfg.Audio.FFmpegEnabled,
	})

	// HTTP
	var (
		httpServer *httpserver.Server
		httpNotify <-chan error
	)
	if cfg.HTTP.Port != "" {
		if !cfg.Bot.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := gin.New()
		v1.NewRouter(handler, l, voices, repo, collector.Handler(), cfg.HTTP.APIToken)
		httpServer = httpserver.New(corsHandler().Handler(handler), httpserver.Port(cfg.HTTP.Port))
		httpNotify = httpServer.Notify()
		l.Info("http serving on port %s", cfg.HTTP.Port)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Bot.PollTimeout
	updates := api.GetUpdatesChan(u)

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	served := make(chan struct{})
	go func() {
		defer close(served)
		router.Serve(serveCtx, updates)
	}()

	l.Info("bot started")

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
	case err := <-httpNotify:
		runErr = fmt.Errorf("app - Run - httpServer.Notify: %w", err)
		l.Error(runErr)
	case <-served:
		l.Warn("app - Run - update channel closed")
	}

	// Shutdown: updates already fetched are confirmed to Telegram, so the
	// router works through them until the poller closes the channel.
	api.StopReceivingUpdates()
	if !awaitDrain(served, drainTimeout) {
		l.Warn("app - Run - update drain timed out after %s", drainTimeout)
		stopServe()
		<-served
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(); err != nil {
			l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
		}
	}

	l.Info("bot exited properly")
	return runErr
}

// awaitDrain reports whether done closed within timeout.
func awaitDrain(done <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// backupUsecase wires the archiver and, when S3_BUCKET is set, the uploader.
func (b *Bot) backupUsecase(ctx context.Context, repo *boltrepo.VoiceRepository, l logger.Interface) (*voice.BackupUsecase, error) {
	archiver, err := archive.New(b.cfg.Backup.Format)
	if err != nil {
		return nil, errors.Wrap(err, "app - Run - archiver")
	}

	var storage entity.StorageRepository
	if b.cfg.BackupsEnabled() {
		s3Repo, err := s3repo.NewS3Repository(ctx, b.cfg.S3)
		if err != nil {
			return nil, errors.Wrap(err, "app - Run - s3repo")
		}
		storage = s3Repo
	}

	return voice.NewBackupUsecase(repo, repo, storage, archiver, b.cfg.S3, l), nil
}
