package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"go.uber.org/zap"

	"eventrelay/internal/app/config"
	httpapi "eventrelay/internal/app/http"
	"eventrelay/internal/app/http/handler"
	"eventrelay/internal/domain"
	"eventrelay/internal/domain/events"
	"eventrelay/internal/domain/notify"
	"eventrelay/internal/domain/push"
	"eventrelay/internal/domain/webhook"
	"eventrelay/internal/infrastructure/archive"
	"eventrelay/internal/infrastructure/async"
	"eventrelay/internal/infrastructure/channel"
	"eventrelay/internal/infrastructure/db/pg"
	"eventrelay/internal/infrastructure/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var (
		store     domain.EventStore
		uow       domain.UnitOfWork
		archiveDB *sql.DB
	)
	if cfg.ArchiveDatabaseURL != "" {
		archiveDB, err = sql.Open("pgx", cfg.ArchiveDatabaseURL)
		if err != nil {
			log.Fatal("db open error", zap.Error(err))
		}
		defer archiveDB.Close()

		if err := archiveDB.PingContext(ctx); err != nil {
			log.Fatal("db ping error", zap.Error(err))
		}

		if err := goose.SetDialect("postgres"); err != nil {
			log.Fatal("goose dialect error", zap.Error(err))
		}
		if err := goose.Up(archiveDB, "migrations"); err != nil {
			log.Fatal("goose up error", zap.Error(err))
		}

		store = pg.NewEventStore(archiveDB)
		uow = pg.NewTxManager(archiveDB)
	}

	eventBus := async.NewEventBus(ctx, cfg.HistorySize, log)
	pool := async.NewWorkerPool(ctx, cfg.WorkerPoolSize, cfg.SendTimeout, log)

	senders := map[notify.Channel]notify.Sender{
		notify.ChannelSMS: channel.NewLogSender(string(notify.ChannelSMS), log),
	}
	if cfg.SMTPAddr != "" {
		senders[notify.ChannelEmail] = channel.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, log)
	} else {
		senders[notify.ChannelEmail] = channel.NewLogSender(string(notify.ChannelEmail), log)
	}
	if cfg.SlackWebhookURL != "" {
		senders[notify.ChannelSlack] = channel.NewSlackSender(cfg.SlackWebhookURL, nil, log)
	} else {
		senders[notify.ChannelSlack] = channel.NewLogSender(string(notify.ChannelSlack), log)
	}

	var archiver *archive.Archiver
	if store != nil {
		archiver = archive.New(eventBus, uow, store, cfg.ArchiveBatchSize, cfg.ArchiveFlushInterval, log)
	}

	webhookSvc := webhook.NewService(eventBus, nil, cfg.WebhookBackoffBase, log)
	notifySvc := notify.NewService(eventBus, channel.NewRouter(pool, senders), log)
	hub := push.NewHub(eventBus, log)
	eventSvc := events.NewService(eventBus, store)

	h := handler.New(eventSvc, webhookSvc, notifySvc, hub, log)
	router := httpapi.NewRouter(h, log)

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}

	webhookSvc.Close()
	notifySvc.Close()
	hub.Close()
	eventBus.Close()
	if archiver != nil {
		archiver.Close()
	}
	pool.Shutdown()
}
