package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/clients/cache"
	"max.ks1230/tcmb-rates/internal/clients/kafka"
	"max.ks1230/tcmb-rates/internal/clients/tg"
	"max.ks1230/tcmb-rates/internal/config"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/messages"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
	"max.ks1230/tcmb-rates/internal/model/storage"
	"max.ks1230/tcmb-rates/internal/tracing"
)

func main() {
	defer logger.Sync()
	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	closer, err := tracing.Init(conf.Tracing())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closer.Close()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres:", zap.Error(err))
	}
	defer db.Close()

	cacheClient := cache.Open(conf.Cache(), conf.Memcached(), conf.Redis())
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	ratesService := rates.NewService(db, cacheClient, conf.Cache())
	reportGenerator := reports.NewGenerator(conf.App(), db)
	msgService := messages.NewService(client, ratesService, reportGenerator, conf.App().Location())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if conf.Kafka().Enabled() {
		notifier := messages.NewNotifier(client, conf.Telegram())
		consumer, err := kafka.NewConsumer(conf.Kafka(), notifier)
		if err != nil {
			logger.Error("kafka unavailable, chats will not be notified", zap.Error(err))
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.StartConsuming(ctx); err != nil {
					logger.Error("consuming stopped", zap.Error(err))
				}
			}()
		}
	}

	logger.Info("Bot init - end")

	client.ListenUpdates(ctx, msgService)
}
