package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/api/grpcsrv"
	"max.ks1230/tcmb-rates/internal/api/rest"
	"max.ks1230/tcmb-rates/internal/clients/cache"
	"max.ks1230/tcmb-rates/internal/clients/kafka"
	"max.ks1230/tcmb-rates/internal/clients/tcmb"
	"max.ks1230/tcmb-rates/internal/config"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
	"max.ks1230/tcmb-rates/internal/model/storage"
	"max.ks1230/tcmb-rates/internal/tracing"
)

func main() {
	defer logger.Sync()
	logger.Info("Server init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	closer, err := tracing.Init(conf.Tracing())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closer.Close()

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres:", zap.Error(err))
	}
	defer db.Close()

	applied, err := db.Migrate()
	if err != nil {
		logger.Fatal("failed to migrate:", zap.Error(err))
	}
	logger.Info("migrations applied", zap.Int("count", applied))

	cacheClient := cache.Open(conf.Cache(), conf.Memcached(), conf.Redis())
	cacheBackend := "none"
	if cacheClient != nil {
		cacheBackend = conf.Cache().Backend()
		defer cacheClient.Close()
	}

	appConf := conf.App()
	var provider tcmb.Provider = tcmb.New(conf.Feed(), appConf.Location())
	if conf.Feed().SampleFallback() {
		provider = tcmb.NewSampleFallback(provider)
	}

	ingestor := rates.NewIngestor(db, provider, cacheClient, appConf, conf.Cache())
	if conf.Kafka().Enabled() {
		producer, err := kafka.NewProducer(conf.Kafka())
		if err != nil {
			logger.Error("kafka unavailable, ingested events are not published", zap.Error(err))
		} else {
			defer producer.Close()
			ingestor.SetPublisher(producer)
		}
	}

	puller, err := rates.NewPuller(ingestor, appConf)
	if err != nil {
		logger.Fatal("failed to init puller:", zap.Error(err))
	}

	ratesService := rates.NewService(db, cacheClient, conf.Cache())
	reportGenerator := reports.NewGenerator(appConf, db)
	handler := rest.NewHandler(ratesService, reportGenerator, ingestor, db, cacheBackend)
	httpServer := rest.NewServer(conf.HTTP(), rest.NewRouter(handler))

	grpcServer, err := grpcsrv.NewServer(conf.GRPC(), db)
	if err != nil {
		logger.Fatal("failed to init grpc server:", zap.Error(err))
	}

	logger.Info("Server init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		puller.Pull(ctx)
	}()
	go func() {
		defer wg.Done()
		grpcServer.Serve(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(); err != nil {
			logger.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.HTTP().ShutdownTimeout())
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop http server", zap.Error(err))
	}
	grpcServer.Shutdown()

	wg.Wait()
}
