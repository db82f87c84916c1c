package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"max.ks1230/tcmb-rates/internal/api/grpcsrv"
	"max.ks1230/tcmb-rates/internal/clients/cache"
	"max.ks1230/tcmb-rates/internal/clients/tcmb"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/storage"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Fetch one day's bulletin and store new rates",
		RunE:  runIngest,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health service of a running server",
		RunE:  runHealth,
	}

	ingestDate string
	healthAddr string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestDate, "date", "d", "", "bulletin day as YYYY-MM-DD (today by default)")
	healthCmd.Flags().StringVarP(&healthAddr, "addr", "a", "", "gRPC address (localhost and the configured port by default)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.Migrate()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", applied)
	return nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	var date time.Time
	if ingestDate != "" {
		if date, err = currency.ParseDate(ingestDate); err != nil {
			return errors.Wrap(err, "invalid --date")
		}
	}

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		return err
	}
	defer db.Close()

	cacheClient := cache.Open(conf.Cache(), conf.Memcached(), conf.Redis())
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	appConf := conf.App()
	var provider tcmb.Provider = tcmb.New(conf.Feed(), appConf.Location())
	if conf.Feed().SampleFallback() {
		provider = tcmb.NewSampleFallback(provider)
	}
	ingestor := rates.NewIngestor(db, provider, cacheClient, appConf, conf.Cache())
	if date.IsZero() {
		date = ingestor.Today()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, appConf.IngestTimeout())
	defer cancelTimeout()

	res, err := ingestor.Run(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d received, %d new rates saved\n",
		res.Date.Format(currency.DateLayout), res.Received, res.Saved)
	return nil
}

const healthTimeout = 5 * time.Second

func runHealth(cmd *cobra.Command, _ []string) error {
	addr := healthAddr
	if addr == "" {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		addr = net.JoinHostPort("localhost", strconv.Itoa(conf.GRPC().Port()))
	}

	probe, err := grpcsrv.NewProbe(addr)
	if err != nil {
		return err
	}
	defer probe.Close()

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	status, err := probe.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	if status != "SERVING" {
		return errors.Errorf("server is %s", status)
	}
	return nil
}
