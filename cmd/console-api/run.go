package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apiserver "github.com/mediakit/asset-console/internal/api_server"
	"github.com/mediakit/asset-console/internal/client"
	"github.com/mediakit/asset-console/internal/config"
	"github.com/mediakit/asset-console/internal/events"
	"github.com/mediakit/asset-console/internal/notify"
	"github.com/mediakit/asset-console/internal/poller"
	"github.com/mediakit/asset-console/internal/service"
	"github.com/mediakit/asset-console/internal/store"
	"github.com/mediakit/asset-console/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the asset console api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting asset console api")
		defer zap.S().Info("Asset console api stopped")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		eventProducer := events.NewEventProducer(&events.StdoutWriter{})
		defer func() { _ = eventProducer.Close() }()

		jobsClient := client.NewJobsClient(cfg.Service.JobApiUrl, 0)

		feed := notify.NewNotificationStore(ctx, s.KV())
		keys := notify.NewKeySets(s.KV())
		scheduler := notify.NewScheduler()
		controller := notify.NewDismissalController(feed, keys, jobsClient, scheduler, eventProducer)
		defer controller.Teardown()
		engine := notify.NewEngine(feed, keys, controller, eventProducer)

		notificationSrv := service.NewNotificationService(feed, keys, controller, engine)

		go poller.New(jobsClient, engine, time.Duration(cfg.Service.PollIntervalSeconds)*time.Second).Run(ctx)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, notificationSrv, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("running api server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating metrics listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
