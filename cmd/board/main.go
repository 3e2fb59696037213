package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/staffboard/internal/board/auth"
	"github.com/gartstein/staffboard/internal/board/config"
	"github.com/gartstein/staffboard/internal/board/controller"
	"github.com/gartstein/staffboard/internal/board/db"
	"github.com/gartstein/staffboard/internal/board/events"
	"github.com/gartstein/staffboard/internal/board/handlers"
	"github.com/gartstein/staffboard/internal/board/metrics"
	"github.com/gartstein/staffboard/internal/board/policy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectDatabase(cfg.Database(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	refresher, closeRefresher := initRefresher(cfg, logger)
	defer closeRefresher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewPrometheus(reg, "staffboard")
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	zones, err := policy.WithCapacities(cfg.Capacities())
	if err != nil {
		logger.Fatal("invalid zone configuration", zap.Error(err))
	}

	opts := []controller.Option{
		controller.WithRefreshers(collector, refresher),
		controller.WithRecorder(collector),
	}
	if cfg.RandomSeed != 0 {
		opts = append(opts, controller.WithRand(rand.New(rand.NewPCG(cfg.RandomSeed, cfg.RandomSeed))))
	}
	boardSvc := controller.NewBoardService(zones, repo, logger, opts...)

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := boardSvc.Load(loadCtx); err != nil {
		logger.Fatal("failed to load board", zap.Error(err))
	}

	boardHandler := handlers.NewBoardHandler(boardSvc, logger)

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(boardHandler)
	if err := server.RegisterHTTPGateway(boardHandler, reg, cfg.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// connectDatabase opens the repository, retrying while the database starts.
func connectDatabase(cfg *db.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	operation := func() error {
		var err error
		repo, err = db.NewRepository(cfg)
		if err != nil {
			logger.Warn("database not ready, retrying", zap.Error(err))
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return repo, nil
}

// initRefresher publishes refresh events to Kafka when brokers are configured.
func initRefresher(cfg *config.Config, logger *zap.Logger) (controller.Refresher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured, refresh events disabled")
		return events.Nop{}, func() {}
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	return producer, producer.Close
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
