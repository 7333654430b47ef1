package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/bootstrap"
	"github.com/Domenick1991/tourbooking/internal/cache"
	"github.com/Domenick1991/tourbooking/internal/email"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		log.Fatal("worker needs the postgres driver, the in-memory store is not shared between processes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			log.WithError(err).Fatal("apply migrations")
		}
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log, kafka.WithRetries(cfg.Kafka.PublishRetries))
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.DeparturesCacheTTL)*time.Second)
	defer redisCache.Close()

	bookingService := booking.NewBookingService(
		repository.NewPGStore(pool),
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithCache(redisCache),
		booking.WithLogger(log),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()
	sender := email.NewSender(log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.ConsumeBookingEvents(gctx, sender.Send)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	stopSweep, err := bootstrap.StartExpirySweep(gctx, cfg.Worker.SweepSchedule(), bookingService, log)
	if err != nil {
		log.WithError(err).Fatal("start expiry sweep")
	}
	defer stopSweep()

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("worker stopped")
	}
	log.Info("worker stopped")
}
