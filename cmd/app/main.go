package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/bootstrap"
	"github.com/Domenick1991/tourbooking/internal/cache"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/middleware"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/departures"
	"github.com/Domenick1991/tourbooking/migrations"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var probes []bootstrap.Probe
	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer closeStore()
	if pg, ok := store.(*repository.PGStore); ok {
		probes = append(probes, bootstrap.Probe{Name: "postgres", Check: pg.Ping})
	}

	departuresTTL := time.Duration(cfg.Booking.DeparturesCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, departuresTTL)
	defer redisCache.Close()
	probes = append(probes, bootstrap.Probe{Name: "redis", Check: redisCache.Ping})

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log, kafka.WithRetries(cfg.Kafka.PublishRetries))
	defer producer.Close()
	probes = append(probes, bootstrap.Probe{Name: "kafka", Check: producer.CheckConnection})

	bookingService := booking.NewBookingService(
		store,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithCache(redisCache),
		booking.WithLogger(log),
		booking.WithHoldTTL(time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute),
		booking.WithAdminFeePerPax(decimal.NewFromFloat(cfg.Booking.AdminFeePerPax)),
		booking.WithInvoiceDueDays(cfg.Booking.InvoiceDueDays),
		booking.WithLoyaltyValidityMonths(cfg.Booking.LoyaltyValidityMonths),
		booking.WithDefaultRoomType(domain.RoomType(cfg.Booking.DefaultRoomType)),
		booking.WithRosterLocker(redisCache, time.Duration(cfg.Booking.RosterLockTTLSeconds)*time.Second),
	)
	departureService := departures.NewDepartureService(store.Capacity(), redisCache, log)

	// In-memory holds are swept in process.
	if cfg.Database.Driver == config.DriverMemory {
		stopSweep, err := bootstrap.StartExpirySweep(ctx, cfg.Worker.SweepSchedule(), bookingService, log)
		if err != nil {
			log.WithError(err).Fatal("start expiry sweep")
		}
		defer stopSweep()
	}

	mws := []gin.HandlerFunc{middleware.CORS(cfg.HTTP.CORSOrigins)}
	if cfg.HTTP.RateLimit != "" {
		limiterStore := middleware.MemoryLimiterStore()
		if cfg.Database.Driver != config.DriverMemory {
			if limiterStore, err = middleware.RedisLimiterStore(redisCache.Client()); err != nil {
				log.WithError(err).Fatal("rate limiter")
			}
		}
		limit, err := middleware.RateLimiter(cfg.HTTP.RateLimit, limiterStore, log)
		if err != nil {
			log.WithError(err).Fatal("rate limiter")
		}
		mws = append(mws, limit)
	}

	err = bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Bookings:   bookingService,
		Departures: departureService,
		Probes:     probes,
		Middleware: mws,
		Log:        log,
	})
	if err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (repository.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore()
		if err := seedDemo(ctx, store); err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory store, data is lost on restart")
		return store, func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("migrations applied")
	}
	return repository.NewPGStore(pool), pool.Close, nil
}
