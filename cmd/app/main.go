package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/bootstrap"
	"github.com/Domenick1991/trainbooking/internal/cache"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/logger"
	"github.com/Domenick1991/trainbooking/internal/repository"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/storage"
	"github.com/Domenick1991/trainbooking/internal/websocket"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log, "booking-app")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(lg.Named("ws"))
	go hub.Run()
	defer hub.Stop()

	opts := []booking.BookingServiceOption{
		booking.WithLogger(lg.Named("booking")),
		booking.WithChangeNotifier(hub),
		booking.WithIDSeeds(cfg.Booking.FirstTicketID, cfg.Booking.FirstPassengerID),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, lg.Named("kafka"))
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			lg.Warn("kafka not reachable, events will fail until it is", zap.Error(err))
		}
		opts = append(opts,
			booking.WithProducer(producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	bookingService := booking.NewBookingService(cfg.Booking.TotalSeats, opts...)

	var repo repository.SnapshotRepository
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			lg.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		repo = repository.NewSnapshotRepository(pool)
	default:
		repo = repository.NewFileSnapshotRepository(cfg.Storage.FilePath)
	}

	var snapshotCache storage.SnapshotCache
	if cfg.Storage.CacheEnabled {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Storage.CacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			lg.Warn("redis not reachable, snapshot cache disabled", zap.Error(err))
		} else {
			snapshotCache = redisCache
		}
	}

	storageService := storage.NewStorageService(bookingService, repo, snapshotCache, cfg.Storage.SnapshotKey, lg.Named("storage"))

	if cfg.Storage.LoadOnStart {
		if err := storageService.Load(ctx); err != nil {
			lg.Warn("no snapshot restored on start", zap.Error(err))
		}
	}

	if cfg.Storage.AutosaveSeconds > 0 {
		go autosave(ctx, storageService, time.Duration(cfg.Storage.AutosaveSeconds)*time.Second, lg)
	}

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Bookings: bookingService,
		Storage:  storageService,
		Stream:   hub,
		Log:      lg,
	}); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}

	if cfg.Storage.AutosaveSeconds > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := storageService.Save(saveCtx); err != nil {
			lg.Error("final save failed", zap.Error(err))
		}
	}
}

func autosave(ctx context.Context, svc storage.StorageUseCase, every time.Duration, lg *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.Save(ctx); err != nil {
				lg.Error("autosave failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
