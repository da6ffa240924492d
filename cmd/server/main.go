package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"equipment-backend/internal/auth"
	"equipment-backend/internal/config"
	"equipment-backend/internal/database"
	"equipment-backend/internal/events"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/order"
	"equipment-backend/internal/server"
	"equipment-backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration hatası: %v", err)
	}

	var authenticator auth.Authenticator
	if cfg.AuthMode == config.AuthModeRemote {
		authenticator = auth.NewRemoteAuthenticator(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	} else {
		authenticator = auth.NewJWTAuthenticator(cfg.JWTSecret)
	}

	// Ek dosyaları: GCS_BUCKET varsa GCS, yoksa yerel klasör
	var store storage.Store
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS client oluşturulamadı: %v", err)
		}
		defer gcs.Close()
		store = gcs
	} else {
		local, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatalf("Upload klasörü hazırlanamadı: %v", err)
		}
		store = local
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		logger.WithField("topic", cfg.KafkaOrderTopic).Info("Kafka publisher aktif")
	}
	defer publisher.Close()

	var idem *order.Idempotency
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis'e ulaşılamadı, Idempotency-Key devre dışı")
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			idem = order.NewIdempotency(rdb)
		}
	}

	app := server.New(server.Deps{
		Config:        cfg,
		DB:            db,
		Authenticator: authenticator,
		Store:         store,
		Publisher:     publisher,
		Idempotency:   idem,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.WithError(err).Error("Sunucu kapatılırken hata")
		}
	}()

	logger.WithField("port", cfg.HTTPPort).Info("Server çalışıyor")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.WithError(err).Error("Listen hatası")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server kapandı")
}
