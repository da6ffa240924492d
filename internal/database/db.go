package database

import (
	"embed"
	"fmt"
	"time"

	"equipment-backend/internal/config"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/models"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open: postgres bağlantısı, pool ayarları ve otelgorm plugin'i
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB alınamadı: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		logging.Logger().WithError(err).Warn("otelgorm plugin yüklenemedi")
	}
	return db, nil
}

// Models: AutoMigrate sırası (FK'ler için önce equipment ve orders)
func Models() []any {
	return []any{
		&models.Equipment{},
		&models.Order{},
		&models.OrderMaterial{},
		&models.StockMovement{},
		&models.EquipmentConsumption{},
		&models.OrderAttachment{},
		&models.Notification{},
		&models.Prediction{},
		&models.AuditLog{},
	}
}

// Migrate: tablolar AutoMigrate ile, postgres'e özel index'ler goose ile
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	logging.Logger().Info("migration tamamlandı")
	return nil
}
