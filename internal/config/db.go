package config

import (
	"fmt"
	"time"

	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectDB(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DB_URL is not set")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logger.Log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool settings
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info("database connected")
	return nil
}

func MigrateAllModels(run bool) error {
	if !run {
		logger.Log.Info("skipping migration")
		return nil
	}

	err := DB.AutoMigrate(
		// order matters for foreign keys
		&models.User{},
		&models.Board{},
		&models.Image{},
		&models.Tag{},
		&models.LikedBoard{},
		&models.ShareLink{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Log.Info("database migration completed")
	return nil
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
