package dbhelper

import (
	"fmt"
	"os"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(300)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	if err := Migrate(db, &models.ClothingItem{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB connects to the database named by the DB_* variables, or returns nil
// when DB_HOST is unset so callers can skip.
func SetupTestDB() (*gorm.DB, error) {
	if os.Getenv("DB_HOST") == "" {
		return nil, nil
	}
	return SetupDB(config.DBConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnv("DB_PORT", "5432"),
		Username: getEnv("DB_USERNAME", "wardrobe"),
		Password: getEnv("DB_PASSWORD", "wardrobe"),
		Name:     getEnv("DB_NAME", "wardrobe_test"),
	})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
