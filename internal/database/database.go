package database

import (
	"fmt"
	"time"

	"canedrop/internal/config"
	"canedrop/internal/models"
	"canedrop/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Feedback{},
		&repositories.SettingsRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Repositories bundles the data access layer the services depend on.
type Repositories struct {
	Users    repositories.UserRepository
	Orders   repositories.OrderRepository
	Settings repositories.SettingsStore
	Feedback repositories.FeedbackRepository
}

// NewGORMRepositories builds SQL-backed repositories over db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    repositories.NewGORMUserRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
		Settings: repositories.NewGORMSettingsStore(db),
		Feedback: repositories.NewGORMFeedbackRepository(db),
	}
}

// NewMemoryRepositories builds process-local repositories.
func NewMemoryRepositories() Repositories {
	users := repositories.NewMemoryUserRepository()
	return Repositories{
		Users:    users,
		Orders:   repositories.NewMemoryOrderRepository(users),
		Settings: repositories.NewMemorySettingsStore(),
		Feedback: repositories.NewMemoryFeedbackRepository(),
	}
}

// Setup returns repositories for cfg and a close function for the underlying connection.
func Setup(cfg *config.Config) (Repositories, func() error, error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		return NewMemoryRepositories(), func() error { return nil }, nil
	}

	db, err := Open(cfg)
	if err != nil {
		return Repositories{}, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Repositories{}, nil, err
	}
	return NewGORMRepositories(db), sqlDB.Close, nil
}
