package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a connection for the configured driver. It does not
// migrate; call Migrate explicitly (the bootstrap command always does,
// "serve" only when DATABASE_AUTO_MIGRATE is set).
func NewDatabase(cfg config.Database) (*Database, error) {
	var (
		db  *gorm.DB
		err error
	)

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey on both sqlite and postgres, which the
	// repositories rely on for the (user, book) reading-state constraint.
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, poolErr := db.DB()
		if poolErr != nil {
			return nil, poolErr
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	case "sqlite", "":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	log.Printf("Database connection established (driver=%s)", driverName(cfg.Driver))

	return &Database{DB: db}, nil
}

// Migrate creates or updates the schema for all entities.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Genre{},
		&entities.Book{},
		&entities.Page{},
		&entities.ReadingState{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping verifies the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func driverName(driver string) string {
	if driver == "" {
		return "sqlite"
	}
	return driver
}
