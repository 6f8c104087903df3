package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ovall/dentavia_backend/config"
)

// NewGormDB creates a new gorm DB handle from central config, reusing the
// pooled database/sql connection.
func NewGormDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return NewGormDBFromConfig(FromCentralConfig(cfg))
}

// NewGormDBFromConfig creates a new gorm DB handle from package Config.
// It opens through the pgx-backed driver so constraint violations surface
// as *pgconn.PgError with the constraint name attached.
func NewGormDBFromConfig(cfg Config) (*gorm.DB, error) {
	gormLogger := logger.Discard
	if cfg.EnableLogging {
		threshold := time.Duration(cfg.SlowQueryThresholdMs) * time.Millisecond
		if threshold <= 0 {
			threshold = 200 * time.Millisecond
		}
		gormLogger = logger.New(slogWriter{}, logger.Config{
			SlowThreshold: threshold,
			LogLevel:      logger.Warn,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())
	}

	return db, nil
}

// CloseGormDB closes the underlying sql.DB.
func CloseGormDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...))
}
