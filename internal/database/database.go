package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/logging"
)

// Database holds the UI's own state: login sessions and the activity log.
// Notebooks and words live in the backend and are never stored here.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string, logger *zap.Logger) (*Database, error) {
	logger = logging.OrNop(logger)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&entities.ActivityEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database initialized", zap.String("path", dbPath))

	return &Database{DB: db}, nil
}

// SQLDB exposes the pooled connection for the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
