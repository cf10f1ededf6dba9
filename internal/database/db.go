package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/justsurfingit/hireflow/internal/config"
	"github.com/justsurfingit/hireflow/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database. Unique-index violations are
// translated to gorm.ErrDuplicatedKey where the dialect supports it.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; a single connection also keeps
		// ":memory:" databases alive between statements.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the tables, including the unique
// (candidate_id, job_id) index that guards against duplicate applications.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Employer{},
		&models.Job{},
		&models.Candidate{},
		&models.Application{},
		&models.Notification{},
		&models.ApplicationEvent{},
	)
}
