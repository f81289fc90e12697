package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/models"
)

// OpenDB connects to the configured database and sizes its pool.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Database.Driver) {
	case "mysql":
		dialector = mysql.Open(cfg.Database.Dsn)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.Dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetimeHours > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeHours) * time.Hour)
	}
	log.L().Info("database connected", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Users{},
		&models.Profile{},
		&models.TranslationHistory{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
