// Package database opens the local archive store. The terminal defaults to
// an on-disk sqlite file next to the binary; shops that centralize their
// archive point ARCHIVE_DRIVER/ARCHIVE_DSN at a real server.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dukaanlabs/dukaan/config"
)

var DB *gorm.DB

// Connect opens the archive database and configures the connection pool.
// Returns an error instead of calling log.Fatal so the caller can shut
// down gracefully.
func Connect() error {
	db, err := Open(config.ArchiveDriver(), config.ArchiveDSN())
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open builds a *gorm.DB for the given driver and DSN.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // use pkg/logger, not GORM's own
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported ARCHIVE_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}
