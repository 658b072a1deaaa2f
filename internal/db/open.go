package db

import (
	"fmt"
	"strings"

	"budget_tracker/internal/config"

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM (pgx)
	"gorm.io/driver/sqlite"   // SQLite dialect for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver registered as "sqlite"
)

// Open connects to the configured database
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	gcfg := &gorm.Config{TranslateError: true}
	if cfg.IsProd {
		gcfg.Logger = logger.Default.LogMode(logger.Error)
	}
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; in-memory databases also vanish per connection
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Dialector returns the GORM dialector for a driver name and DSN
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=foreign_keys(1)" // Enforce ON DELETE CASCADE
		}
		return sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
