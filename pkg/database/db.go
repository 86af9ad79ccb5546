package database

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Drivers registered with database/sql. "sqlite3" is the cgo build, "sqlite" the pure Go one.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// Open connects gorm to a sqlite file through the chosen driver and applies WAL settings.
func Open(driver, dbPath string) (*gorm.DB, error) {
	dsn := dbPath
	switch driver {
	case DriverCGO:
		dsn += "?_busy_timeout=5000"
	case DriverPure:
		dsn += "?_pragma=busy_timeout(5000)&_time_format=sqlite"
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite has a single writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{DriverName: driver, Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect gorm: %w", err)
	}

	if dbPath != ":memory:" {
		if err := db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
		if err := db.Exec("PRAGMA synchronous = NORMAL;").Error; err != nil {
			return nil, fmt.Errorf("set synchronous mode: %w", err)
		}
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
