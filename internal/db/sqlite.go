package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/repository/dao"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// OpenSQLite opens the database at conf.Path, ":memory:" for a throwaway
// one, and creates the tables.
func OpenSQLite(conf *config.SQLiteConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        conf.Path,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	// An in-memory database lives and dies with its connection. One
	// connection also serializes transactions.
	sqlDB.SetMaxOpenConns(1)

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}
