package database

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/activewin/activewin/internal/models"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "activewin.db"
	defaultDBDir  = ".config/activewin"

	// The daemon writes while CLI commands read from another process.
	busyTimeoutMillis = 5000
)

type DB struct {
	*gorm.DB
	path string
}

func GetDefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, defaultDBDir, defaultDBName), nil
}

// Connect opens the failure log at dbPath, or at GetDefaultDBPath when empty.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	dsn := dbPath + "?_busy_timeout=" + strconv.Itoa(busyTimeoutMillis)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", dbPath)
	}

	return &DB{DB: db, path: dbPath}, nil
}

// Path is the database file in use.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.FailureLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
