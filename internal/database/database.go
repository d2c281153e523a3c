package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avelichko/inkwell/internal/database/migrations"
	"github.com/avelichko/inkwell/internal/entities"
)

// Database is the single handle to the on-device store. It is constructed
// once at the composition root and passed to every consumer; nothing in the
// codebase reaches for a global instance.
type Database struct {
	DB      *gorm.DB
	changes *Broadcaster
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}

	// The books/chapters schema is owned by the versioned migration chain,
	// not by AutoMigrate, so the on-disk layout stays bit-compatible with
	// existing installs.
	if err := migrations.Apply(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Accounts live outside the versioned chain.
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db, changes: NewBroadcaster()}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Changes returns the broadcaster that live queries subscribe to.
func (d *Database) Changes() *Broadcaster {
	return d.changes
}

// NotifyChanged is called by repositories after a committed write so that
// active live subscriptions re-read their result sets.
func (d *Database) NotifyChanged() {
	d.changes.Notify()
}
