// Package database opens the gorm connection, migrates the schema and seeds
// a fresh store with the default menu, inventory and staff accounts.
package database

import (
	"fmt"
	"strings"
	"time"

	"pandapos/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect (lib/pq)
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Options selects the database driver and DSN
type Options struct {
	Driver string
	URL    string
	Debug  bool
}

// Open connects to the database and configures the connection pool
func Open(opts Options) (*gorm.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "sqlite3"
	}

	db, err := gorm.Open(driver, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(opts.Debug)

	if driver == "sqlite3" {
		// every connection to ":memory:" gets its own empty database
		if strings.Contains(opts.URL, ":memory:") || strings.Contains(opts.URL, "mode=memory") {
			db.DB().SetMaxOpenConns(1)
		}
		return db, nil
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.MenuItemIngredient{},
		&models.InventoryItem{},
		&models.Employee{},
		&models.Order{},
		&models.OrderItem{},
		&models.InventoryUsage{},
		&models.Promotion{},
		&models.PromoDelivery{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction. The transaction is rolled
// back when fn returns an error or panics, and committed otherwise.
func WithTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
