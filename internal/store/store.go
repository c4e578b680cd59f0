// Package store is the gorm-backed persistence layer for menu, inventory,
// staff, promotions and orders.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pandapos/internal/database"
	"pandapos/internal/models"

	"github.com/jinzhu/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrInvalid   = errors.New("invalid record")
)

// Store wraps the database handle
type Store struct {
	db *gorm.DB
}

// New creates a store over an opened and migrated database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for read-only queries such as reports
func (s *Store) DB() *gorm.DB {
	return s.db
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

func notFound(err error) error {
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	return err
}

// ListMenu returns the menu in id order. When availableOnly
// is set, items taken off the menu are skipped.
func (s *Store) ListMenu(_ context.Context, availableOnly bool) ([]models.MenuItem, error) {
	q := s.db.Preload("Ingredients").Order("id")
	if availableOnly {
		q = q.Where("available = ?", true)
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}

// MenuItem returns one menu item with its ingredient links
func (s *Store) MenuItem(_ context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Preload("Ingredients").First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// CreateMenuItem validates and inserts a menu item and its ingredient links
func (s *Store) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	if err := models.ValidateMenuItem(item); err != nil {
		return invalid(err)
	}
	return s.db.Create(item).Error
}

// UpdateMenuItem saves every field of the item. A non-nil Ingredients slice
// replaces the item's ingredient links.
func (s *Store) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	if err := models.ValidateMenuItem(item); err != nil {
		return invalid(err)
	}
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var existing models.MenuItem
		if err := tx.First(&existing, item.ID).Error; err != nil {
			return notFound(err)
		}
		item.CreatedAt = existing.CreatedAt

		links := item.Ingredients
		item.Ingredients = nil
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		if links == nil {
			return nil
		}

		if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemIngredient{}).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].ID = 0
			links[i].MenuItemID = item.ID
			if err := tx.Create(&links[i]).Error; err != nil {
				return err
			}
		}
		item.Ingredients = links
		return nil
	})
}

// DeleteMenuItem removes a menu item and its ingredient links. Past order
// lines keep their denormalized names.
func (s *Store) DeleteMenuItem(_ context.Context, id uint) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.MenuItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("menu_item_id = ?", id).Delete(&models.MenuItemIngredient{}).Error
	})
}

// ListInventory returns every stocked item by name
func (s *Store) ListInventory(_ context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// InventoryItem returns one stocked item
func (s *Store) InventoryItem(_ context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// CreateInventoryItem validates and inserts a stocked item
func (s *Store) CreateInventoryItem(_ context.Context, item *models.InventoryItem) error {
	if err := models.ValidateInventoryItem(item); err != nil {
		return invalid(err)
	}
	var count int
	s.db.Model(&models.InventoryItem{}).Where("lower(name) = ?", strings.ToLower(item.Name)).Count(&count)
	if count > 0 {
		return ErrDuplicate
	}
	return s.db.Create(item).Error
}

// UpdateInventoryItem saves every field of the stocked item
func (s *Store) UpdateInventoryItem(_ context.Context, item *models.InventoryItem) error {
	if err := models.ValidateInventoryItem(item); err != nil {
		return invalid(err)
	}
	var existing models.InventoryItem
	if err := s.db.First(&existing, item.ID).Error; err != nil {
		return notFound(err)
	}
	item.CreatedAt = existing.CreatedAt
	return s.db.Save(item).Error
}

// DeleteInventoryItem removes a stocked item and every recipe link to it
func (s *Store) DeleteInventoryItem(_ context.Context, id uint) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.InventoryItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("inventory_item_id = ?", id).Delete(&models.MenuItemIngredient{}).Error
	})
}
