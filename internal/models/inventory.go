package models

import (
	"errors"
	"strings"
	"time"
)

// InventoryItem represents a stocked ingredient or supply
type InventoryItem struct {
	ID        uint          `gorm:"primary_key" json:"id"`
	Name      string        `gorm:"not null;unique_index" json:"name"`
	Quantity  float64       `json:"quantity"`
	Unit      InventoryUnit `gorm:"type:varchar(16)" json:"unit"`
	MinLevel  float64       `json:"min_level"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InventoryUnit represents the unit of measurement for an inventory item
type InventoryUnit string

const (
	// Weight units
	UnitOunce InventoryUnit = "oz"
	UnitPound InventoryUnit = "lb"

	// Volume units
	UnitFluidOunce InventoryUnit = "fl_oz"
	UnitGallon     InventoryUnit = "gal"

	// Count units
	UnitPiece InventoryUnit = "pc"
	UnitBox   InventoryUnit = "box"
	UnitCase  InventoryUnit = "case"
)

// ValidateInventoryItem validates an inventory item
func ValidateInventoryItem(item *InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return errors.New("inventory item name is required")
	}
	if item.Quantity < 0 {
		return errors.New("inventory quantity must not be negative")
	}
	if item.MinLevel < 0 {
		return errors.New("inventory minimum level must not be negative")
	}
	return nil
}

// NeedsRestock reports whether stock is at or below the minimum level
func (ii *InventoryItem) NeedsRestock() bool {
	return ii.Quantity <= ii.MinLevel
}
