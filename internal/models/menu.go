package models

import (
	"errors"
	"strings"
	"time"
)

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	CategoryEntree    MenuCategory = "entree"
	CategorySide      MenuCategory = "side"
	CategoryAppetizer MenuCategory = "appetizer"
	CategoryDrink     MenuCategory = "drink"
	CategoryOther     MenuCategory = "other"
)

// Categories lists every category in menu display order
var Categories = []MenuCategory{
	CategoryEntree,
	CategorySide,
	CategoryAppetizer,
	CategoryDrink,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c MenuCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItem represents a dish or drink that can be ordered
type MenuItem struct {
	ID        uint         `gorm:"primary_key" json:"id"`
	Category  MenuCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Name      string       `gorm:"not null" json:"name"`
	Price     float64      `gorm:"not null" json:"price"`
	Premium   bool         `json:"premium"`
	Available bool         `gorm:"not null" json:"available"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Ingredients []MenuItemIngredient `gorm:"foreignkey:MenuItemID" json:"ingredients,omitempty"`
}

// MenuItemIngredient links a menu item to the inventory it consumes per unit sold
type MenuItemIngredient struct {
	ID              uint    `gorm:"primary_key" json:"id"`
	MenuItemID      uint    `gorm:"not null;index" json:"menu_item_id"`
	InventoryItemID uint    `gorm:"not null;index" json:"inventory_item_id"`
	Amount          float64 `gorm:"not null" json:"amount"`
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return errors.New("menu item name is required")
	}
	if !item.Category.Valid() {
		return errors.New("menu item category must be one of entree, side, appetizer, drink, other")
	}
	if item.Price < 0 {
		return errors.New("menu item price must not be negative")
	}
	return nil
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category MenuCategory) bool {
	return mi.Category == category
}

// IsMealComponent reports whether the item can fill a meal slot
func (mi *MenuItem) IsMealComponent() bool {
	return mi.Category == CategoryEntree || mi.Category == CategorySide
}
