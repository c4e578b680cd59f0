package database

import (
	"fmt"

	"pandapos/internal/auth"
	"pandapos/internal/models"

	"github.com/jinzhu/gorm"
)

// Default staff accounts created by Seed
const (
	DefaultManagerEmail    = "manager@pandapos.local"
	DefaultManagerPassword = "manager123"
	DefaultCashierEmail    = "cashier@pandapos.local"
	DefaultCashierPassword = "cashier123"
)

type seedItem struct {
	item        models.MenuItem
	ingredients map[string]float64
}

var defaultInventory = []models.InventoryItem{
	{Name: "Chicken Breast", Quantity: 400, Unit: models.UnitOunce, MinLevel: 80},
	{Name: "Beef Strips", Quantity: 200, Unit: models.UnitOunce, MinLevel: 40},
	{Name: "Shrimp", Quantity: 120, Unit: models.UnitOunce, MinLevel: 30},
	{Name: "Noodles", Quantity: 300, Unit: models.UnitOunce, MinLevel: 60},
	{Name: "Rice", Quantity: 500, Unit: models.UnitOunce, MinLevel: 100},
	{Name: "Mixed Vegetables", Quantity: 250, Unit: models.UnitOunce, MinLevel: 50},
	{Name: "Orange Sauce", Quantity: 160, Unit: models.UnitFluidOunce, MinLevel: 32},
	{Name: "Wonton Wrappers", Quantity: 600, Unit: models.UnitPiece, MinLevel: 120},
	{Name: "Cream Cheese", Quantity: 80, Unit: models.UnitOunce, MinLevel: 16},
	{Name: "Cups", Quantity: 500, Unit: models.UnitPiece, MinLevel: 100},
	{Name: "Fountain Syrup", Quantity: 10, Unit: models.UnitGallon, MinLevel: 2},
}

var defaultMenu = []seedItem{
	{models.MenuItem{Category: models.CategoryEntree, Name: "Orange Chicken", Price: 5.20},
		map[string]float64{"Chicken Breast": 5, "Orange Sauce": 1.5}},
	{models.MenuItem{Category: models.CategoryEntree, Name: "Kung Pao Chicken", Price: 5.20},
		map[string]float64{"Chicken Breast": 5, "Mixed Vegetables": 1}},
	{models.MenuItem{Category: models.CategoryEntree, Name: "Beijing Beef", Price: 5.20},
		map[string]float64{"Beef Strips": 5}},
	{models.MenuItem{Category: models.CategoryEntree, Name: "Broccoli Beef", Price: 5.20},
		map[string]float64{"Beef Strips": 4, "Mixed Vegetables": 2}},
	{models.MenuItem{Category: models.CategoryEntree, Name: "Honey Walnut Shrimp", Price: 6.70, Premium: true},
		map[string]float64{"Shrimp": 4}},
	{models.MenuItem{Category: models.CategorySide, Name: "Chow Mein", Price: 4.40},
		map[string]float64{"Noodles": 8, "Mixed Vegetables": 1}},
	{models.MenuItem{Category: models.CategorySide, Name: "Fried Rice", Price: 4.40},
		map[string]float64{"Rice": 8}},
	{models.MenuItem{Category: models.CategorySide, Name: "White Steamed Rice", Price: 4.40},
		map[string]float64{"Rice": 8}},
	{models.MenuItem{Category: models.CategorySide, Name: "Super Greens", Price: 4.40},
		map[string]float64{"Mixed Vegetables": 8}},
	{models.MenuItem{Category: models.CategoryAppetizer, Name: "Chicken Egg Roll", Price: 2.00},
		map[string]float64{"Chicken Breast": 1, "Wonton Wrappers": 1}},
	{models.MenuItem{Category: models.CategoryAppetizer, Name: "Cream Cheese Rangoon", Price: 2.00},
		map[string]float64{"Cream Cheese": 1, "Wonton Wrappers": 3}},
	{models.MenuItem{Category: models.CategoryDrink, Name: "Fountain Drink", Price: 2.10},
		map[string]float64{"Cups": 1, "Fountain Syrup": 0.01}},
	{models.MenuItem{Category: models.CategoryDrink, Name: "Bottled Water", Price: 2.30}, nil},
}

// Seed ensures essential data exists. Each table is only filled when it is
// empty, so seeding an existing store is a no-op.
func Seed(db *gorm.DB) error {
	return WithTransaction(db, func(tx *gorm.DB) error {
		stock, err := seedInventory(tx)
		if err != nil {
			return err
		}
		if err := seedMenu(tx, stock); err != nil {
			return err
		}
		if err := seedEmployees(tx); err != nil {
			return err
		}
		return seedPromotions(tx)
	})
}

func seedInventory(tx *gorm.DB) (map[string]uint, error) {
	var count int
	if err := tx.Model(&models.InventoryItem{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		for _, item := range defaultInventory {
			item := item
			if err := tx.Create(&item).Error; err != nil {
				return nil, fmt.Errorf("failed to seed inventory %s: %w", item.Name, err)
			}
		}
	}

	var items []models.InventoryItem
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(items))
	for _, item := range items {
		ids[item.Name] = item.ID
	}
	return ids, nil
}

func seedMenu(tx *gorm.DB, stock map[string]uint) error {
	var count int
	if err := tx.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, s := range defaultMenu {
		item := s.item
		item.Available = true
		for name, amount := range s.ingredients {
			id, ok := stock[name]
			if !ok {
				continue
			}
			item.Ingredients = append(item.Ingredients, models.MenuItemIngredient{InventoryItemID: id, Amount: amount})
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to seed menu item %s: %w", item.Name, err)
		}
	}
	return nil
}

func seedEmployees(tx *gorm.DB) error {
	var count int
	if err := tx.Model(&models.Employee{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	accounts := []struct {
		name, email, password string
		role                  models.Role
	}{
		{"Store Manager", DefaultManagerEmail, DefaultManagerPassword, models.RoleManager},
		{"Front Cashier", DefaultCashierEmail, DefaultCashierPassword, models.RoleCashier},
	}
	for _, a := range accounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			return err
		}
		employee := models.Employee{Name: a.name, Email: a.email, PasswordHash: hash, Role: a.role, Active: true}
		if err := tx.Create(&employee).Error; err != nil {
			return fmt.Errorf("failed to seed employee %s: %w", a.email, err)
		}
	}
	return nil
}

func seedPromotions(tx *gorm.DB) error {
	var count int
	if err := tx.Model(&models.Promotion{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	promo := models.Promotion{
		Code:        "PANDA20",
		Description: "20% off your next order",
		PercentOff:  20,
		Active:      true,
		MinOrders:   3,
	}
	return tx.Create(&promo).Error
}
